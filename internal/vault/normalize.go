package vault

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field spellings seen in extracted payloads, most specific first.
var (
	quizVerifiedKeys  = []string{"quiz_verified", "quizVerified"}
	verificationKeys  = []string{"verification_status", "verificationStatus"}
	confidenceKeys    = []string{"ai_confidence", "aiConfidence", "confidence_score", "confidence"}
	evidenceCountKeys = []string{"evidence_count", "evidenceCount"}
	inferredKeys      = []string{"ai_inferred", "aiInferred", "inferred_from_resume"}
	metricsKeys       = []string{"has_metrics", "hasMetrics", "impact_metrics", "metrics"}
	tierKeys          = []string{"quality_tier", "qualityTier"}
	lastUpdatedKeys   = []string{"last_updated_at", "lastUpdatedAt", "updated_at", "updatedAt"}
	createdKeys       = []string{"created_at", "createdAt"}
)

// Normalize converts a loosely-shaped payload into the canonical Item for cat.
// Unknown keys become attributes. It never fails: unparseable values are
// treated as absent.
func Normalize(cat Category, raw map[string]any) *Item {
	spec := cat.Spec()
	item := &Item{
		Category:   cat,
		Attributes: map[string]string{},
	}

	used := map[string]struct{}{}
	take := func(keys []string) (any, bool) {
		for _, k := range keys {
			if v, ok := raw[k]; ok && v != nil {
				used[k] = struct{}{}
				return v, true
			}
		}
		return nil, false
	}

	if v, ok := take(spec.ContentKeys); ok {
		item.Content = strings.TrimSpace(coerceString(v))
	}
	if v, ok := take(quizVerifiedKeys); ok {
		item.Evidence.QuizVerified = coerceBool(v)
	}
	item.Evidence.VerificationStatus = Unverified
	if v, ok := take(verificationKeys); ok && strings.EqualFold(coerceString(v), string(Verified)) {
		item.Evidence.VerificationStatus = Verified
	}
	if v, ok := take(confidenceKeys); ok {
		if f := coerceFloat(v); !math.IsNaN(f) {
			f = math.Max(0, math.Min(1, f))
			item.Evidence.AIConfidence = &f
		}
	}
	if v, ok := take(evidenceCountKeys); ok {
		if f := coerceFloat(v); !math.IsNaN(f) && f >= 0 {
			item.Evidence.EvidenceCount = Int(int(f))
		}
	}
	if v, ok := take(inferredKeys); ok {
		item.Evidence.AIInferred = coerceBool(v)
	}
	if v, ok := take(metricsKeys); ok {
		item.Evidence.HasMetrics = coerceMetrics(v)
	}
	if v, ok := take(tierKeys); ok {
		if t := Tier(strings.ToLower(coerceString(v))); t.Valid() {
			item.QualityTier = t
		}
	}
	if v, ok := take(lastUpdatedKeys); ok {
		item.LastUpdatedAt = coerceTime(v)
	}
	if v, ok := take(createdKeys); ok {
		item.CreatedAt = coerceTime(v)
	}

	for k, v := range raw {
		if _, ok := used[k]; ok || v == nil {
			continue
		}
		if s := coerceString(v); s != "" {
			item.Attributes[k] = s
		}
	}

	return item
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "1"
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// coerceMetrics accepts a flag, a list of metrics or a metrics object.
func coerceMetrics(v any) bool {
	switch val := v.(type) {
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return coerceBool(v)
	}
}

func coerceTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(val)); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
