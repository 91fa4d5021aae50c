package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/careervault/internal/ai"
	"github.com/dmitrijs2005/careervault/internal/engine"
	"github.com/dmitrijs2005/careervault/internal/logging"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

//go:embed match_prompt.md
var matchPrompt string

const (
	maxReasons    = 3
	maxLogPreview = 200
)

// Scorer asks the provider to rate an item against a requirement. Any failure
// is returned to the caller; engine.Match then scores that item lexically.
type Scorer struct {
	gen ai.TextGenerator
	log logging.Logger
}

var _ engine.Scorer = (*Scorer)(nil)

func NewScorer(gen ai.TextGenerator, log logging.Logger) *Scorer {
	if log == nil {
		log = logging.Nop()
	}
	return &Scorer{gen: gen, log: log.With("module", "gemini_scorer")}
}

func (s *Scorer) Score(ctx context.Context, requirement string, item *vault.Item) (engine.MatchScore, error) {
	prompt := buildMatchPrompt(requirement, item)

	s.log.Debug(ctx, "match score request",
		"vault_item_id", item.ID,
		"prompt_length", utf8.RuneCountInString(prompt),
		"prompt_preview", logging.Truncate(prompt, maxLogPreview),
	)

	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return engine.MatchScore{}, err
	}

	score, err := parseMatchResponse(raw)
	if err != nil {
		s.log.Warn(ctx, "unparseable match score", "vault_item_id", item.ID,
			"response_preview", logging.Truncate(raw, maxLogPreview), "error", err)
		return engine.MatchScore{}, err
	}
	return score, nil
}

func buildMatchPrompt(requirement string, item *vault.Item) string {
	category := item.Category.String()
	if item.Category.Valid() {
		category = item.Category.Spec().Title
	}
	r := strings.NewReplacer(
		"{{REQUIREMENT}}", strings.TrimSpace(requirement),
		"{{CATEGORY}}", category,
		"{{CONTENT}}", strings.TrimSpace(item.Content),
	)
	return r.Replace(matchPrompt)
}

func parseMatchResponse(raw string) (engine.MatchScore, error) {
	var data map[string]any
	dec := json.NewDecoder(strings.NewReader(extractJSON(raw)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return engine.MatchScore{}, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return engine.MatchScore{}, fmt.Errorf("gemini response has no numeric score")
	}
	// Some models answer on a 0..1 scale; only a fractional literal is read that way.
	if score > 0 && score <= 1 && isFractionLiteral(data["score"]) {
		score *= 100
	}

	return engine.MatchScore{
		Value:   int(math.Round(math.Max(0, math.Min(100, score)))),
		Reasons: coerceReasons(data["reasons"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
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

// isFractionLiteral reports whether the score was written as 0.75 or 1.0
// rather than 1 or "1%".
func isFractionLiteral(v any) bool {
	var lit string
	switch val := v.(type) {
	case json.Number:
		lit = val.String()
	case string:
		lit = strings.TrimSpace(val)
		if strings.HasSuffix(lit, "%") {
			return false
		}
	default:
		return false
	}
	return strings.ContainsAny(lit, ".eE")
}

func coerceReasons(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, r := range val {
			s, ok := r.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			if len(out) == maxReasons {
				break
			}
		}
	}
	return out
}
