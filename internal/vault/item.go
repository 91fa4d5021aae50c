package vault

import (
	"strings"
	"time"
)

// Evidence holds the signals a tier is derived from. Nil numeric fields are
// absent, which is different from an explicit zero.
type Evidence struct {
	QuizVerified       bool               `json:"quiz_verified"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	AIConfidence       *float64           `json:"ai_confidence,omitempty"`
	EvidenceCount      *int               `json:"evidence_count,omitempty"`
	AIInferred         bool               `json:"ai_inferred"`
	HasMetrics         bool               `json:"has_metrics"`
}

// Item is one fact in a user's vault.
type Item struct {
	ID             string            `json:"id"`
	VaultID        string            `json:"vault_id"`
	Category       Category          `json:"category"`
	Content        string            `json:"content"`
	Evidence       Evidence          `json:"evidence"`
	QualityTier    Tier              `json:"quality_tier"`
	UserAuthored   bool              `json:"user_authored"`
	FreshnessScore int               `json:"freshness_score"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastUpdatedAt  time.Time         `json:"last_updated_at"`
}

// ReferenceTime is the timestamp recency is measured from: LastUpdatedAt,
// falling back to CreatedAt. The boolean is false when neither is recorded.
func (i *Item) ReferenceTime() (time.Time, bool) {
	if !i.LastUpdatedAt.IsZero() {
		return i.LastUpdatedAt, true
	}
	if !i.CreatedAt.IsZero() {
		return i.CreatedAt, true
	}
	return time.Time{}, false
}

// Committed reports whether the item carries content.
func (i *Item) Committed() bool {
	return strings.TrimSpace(i.Content) != ""
}

// Float and Int build optional evidence values.
func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

// Counts holds one counter per category.
type Counts [numCategories]int

func (c Counts) Get(cat Category) int { return c[cat] }

func (c *Counts) Add(cat Category, n int) { c[cat] += n }

func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ByCategory renders the counters keyed by category slug.
func (c Counts) ByCategory() map[string]int {
	out := make(map[string]int, NumCategories)
	for cat := Category(0); cat < numCategories; cat++ {
		out[cat.String()] = c[cat]
	}
	return out
}

// Vault is the per-user container record with denormalized counters.
type Vault struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	Counts               Counts    `json:"-"`
	OverallStrengthScore int       `json:"overall_strength_score"`
	CreatedAt            time.Time `json:"created_at"`
	LastUpdatedAt        time.Time `json:"last_updated_at"`
}
