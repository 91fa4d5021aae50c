package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CanonicalSpellings(t *testing.T) {
	item := Normalize(PowerPhrase, map[string]any{
		"power_phrase":        "  Cut cloud spend by 30%  ",
		"quiz_verified":       true,
		"verification_status": "verified",
		"ai_confidence":       0.82,
		"evidence_count":      float64(4),
		"impact_metrics":      []any{"30%"},
		"last_updated_at":     "2024-05-01T10:00:00Z",
		"industry":            "fintech",
	})

	assert.Equal(t, PowerPhrase, item.Category)
	assert.Equal(t, "Cut cloud spend by 30%", item.Content)
	assert.True(t, item.Evidence.QuizVerified)
	assert.Equal(t, Verified, item.Evidence.VerificationStatus)
	require.NotNil(t, item.Evidence.AIConfidence)
	assert.InDelta(t, 0.82, *item.Evidence.AIConfidence, 1e-9)
	require.NotNil(t, item.Evidence.EvidenceCount)
	assert.Equal(t, 4, *item.Evidence.EvidenceCount)
	assert.True(t, item.Evidence.HasMetrics)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), item.LastUpdatedAt)
	assert.Equal(t, map[string]string{"industry": "fintech"}, item.Attributes)
}

func TestNormalize_AlternateSpellings(t *testing.T) {
	item := Normalize(SoftSkill, map[string]any{
		"skill_name":    "Negotiation",
		"confidence":    "0.6",
		"aiInferred":    "yes",
		"updatedAt":     "2023-01-02",
		"createdAt":     "2022-01-02",
		"qualityTier":   "SILVER",
		"evidenceCount": 2,
	})

	assert.Equal(t, "Negotiation", item.Content)
	require.NotNil(t, item.Evidence.AIConfidence)
	assert.InDelta(t, 0.6, *item.Evidence.AIConfidence, 1e-9)
	assert.True(t, item.Evidence.AIInferred)
	assert.Equal(t, TierSilver, item.QualityTier)
	assert.Equal(t, 2, *item.Evidence.EvidenceCount)
	assert.Equal(t, 2023, item.LastUpdatedAt.Year())
	assert.Equal(t, 2022, item.CreatedAt.Year())
	assert.Empty(t, item.Attributes)
}

func TestNormalize_MissingValuesStayAbsent(t *testing.T) {
	item := Normalize(WorkStyle, map[string]any{
		"content":        "Async first",
		"ai_confidence":  "n/a",
		"evidence_count": -1,
		"quality_tier":   "platinum",
		"created_at":     "yesterday",
		"notes":          nil,
	})

	assert.Nil(t, item.Evidence.AIConfidence)
	assert.Nil(t, item.Evidence.EvidenceCount)
	assert.Equal(t, Tier(""), item.QualityTier)
	assert.Equal(t, Unverified, item.Evidence.VerificationStatus)
	assert.True(t, item.CreatedAt.IsZero())
	_, ok := item.ReferenceTime()
	assert.False(t, ok)
}

func TestNormalize_ClampsConfidence(t *testing.T) {
	item := Normalize(TransferableSkill, map[string]any{"skill": "SQL", "ai_confidence": 1.7})
	require.NotNil(t, item.Evidence.AIConfidence)
	assert.Equal(t, 1.0, *item.Evidence.AIConfidence)
}

func TestItem_ReferenceTimePrefersLastUpdated(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	item := &Item{CreatedAt: created}
	ts, ok := item.ReferenceTime()
	require.True(t, ok)
	assert.Equal(t, created, ts)

	item.LastUpdatedAt = updated
	ts, _ = item.ReferenceTime()
	assert.Equal(t, updated, ts)
}
