package engine

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/careervault/internal/vault"
	"github.com/stretchr/testify/assert"
)

func TestDeriveTier_Ladder(t *testing.T) {
	tests := []struct {
		name string
		ev   vault.Evidence
		want vault.Tier
	}{
		{name: "nothing", ev: vault.Evidence{}, want: vault.TierAssumed},
		{name: "quiz verified", ev: vault.Evidence{QuizVerified: true}, want: vault.TierGold},
		{name: "status verified", ev: vault.Evidence{VerificationStatus: vault.Verified}, want: vault.TierGold},
		{name: "confidence 0.70", ev: vault.Evidence{AIConfidence: vault.Float(0.70)}, want: vault.TierSilver},
		{name: "confidence 0.69", ev: vault.Evidence{AIConfidence: vault.Float(0.69)}, want: vault.TierBronze},
		{name: "evidence 3", ev: vault.Evidence{EvidenceCount: vault.Int(3)}, want: vault.TierSilver},
		{name: "evidence 2", ev: vault.Evidence{EvidenceCount: vault.Int(2)}, want: vault.TierBronze},
		{name: "confidence 0.55", ev: vault.Evidence{AIConfidence: vault.Float(0.55)}, want: vault.TierBronze},
		{name: "confidence 0.54", ev: vault.Evidence{AIConfidence: vault.Float(0.54)}, want: vault.TierAssumed},
		{name: "evidence 1", ev: vault.Evidence{EvidenceCount: vault.Int(1)}, want: vault.TierBronze},
		{name: "explicit zero evidence", ev: vault.Evidence{EvidenceCount: vault.Int(0), AIConfidence: vault.Float(0)}, want: vault.TierAssumed},
		{name: "ai inferred", ev: vault.Evidence{AIInferred: true}, want: vault.TierBronze},
		{name: "verified beats low confidence", ev: vault.Evidence{QuizVerified: true, AIConfidence: vault.Float(0.1)}, want: vault.TierGold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTier(tt.ev))
		})
	}
}

func TestClassify_RecordedTierWins(t *testing.T) {
	item := &vault.Item{QualityTier: vault.TierGold}
	assert.Equal(t, vault.TierGold, Classify(item))

	item = &vault.Item{QualityTier: "platinum", Evidence: vault.Evidence{AIInferred: true}}
	assert.Equal(t, vault.TierBronze, Classify(item), "invalid recorded tier falls through to the ladder")
}

func TestReclassify_OnlyUserAuthoredKeepsTier(t *testing.T) {
	stale := &vault.Item{QualityTier: vault.TierGold}
	assert.Equal(t, vault.TierAssumed, Reclassify(stale))

	manual := &vault.Item{QualityTier: vault.TierGold, UserAuthored: true}
	assert.Equal(t, vault.TierGold, Reclassify(manual))
}

// Every combination of signals maps to exactly one tier, and strengthening a
// single signal never lowers it.
func TestDeriveTier_TotalAndMonotonic(t *testing.T) {
	confidences := []*float64{nil, vault.Float(0), vault.Float(0.5), vault.Float(0.55), vault.Float(0.7), vault.Float(1)}
	evidence := []*int{nil, vault.Int(0), vault.Int(1), vault.Int(2), vault.Int(3), vault.Int(10)}
	bools := []bool{false, true}

	valid := map[vault.Tier]bool{vault.TierGold: true, vault.TierSilver: true, vault.TierBronze: true, vault.TierAssumed: true}

	for ci, c := range confidences {
		for ei, e := range evidence {
			for _, quiz := range bools {
				for _, verified := range bools {
					for _, inferred := range bools {
						ev := vault.Evidence{QuizVerified: quiz, AIConfidence: c, EvidenceCount: e, AIInferred: inferred}
						if verified {
							ev.VerificationStatus = vault.Verified
						}
						base := DeriveTier(ev)
						assert.True(t, valid[base])

						if ci+1 < len(confidences) {
							up := ev
							up.AIConfidence = confidences[ci+1]
							assert.GreaterOrEqual(t, DeriveTier(up).Priority(), base.Priority())
						}
						if ei+1 < len(evidence) {
							up := ev
							up.EvidenceCount = evidence[ei+1]
							assert.GreaterOrEqual(t, DeriveTier(up).Priority(), base.Priority())
						}
						for _, up := range []vault.Evidence{
							withQuiz(ev), withVerified(ev), withInferred(ev),
						} {
							assert.GreaterOrEqual(t, DeriveTier(up).Priority(), base.Priority())
						}
					}
				}
			}
		}
	}
}

func withQuiz(e vault.Evidence) vault.Evidence {
	e.QuizVerified = true
	return e
}

func withVerified(e vault.Evidence) vault.Evidence {
	e.VerificationStatus = vault.Verified
	return e
}

func withInferred(e vault.Evidence) vault.Evidence {
	e.AIInferred = true
	return e
}

func TestEvaluate_SetsDerivedFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []*vault.Item{
		{Evidence: vault.Evidence{EvidenceCount: vault.Int(5)}, LastUpdatedAt: now.AddDate(0, 0, -10)},
		{UserAuthored: true, QualityTier: vault.TierGold, CreatedAt: now.AddDate(-2, 0, 0)},
		{QualityTier: vault.TierSilver},
	}

	Evaluate(items, now)

	assert.Equal(t, vault.TierSilver, items[0].QualityTier)
	assert.Equal(t, 100, items[0].FreshnessScore)
	assert.Equal(t, vault.TierGold, items[1].QualityTier)
	assert.Equal(t, 50, items[1].FreshnessScore)
	assert.Equal(t, vault.TierAssumed, items[2].QualityTier)
	assert.Equal(t, DefaultFreshness, items[2].FreshnessScore)
}
