// Package engine holds the pure scoring logic of the vault: tier
// classification, freshness, strength aggregation, requirement ranking and
// recommendation detection. Nothing here performs I/O except through the
// Scorer passed to Match.
package engine

import (
	"time"

	"github.com/dmitrijs2005/careervault/internal/vault"
)

const (
	silverConfidence = 0.70
	bronzeConfidence = 0.55
	silverEvidence   = 3
	bronzeEvidence   = 1
)

// Classify returns the tier of item. A valid recorded tier wins; otherwise the
// tier is derived from the evidence signals.
func Classify(item *vault.Item) vault.Tier {
	if item.QualityTier.Valid() {
		return item.QualityTier
	}
	return DeriveTier(item.Evidence)
}

// DeriveTier applies the evidence ladder, first match wins.
func DeriveTier(e vault.Evidence) vault.Tier {
	switch {
	case e.QuizVerified || e.VerificationStatus == vault.Verified:
		return vault.TierGold
	case confidenceAtLeast(e, silverConfidence) || evidenceAtLeast(e, silverEvidence):
		return vault.TierSilver
	case confidenceAtLeast(e, bronzeConfidence) || evidenceAtLeast(e, bronzeEvidence) || e.AIInferred:
		return vault.TierBronze
	default:
		return vault.TierAssumed
	}
}

// Reclassify is used on write and rescore paths. Only user-authored items keep
// a recorded tier; every other item is re-derived so its tier matches its signals.
func Reclassify(item *vault.Item) vault.Tier {
	if item.UserAuthored && item.QualityTier.Valid() {
		return item.QualityTier
	}
	return DeriveTier(item.Evidence)
}

// Evaluate refreshes the derived fields of items in place.
func Evaluate(items []*vault.Item, now time.Time) {
	for _, item := range items {
		item.QualityTier = Reclassify(item)
		item.FreshnessScore = Freshness(item, now)
	}
}

func confidenceAtLeast(e vault.Evidence, min float64) bool {
	return e.AIConfidence != nil && *e.AIConfidence >= min
}

func evidenceAtLeast(e vault.Evidence, min int) bool {
	return e.EvidenceCount != nil && *e.EvidenceCount >= min
}
