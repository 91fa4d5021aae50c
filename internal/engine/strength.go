package engine

import (
	"math"

	"github.com/dmitrijs2005/careervault/internal/vault"
)

// Scored is the input of strength aggregation.
type Scored struct {
	Tier       vault.Tier
	Freshness  int
	MatchScore int
}

// MatchStrength aggregates tier, freshness and match score into [0,100].
// An empty collection scores 0.
func MatchStrength(items []Scored) int {
	if len(items) == 0 {
		return 0
	}

	var sum float64
	for _, s := range items {
		sum += s.Tier.Weight() * pct(s.Freshness) * pct(s.MatchScore)
	}

	return clampScore(int(math.Round(100 * sum / float64(len(items)))))
}

// HealthStrength scores vault health with the match multiplier fixed at 100.
// It reads the tier and freshness already stored on the items.
func HealthStrength(items []*vault.Item) int {
	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		scored = append(scored, Scored{Tier: item.QualityTier, Freshness: item.FreshnessScore, MatchScore: 100})
	}
	return MatchStrength(scored)
}

// Tally holds counts obtained by enumerating items.
type Tally struct {
	Total      int
	ByCategory vault.Counts
	ByTier     map[vault.Tier]int
}

// Count enumerates items into per-category and per-tier counters. Items with no
// recorded tier are counted as assumed.
func Count(items []*vault.Item) Tally {
	t := Tally{ByTier: make(map[vault.Tier]int, 4)}
	for _, tier := range vault.Tiers() {
		t.ByTier[tier] = 0
	}
	for _, item := range items {
		t.Total++
		if item.Category.Valid() {
			t.ByCategory.Add(item.Category, 1)
		}
		tier := item.QualityTier
		if !tier.Valid() {
			tier = vault.TierAssumed
		}
		t.ByTier[tier]++
	}
	return t
}

func pct(v int) float64 {
	return float64(clampScore(v)) / 100
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
