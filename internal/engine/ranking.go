package engine

import "sort"

// Rank returns a copy of matches ordered by tier priority, then freshness,
// then match score, all descending. The sort is stable: equal keys keep input order.
func Rank(matches []RequirementMatch) []RequirementMatch {
	ranked := make([]RequirementMatch, len(matches))
	copy(ranked, matches)

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankBefore(ranked[i], ranked[j])
	})
	return ranked
}

func rankBefore(a, b RequirementMatch) bool {
	if pa, pb := a.QualityTier.Priority(), b.QualityTier.Priority(); pa != pb {
		return pa > pb
	}
	if a.FreshnessScore != b.FreshnessScore {
		return a.FreshnessScore > b.FreshnessScore
	}
	return a.MatchScore > b.MatchScore
}

// TopN returns the first n ranked matches; n <= 0 returns all of them.
func TopN(ranked []RequirementMatch, n int) []RequirementMatch {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
