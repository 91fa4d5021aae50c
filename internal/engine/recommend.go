package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/careervault/internal/vault"
)

// Impact ranks how much acting on a recommendation helps.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

func (i Impact) weight() int {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	default:
		return 1
	}
}

// Recommendation ids, one per defect class.
const (
	RecommendVerify  = "verify-items"
	RecommendMetrics = "add-metrics"
	RecommendRefresh = "refresh-stale"
	RecommendMerge   = "merge-duplicates"
)

// Recommendation is a coaching suggestion derived from vault defects.
type Recommendation struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Action       string `json:"action"`
	Impact       Impact `json:"impact"`
	TimeEstimate string `json:"time_estimate"`
	ScoreBoost   int    `json:"score_boost"`
	Category     string `json:"category"`
	// Affected is the number of items the defect was detected on.
	Affected int `json:"affected"`
}

const (
	metricPovertyThreshold = 5
	staleThreshold         = 10
	duplicateThreshold     = 3

	verifyBoostCap  = 25
	metricsBoostCap = 15
	refreshBoostCap = 12
)

// staleAfterMonths is the age after which an item counts as stale.
const staleAfterMonths = 6

// Defects are the raw counts behind recommendations.
type Defects struct {
	Unverified    int
	MetricPoor    int
	Stale         int
	Duplicates    int
	DuplicateSets int
	StaleCutoff   time.Time
}

// Detect scans items for the four defect classes. Items are expected to be evaluated.
func Detect(items []*vault.Item, now time.Time) Defects {
	d := Defects{StaleCutoff: now.AddDate(0, -staleAfterMonths, 0)}
	groups := map[string]int{}

	for _, item := range items {
		if item.QualityTier == vault.TierAssumed || !item.QualityTier.Valid() {
			d.Unverified++
		}
		if item.Category == vault.PowerPhrase && !item.Evidence.HasMetrics {
			d.MetricPoor++
		}
		if ts, ok := item.ReferenceTime(); !ok || ts.Before(d.StaleCutoff) {
			d.Stale++
		}
		if key := duplicateKey(item.Content); key != "" {
			groups[key]++
		}
	}

	for _, n := range groups {
		if n > 1 {
			d.Duplicates += n - 1
			d.DuplicateSets++
		}
	}
	return d
}

// Recommend turns detected defects into suggestions ordered by impact, then boost.
func Recommend(items []*vault.Item, now time.Time) []Recommendation {
	d := Detect(items, now)
	out := make([]Recommendation, 0, 4)

	if d.Unverified > 0 {
		out = append(out, Recommendation{
			ID:           RecommendVerify,
			Title:        fmt.Sprintf("Verify %d %s", d.Unverified, plural(d.Unverified, "item", "items")),
			Description:  "These items have no verification or supporting evidence yet, so they carry the least weight.",
			Action:       "Answer a short quiz or confirm each item to lift it out of the assumed tier.",
			Impact:       ImpactHigh,
			TimeEstimate: minutes(d.Unverified, 1),
			ScoreBoost:   min(2*d.Unverified, verifyBoostCap),
			Category:     "verification",
			Affected:     d.Unverified,
		})
	}
	if d.MetricPoor > metricPovertyThreshold {
		out = append(out, Recommendation{
			ID:           RecommendMetrics,
			Title:        fmt.Sprintf("Add metrics to %d achievements", d.MetricPoor),
			Description:  "Power phrases without numbers are harder to trust and rank lower for recruiters.",
			Action:       "Add a measurable outcome (percent, revenue, time saved, team size) to each achievement.",
			Impact:       ImpactHigh,
			TimeEstimate: minutes(d.MetricPoor, 2),
			ScoreBoost:   min(d.MetricPoor, metricsBoostCap),
			Category:     "impact",
			Affected:     d.MetricPoor,
		})
	}
	if d.Stale > staleThreshold {
		out = append(out, Recommendation{
			ID:           RecommendRefresh,
			Title:        fmt.Sprintf("Update %d stale items", d.Stale),
			Description:  "These items have not been touched in over six months.",
			Action:       "Review each item and confirm it still reflects your current experience.",
			Impact:       ImpactMedium,
			TimeEstimate: minutes(d.Stale, 1),
			ScoreBoost:   min(d.Stale, refreshBoostCap),
			Category:     "freshness",
			Affected:     d.Stale,
		})
	}
	if d.Duplicates > duplicateThreshold {
		out = append(out, Recommendation{
			ID:           RecommendMerge,
			Title:        fmt.Sprintf("Merge %d duplicate items", d.Duplicates),
			Description:  "Several items repeat the same content word for word.",
			Action:       "Keep the strongest version of each repeated item and remove the rest.",
			Impact:       ImpactLow,
			TimeEstimate: minutes(d.Duplicates, 1),
			ScoreBoost:   d.Duplicates,
			Category:     "hygiene",
			Affected:     d.Duplicates,
		})
	}

	SortRecommendations(out)
	return out
}

// SortRecommendations orders by impact, then score boost, both descending.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if wi, wj := recs[i].Impact.weight(), recs[j].Impact.weight(); wi != wj {
			return wi > wj
		}
		return recs[i].ScoreBoost > recs[j].ScoreBoost
	})
}

func duplicateKey(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}

func minutes(n, per int) string {
	total := n * per
	if total < 5 {
		total = 5
	}
	return fmt.Sprintf("%d min", total)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
