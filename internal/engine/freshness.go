package engine

import (
	"time"

	"github.com/dmitrijs2005/careervault/internal/vault"
)

// DefaultFreshness is returned for items without any recorded timestamp.
const DefaultFreshness = 50

const oldestFreshness = 40

const day = 24 * time.Hour

// freshnessBuckets map an age in whole days to a score, most recent first.
var freshnessBuckets = []struct {
	maxDays int
	score   int
}{
	{30, 100},
	{90, 90},
	{180, 80},
	{365, 70},
	{730, 60},
	{1095, 50},
}

// Freshness scores how recently item was touched, in [0,100].
func Freshness(item *vault.Item, now time.Time) int {
	ts, ok := item.ReferenceTime()
	if !ok {
		return DefaultFreshness
	}
	return FreshnessForAge(DaysSince(ts, now))
}

// FreshnessForAge maps an age in days onto the bucket ladder.
func FreshnessForAge(days int) int {
	for _, b := range freshnessBuckets {
		if days <= b.maxDays {
			return b.score
		}
	}
	return oldestFreshness
}

// DaysSince returns whole days elapsed between ts and now. Future timestamps count as zero.
func DaysSince(ts, now time.Time) int {
	d := now.Sub(ts)
	if d < 0 {
		return 0
	}
	return int(d / day)
}
