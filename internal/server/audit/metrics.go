package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultForced = "forced"
)

var (
	// Labels: result (hit, miss, forced)
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "careervault",
			Subsystem: "audit_cache",
			Name:      "lookups_total",
			Help:      "Audit cache lookups by result",
		},
		[]string{"result"},
	)

	recomputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "careervault",
			Subsystem: "audit_cache",
			Name:      "recomputations_total",
			Help:      "Audit computations triggered by misses or forced refreshes",
		},
	)

	staleDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "careervault",
			Subsystem: "audit_cache",
			Name:      "stale_discards_total",
			Help:      "Computed audits not stored because the vault changed meanwhile",
		},
	)

	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "careervault",
			Subsystem: "audit_cache",
			Name:      "entries",
			Help:      "Audits currently held in the cache",
		},
	)
)
