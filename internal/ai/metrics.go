package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK        = "ok"
	outcomeError     = "error"
	outcomeTimeout   = "timeout"
	outcomeThrottled = "throttled"
	outcomeDisabled  = "disabled"
)

var (
	// Labels: outcome (ok, error, timeout, throttled, disabled)
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "careervault",
			Subsystem: "ai",
			Name:      "calls_total",
			Help:      "Text generation calls by outcome",
		},
		[]string{"outcome"},
	)

	callDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "careervault",
			Subsystem: "ai",
			Name:      "call_duration_seconds",
			Help:      "Latency of text generation calls",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
