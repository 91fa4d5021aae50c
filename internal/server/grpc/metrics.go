package grpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "careervault",
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Unary RPCs handled, by method and status code.",
	}, []string{"method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "careervault",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "Unary RPC latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)
