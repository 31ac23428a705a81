package myriad

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDurationSeconds tracks API request latency per endpoint.
	RequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gasfutures_api_request_duration_seconds",
		Help:    "Duration of market API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// RequestErrorsTotal tracks failed API requests per endpoint.
	RequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gasfutures_api_request_errors_total",
		Help: "Total number of failed market API requests",
	}, []string{"endpoint"})
)
