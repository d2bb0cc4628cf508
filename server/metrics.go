package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convertly_conversions_total",
		Help: "Conversion requests by operation and outcome.",
	}, []string{"operation", "outcome"})

	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convertly_downloads_total",
		Help: "Artifact download requests by outcome.",
	}, []string{"outcome"})

	sweepDeletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "convertly_sweep_deletions_total",
		Help: "Artifacts deleted by the retention sweeper.",
	})
)
