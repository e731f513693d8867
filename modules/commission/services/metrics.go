package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	computationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commission",
		Subsystem: "engine",
		Name:      "computations_total",
		Help:      "Total commission split computations broken down by result.",
	}, []string{"result"})

	fallbackSplitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "commission",
		Subsystem: "engine",
		Name:      "fallback_splits_total",
		Help:      "Computations that fell back to the default split because no rule matched.",
	})
)
