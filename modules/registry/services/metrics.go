package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var allocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "registry",
	Subsystem: "allocator",
	Name:      "allocations_total",
	Help:      "Total identifier allocations broken down by entity type and result.",
}, []string{"entity_type", "result"})
