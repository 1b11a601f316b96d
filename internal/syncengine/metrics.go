package syncengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "saves_total",
			Help:      "Itinerary saves by mode and outcome kind.",
		},
		[]string{"mode", "outcome"},
	)

	capacityCheckFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "capacity_check_failures_total",
			Help:      "Capacity checks that failed and were skipped.",
		},
	)

	deletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "deletes_total",
			Help:      "Itinerary deletions by outcome kind.",
		},
		[]string{"outcome"},
	)
)
