package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "tripplanner_client",
		Name:      "requests_total",
		Help:      "API requests by method and response status (\"error\" for transport failures).",
	},
	[]string{"method", "status"},
)
