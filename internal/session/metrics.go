package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gameplatform_active_sessions",
		Help: "Live sessions in the registry",
	})

	metricActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameplatform_actions_total",
		Help: "Accepted game actions",
	}, []string{"game"})

	metricRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameplatform_rejections_total",
		Help: "Rejected lifecycle and game actions",
	}, []string{"reason"})

	metricEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gameplatform_janitor_evictions_total",
		Help: "Sessions removed by the janitor sweep",
	})
)
