package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide counters on the default registry, served on /debug/metrics when enabled.
var (
	signUps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "signups_total",
		Help:      "Completed registrations.",
	})
	signIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "signins_total",
		Help:      "Sign-in attempts by result.",
	}, []string{"result"})
	refreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "refreshes_total",
		Help:      "Token pairs issued from a refresh token.",
	})
)
