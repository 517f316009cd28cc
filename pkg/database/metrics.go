package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/event"
)

var (
	mongoCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_command_duration_seconds",
			Help:    "Duration of MongoDB commands in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "command", "status"},
	)

	mongoPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mongo_pool_connections",
			Help: "MongoDB pool connections by state",
		},
		[]string{"service", "state"},
	)

	mongoPoolCheckoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_pool_checkout_failures_total",
			Help: "Total number of failed MongoDB connection checkouts",
		},
		[]string{"service"},
	)
)

// PoolMonitor returns a driver pool monitor that tracks open and checked-out
// connections.
func (m *Monitor) PoolMonitor() *event.PoolMonitor {
	open := mongoPoolConnections.WithLabelValues(m.service, "open")
	inUse := mongoPoolConnections.WithLabelValues(m.service, "in_use")
	failures := mongoPoolCheckoutFailures.WithLabelValues(m.service)

	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			switch e.Type {
			case event.ConnectionCreated:
				open.Inc()
			case event.ConnectionClosed:
				open.Dec()
			case event.GetSucceeded:
				inUse.Inc()
			case event.ConnectionReturned:
				inUse.Dec()
			case event.GetFailed:
				failures.Inc()
			}
		},
	}
}
