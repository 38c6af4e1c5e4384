package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Open realtime websocket connections",
	})
	eventsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_delivered_total",
			Help: "Auth events written to realtime connections",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(activeConnections)
	prometheus.MustRegister(eventsDelivered)
}
