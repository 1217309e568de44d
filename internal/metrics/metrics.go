package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Live updates metrics
	LiveUpdateTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resqsphere_live_update_ticks_total",
			Help: "Total number of live update ticks by result",
		},
		[]string{"result"},
	)

	LiveUpdateTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resqsphere_live_update_tick_duration_seconds",
			Help:    "Live update tick duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LiveUpdateActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resqsphere_live_update_actions_total",
			Help: "Total number of incident mutations applied by the simulator",
		},
		[]string{"action"},
	)

	SyntheticIncidents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resqsphere_synthetic_incidents_total",
			Help: "Total number of incidents created by the simulator",
		},
	)

	// Broadcast metrics
	BroadcastEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resqsphere_broadcast_events_total",
			Help: "Total number of published events by name and result",
		},
		[]string{"event", "result"},
	)

	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "resqsphere_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resqsphere_webhook_deliveries_total",
			Help: "Total number of webhook deliveries by result",
		},
		[]string{"result"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resqsphere_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resqsphere_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(LiveUpdateTicks)
	prometheus.MustRegister(LiveUpdateTickDuration)
	prometheus.MustRegister(LiveUpdateActions)
	prometheus.MustRegister(SyntheticIncidents)
	prometheus.MustRegister(BroadcastEvents)
	prometheus.MustRegister(WebSocketClients)
	prometheus.MustRegister(WebhookDeliveries)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler возвращает HTTP-обработчик Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
