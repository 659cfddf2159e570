package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftconnect",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "craftconnect",
			Name:      "messages_sent_total",
			Help:      "Messages accepted by POST /messages.",
		},
	)

	realtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftconnect",
			Name:      "realtime_events_total",
			Help:      "Events published to the realtime bus by type.",
		},
		[]string{"type"},
	)

	realtimeDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "craftconnect",
			Name:      "realtime_dropped_total",
			Help:      "Events dropped because a subscriber buffer was full.",
		},
	)

	realtimeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "craftconnect",
			Name:      "realtime_subscribers",
			Help:      "Active realtime subscriptions.",
		},
	)
)

// Register registers all collectors. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			messagesSent,
			realtimeEvents,
			realtimeDropped,
			realtimeSubscribers,
		)
	})
}

func IncHTTP(endpoint string) { httpRequests.WithLabelValues(endpoint).Inc() }

func IncMessagesSent() { messagesSent.Inc() }

func IncRealtimeEvent(typ string) { realtimeEvents.WithLabelValues(typ).Inc() }

func IncRealtimeDropped() { realtimeDropped.Inc() }

func AddRealtimeSubscribers(d float64) { realtimeSubscribers.Add(d) }
