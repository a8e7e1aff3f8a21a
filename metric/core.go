package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not transport-specific)
type Metrics struct {
	// Endpoint lifecycle
	EndpointStatus *prometheus.GaugeVec
	EndpointErrors *prometheus.CounterVec

	// Central queue
	QueueDepth       *prometheus.GaugeVec
	QueueDroppedTotal *prometheus.CounterVec

	// Router
	RouterActiveEndpoints *prometheus.GaugeVec

	// Engine fan-out
	SentencesRoutedTotal *prometheus.CounterVec
	FanOutDuration       prometheus.Histogram

	// Transport adapters
	TransportBytesTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		EndpointStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kplexmux",
				Subsystem: "endpoint",
				Name:      "status",
				Help:      "Endpoint lifecycle state (0=new, 1=initializing, 2=active, 3=dying, 4=destroyed)",
			},
			[]string{"endpoint", "direction"},
		),

		EndpointErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kplexmux",
				Subsystem: "endpoint",
				Name:      "errors_total",
				Help:      "Total number of endpoint I/O errors",
			},
			[]string{"endpoint", "type"},
		),

		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kplexmux",
				Subsystem: "squeue",
				Name:      "depth",
				Help:      "Number of sentences currently queued",
			},
			[]string{"queue"},
		),

		QueueDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kplexmux",
				Subsystem: "squeue",
				Name:      "dropped_total",
				Help:      "Total number of sentences dropped on overrun",
			},
			[]string{"queue"},
		),

		RouterActiveEndpoints: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kplexmux",
				Subsystem: "router",
				Name:      "active_endpoints",
				Help:      "Number of active endpoints by direction",
			},
			[]string{"direction"},
		),

		SentencesRoutedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kplexmux",
				Subsystem: "engine",
				Name:      "sentences_routed_total",
				Help:      "Total number of sentences fanned out to an output",
			},
			[]string{"output"},
		),

		FanOutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "kplexmux",
				Subsystem: "engine",
				Name:      "fanout_duration_seconds",
				Help:      "Time to fan out one sentence across all outputs",
				Buckets:   prometheus.DefBuckets,
			},
		),

		TransportBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kplexmux",
				Subsystem: "transport",
				Name:      "bytes_total",
				Help:      "Total bytes moved through a transport adapter",
			},
			[]string{"endpoint", "direction"},
		),
	}
}

// RecordEndpointStatus updates the endpoint lifecycle-state gauge
func (c *Metrics) RecordEndpointStatus(endpoint, direction string, state int) {
	c.EndpointStatus.WithLabelValues(endpoint, direction).Set(float64(state))
}

// RecordEndpointError increments the per-endpoint error counter
func (c *Metrics) RecordEndpointError(endpoint, errType string) {
	c.EndpointErrors.WithLabelValues(endpoint, errType).Inc()
}

// RecordQueueDepth sets the current depth of a named queue
func (c *Metrics) RecordQueueDepth(queue string, depth int) {
	c.QueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordQueueDropped increments the overrun-drop counter for a named queue
func (c *Metrics) RecordQueueDropped(queue string) {
	c.QueueDroppedTotal.WithLabelValues(queue).Inc()
}

// RecordActiveEndpoints sets the active-endpoint gauge for a direction
func (c *Metrics) RecordActiveEndpoints(direction string, count int) {
	c.RouterActiveEndpoints.WithLabelValues(direction).Set(float64(count))
}

// RecordSentenceRouted increments the routed-sentence counter for an output
func (c *Metrics) RecordSentenceRouted(output string) {
	c.SentencesRoutedTotal.WithLabelValues(output).Inc()
}

// RecordFanOutDuration records how long one fan-out pass over the output list took
func (c *Metrics) RecordFanOutDuration(d time.Duration) {
	c.FanOutDuration.Observe(d.Seconds())
}

// RecordTransportBytes adds to the byte counter for an endpoint/direction pair
func (c *Metrics) RecordTransportBytes(endpoint, direction string, n int) {
	c.TransportBytesTotal.WithLabelValues(endpoint, direction).Add(float64(n))
}
