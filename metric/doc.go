// Package metric provides Prometheus-based metrics collection and HTTP server
// for kplexmux observability.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (endpoint lifecycle, queue depth, router/engine fan-out,
// transport byte counts) and adapter-specific custom metrics. It includes an
// HTTP server exposing metrics in Prometheus format for monitoring system
// integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Platform-level metrics automatically registered (Metrics type)
//  2. Adapter Registry: Extensible registration for adapter-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This architecture separates infrastructure concerns (core metrics) from
// transport-adapter concerns (custom metrics) while providing a unified
// metrics endpoint for monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry, "", "")
//
//	go func() {
//	    if err := server.Start(); err != nil && err != http.ErrServerClosed {
//	        log.Printf("metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core platform metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordEndpointStatus("tcp0", "in", 2)
//	coreMetrics.RecordQueueDepth("central", 128)
//
// The metrics server will expose Prometheus-formatted metrics at http://localhost:9090/metrics
// and a health check at http://localhost:9090/health.
//
// # Core Metrics
//
// The package automatically registers core platform metrics tracking:
//
//   - Endpoint lifecycle: endpoint_status (0=new, 1=initializing, 2=active, 3=dying, 4=destroyed)
//   - Endpoint errors: endpoint_errors_total
//   - Central queue health: squeue_depth, squeue_dropped_total
//   - Router membership: router_active_endpoints
//   - Fan-out throughput: engine_sentences_routed_total, engine_fanout_duration_seconds
//   - Transport throughput: transport_bytes_total
//
// Access core metrics through the registry:
//
//	coreMetrics := registry.CoreMetrics()
//
//	// Endpoint lifecycle tracking
//	coreMetrics.RecordEndpointStatus("tcp0", "in", 2) // 2 = active
//	coreMetrics.RecordEndpointError("tcp0", "timeout")
//
//	// Queue health
//	coreMetrics.RecordQueueDepth("central", 42)
//	coreMetrics.RecordQueueDropped("central")
//
//	// Router and fan-out
//	coreMetrics.RecordActiveEndpoints("in", 3)
//	coreMetrics.RecordSentenceRouted("tcp1")
//	coreMetrics.RecordFanOutDuration(120 * time.Microsecond)
//
//	// Transport throughput
//	coreMetrics.RecordTransportBytes("tcp0", "in", 128)
//
// # Adapter-Specific Metrics
//
// Transport adapters can register custom metrics through the registry:
//
//	// Register a counter
//	requestCounter := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "api_requests_total",
//	    Help: "Total number of API requests",
//	})
//	err := registry.RegisterCounter("tcp-input", "api_requests_total", requestCounter)
//
//	// Register a gauge
//	activeConnections := prometheus.NewGauge(prometheus.GaugeOpts{
//	    Name: "active_connections",
//	    Help: "Number of active client connections",
//	})
//	err = registry.RegisterGauge("tcp-input", "active_connections", activeConnections)
//
//	// Register a histogram
//	parseDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
//	    Name:    "parse_duration_seconds",
//	    Help:    "Time spent parsing one sentence",
//	    Buckets: prometheus.DefBuckets,
//	})
//	err = registry.RegisterHistogram("serial-input", "parse_duration_seconds", parseDuration)
//
// # Vector Metrics with Labels
//
// Register metrics with labels for multi-dimensional data:
//
//	// Counter with labels
//	httpRequestsVec := prometheus.NewCounterVec(
//	    prometheus.CounterOpts{
//	        Name: "http_requests_total",
//	        Help: "Total HTTP requests by status and method",
//	    },
//	    []string{"status", "method"},
//	)
//	err := registry.RegisterCounterVec("websocket-output", "http_requests_total", httpRequestsVec)
//
//	// Use the metric with specific label values
//	httpRequestsVec.WithLabelValues("200", "GET").Inc()
//	httpRequestsVec.WithLabelValues("404", "POST").Inc()
//
//	// Gauge with labels
//	bufferedVec := prometheus.NewGaugeVec(
//	    prometheus.GaugeOpts{
//	        Name: "buffered_sentences",
//	        Help: "Number of sentences buffered by adapter",
//	    },
//	    []string{"adapter"},
//	)
//	err = registry.RegisterGaugeVec("udp-input", "buffered_sentences", bufferedVec)
//
//	// Histogram with labels
//	writeDurationVec := prometheus.NewHistogramVec(
//	    prometheus.HistogramOpts{
//	        Name:    "write_duration_seconds",
//	        Help:    "Write duration by endpoint",
//	        Buckets: []float64{.001, .01, .1, 1, 10},
//	    },
//	    []string{"endpoint"},
//	)
//	err = registry.RegisterHistogramVec("serial-output", "write_duration_seconds", writeDurationVec)
//
// # HTTP Server
//
// The metrics server provides three endpoints:
//
//   - GET / - HTML page with links to metrics and health endpoints
//   - GET /metrics - Prometheus-formatted metrics (default path, configurable)
//   - GET /health - plain-text health check response
//
// Server configuration:
//
//	// Default configuration (port 9090, path /metrics, plain HTTP)
//	server := metric.NewServer(0, "", registry, "", "")
//
//	// Custom configuration with TLS
//	server := metric.NewServer(8080, "/prometheus", registry, "cert.pem", "key.pem")
//
//	// Start server (blocking)
//	if err := server.Start(); err != nil {
//	    log.Fatalf("failed to start metrics server: %v", err)
//	}
//
//	// Stop server (in another goroutine)
//	if err := server.Stop(); err != nil {
//	    log.Printf("error stopping server: %v", err)
//	}
//
// # Prometheus Integration
//
// The package uses the official Prometheus Go client library and exposes
// metrics in OpenMetrics format. Configure Prometheus to scrape the endpoint:
//
//	# prometheus.yml
//	scrape_configs:
//	  - job_name: 'kplexmux'
//	    static_configs:
//	      - targets: ['localhost:9090']
//	    metrics_path: '/metrics'
//	    scrape_interval: 15s
//
// All core metrics use the namespace "kplexmux" and appropriate subsystems:
//   - kplexmux_endpoint_status{endpoint="...",direction="..."}
//   - kplexmux_squeue_depth{queue="..."}
//   - kplexmux_engine_sentences_routed_total{output="..."}
//
// Adapter-specific metrics use the metric name as provided during registration.
//
// # MetricsRegistrar Interface
//
// Transport adapters implement the MetricsRegistrar interface for dependency injection:
//
//	type TCPInput struct {
//	    metrics metric.MetricsRegistrar
//	}
//
//	func NewTCPInput(metrics metric.MetricsRegistrar) *TCPInput {
//	    counter := prometheus.NewCounter(prometheus.CounterOpts{
//	        Name: "connections_total",
//	        Help: "Total inbound connections accepted",
//	    })
//	    metrics.RegisterCounter("tcp-input", "connections_total", counter)
//
//	    return &TCPInput{metrics: metrics}
//	}
//
// This enables testing with mock registrars and provides loose coupling.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//   - PrometheusRegistry() is safe for concurrent access
//
// Example concurrent usage:
//
//	registry := metric.NewMetricsRegistry()
//	coreMetrics := registry.CoreMetrics()
//
//	// Safe to call from multiple goroutines
//	go coreMetrics.RecordTransportBytes("tcp0", "in", 128)
//	go coreMetrics.RecordTransportBytes("tcp1", "out", 64)
//	go coreMetrics.RecordTransportBytes("udp0", "in", 512)
//
// # Error Handling
//
// Registration methods return errors for:
//
//   - Duplicate registration: attempting to register same metric name twice
//   - Prometheus conflicts: internal Prometheus registration failures
//   - Validation errors: metric descriptors Prometheus rejects; nil metrics are not checked
//
// Example error handling:
//
//	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test"})
//	err := registry.RegisterCounter("adapter", "test", counter)
//	if err != nil {
//	    // Check for duplicate registration
//	    if strings.Contains(err.Error(), "already registered") {
//	        log.Printf("metric already registered, skipping")
//	    } else {
//	        log.Fatalf("failed to register metric: %v", err)
//	    }
//	}
//
// The Server.Start() method returns errors for:
//
//   - Server already running
//   - Nil registry
//   - HTTP server failures (port in use, permission denied)
//
// # Performance Considerations
//
// Metric recording performance:
//   - Counter.Inc(): ~100ns per operation (lock-free)
//   - Gauge.Set(): ~100ns per operation (lock-free)
//   - Histogram.Observe(): ~150ns per operation (bucket lookup)
//
// Registry operations:
//   - Registration: O(1) map insert with mutex
//   - Gathering: O(n) for n registered metrics
//
// The HTTP server adds minimal overhead and handles Prometheus scraping
// efficiently with streaming responses.
//
// # Architecture Integration
//
// The metric package integrates with kplexmux components:
//
//   - iface: endpoints record lifecycle status and transport byte counts
//   - squeue: the central queue records depth and overrun drops
//   - router: tracks active endpoint counts per direction
//   - engine: records fan-out throughput and duration
//
// Data flow:
//
//	Endpoint / Queue / Router / Engine -> Core Metrics -> Prometheus Registry -> HTTP Server -> Prometheus
//
// # Design Decisions
//
// Centralized Registry: Chose centralized registry over distributed collectors
// to ensure consistent metric namespace, prevent duplication, and enable
// runtime metric discovery.
//
// Core vs Adapter Metrics: Separated platform-level metrics (core) from
// transport-adapter-specific metrics to distinguish multiplexer health from
// individual endpoint health.
//
// Prometheus Direct Integration: Used official Prometheus client rather than
// abstraction to leverage native features, avoid wrapper overhead, and ensure
// compatibility with Prometheus ecosystem.
//
// No Context in Server.Start(): Current design uses blocking Start() without
// context. Future enhancement could add context-aware lifecycle management.
//
// # Examples
//
// Complete integration:
//
//	package main
//
//	import (
//	    "log"
//	    "time"
//
//	    "github.com/kplex-io/kplexmux/metric"
//	    "github.com/prometheus/client_golang/prometheus"
//	)
//
//	func main() {
//	    // Create metrics registry
//	    registry := metric.NewMetricsRegistry()
//
//	    // Start metrics server
//	    server := metric.NewServer(9090, "/metrics", registry, "", "")
//	    go func() {
//	        if err := server.Start(); err != nil {
//	            log.Printf("metrics server error: %v", err)
//	        }
//	    }()
//	    defer server.Stop()
//
//	    // Get core metrics
//	    coreMetrics := registry.CoreMetrics()
//
//	    // Register adapter-specific metric
//	    frameCounter := prometheus.NewCounter(prometheus.CounterOpts{
//	        Name: "frames_total",
//	        Help: "Total frames read from the serial line",
//	    })
//	    registry.RegisterCounter("serial0", "frames_total", frameCounter)
//
//	    // Record endpoint status
//	    coreMetrics.RecordEndpointStatus("serial0", "in", 2) // active
//
//	    // Simulate traffic
//	    for i := 0; i < 100; i++ {
//	        frameCounter.Inc()
//	        coreMetrics.RecordTransportBytes("serial0", "in", 82)
//	        time.Sleep(100 * time.Millisecond)
//	    }
//	}
package metric
