package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Real-time chat
	MetricMessageDeliveryLatency = "chat.delivery_latency"
	MetricWSConnectedClients     = "chat.ws_connected_clients"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSwipesPerMin = "business.swipes_per_minute"
	MetricMatchRate    = "business.match_rate"
)
