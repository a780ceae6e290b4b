package observability

// Metric name prefixes
const (
	MetricPrefix = "walrus"
)

// Metric names
const (
	// Timer metrics
	TimersFiredTotal   = MetricPrefix + ".timers.fired_total"
	TimerFireDelay     = MetricPrefix + ".timers.fire_delay"
	DispatcherRestarts = MetricPrefix + ".timers.dispatcher_restarts_total"

	// Discord metrics
	CommandsTotal      = MetricPrefix + ".commands.total"
	GatewayEventsTotal = MetricPrefix + ".gateway.events_total"

	// IPC metrics
	IPCRequestsTotal   = MetricPrefix + ".ipc.requests_total"
	IPCRequestDuration = MetricPrefix + ".ipc.request_duration"
)

// Label keys
const (
	LabelEvent     = "event"
	LabelCommand   = "command"
	LabelEventType = "event_type"
	LabelRoute     = "route"
	LabelFailed    = "failed"
)
