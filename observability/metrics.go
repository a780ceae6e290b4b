package observability

import (
	"context"
	"fmt"
	"time"

	"walrus/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments recorded by the bot process
type Metrics struct {
	timersFired        metric.Int64Counter
	timerFireDelay     metric.Float64Histogram
	dispatcherRestarts metric.Int64Counter
	commands           metric.Int64Counter
	gatewayEvents      metric.Int64Counter
	ipcRequests        metric.Int64Counter
	ipcDuration        metric.Float64Histogram
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	// Timer metrics
	m.timersFired, err = meter.Int64Counter(
		TimersFiredTotal,
		metric.WithDescription("Total number of timers fired"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create timers fired counter: %w", err)
	}

	m.timerFireDelay, err = meter.Float64Histogram(
		TimerFireDelay,
		metric.WithDescription("Delay between a timer's expiry and it firing in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60, 300),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create timer fire delay histogram: %w", err)
	}

	m.dispatcherRestarts, err = meter.Int64Counter(
		DispatcherRestarts,
		metric.WithDescription("Total number of timer dispatcher restarts after storage failures"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher restarts counter: %w", err)
	}

	// Discord metrics
	m.commands, err = meter.Int64Counter(
		CommandsTotal,
		metric.WithDescription("Total number of slash commands handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create commands counter: %w", err)
	}

	m.gatewayEvents, err = meter.Int64Counter(
		GatewayEventsTotal,
		metric.WithDescription("Total number of gateway events received"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway events counter: %w", err)
	}

	// IPC metrics
	m.ipcRequests, err = meter.Int64Counter(
		IPCRequestsTotal,
		metric.WithDescription("Total number of dashboard IPC requests served"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC requests counter: %w", err)
	}

	m.ipcDuration, err = meter.Float64Histogram(
		IPCRequestDuration,
		metric.WithDescription("Duration of dashboard IPC requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC request duration histogram: %w", err)
	}

	return m, nil
}

// TimerFired records a timer handed to the sink and how late it was
func (m *Metrics) TimerFired(ctx context.Context, event models.EventKind, late time.Duration) {
	attrs := metric.WithAttributes(attribute.String(LabelEvent, string(event)))
	m.timersFired.Add(ctx, 1, attrs)
	m.timerFireDelay.Record(ctx, late.Seconds(), attrs)
}

// DispatcherRestarted records a dispatcher restart
func (m *Metrics) DispatcherRestarted(ctx context.Context) {
	m.dispatcherRestarts.Add(ctx, 1)
}

// CommandUsed records a completed slash command
func (m *Metrics) CommandUsed(ctx context.Context, command string, failed bool) {
	m.commands.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelCommand, command),
		attribute.Bool(LabelFailed, failed),
	))
}

// GatewayEvent records a gateway dispatch
func (m *Metrics) GatewayEvent(ctx context.Context, eventType string) {
	m.gatewayEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelEventType, eventType),
	))
}

// IPCRequest records a served IPC request
func (m *Metrics) IPCRequest(ctx context.Context, route string, duration time.Duration, failed bool) {
	attrs := metric.WithAttributes(
		attribute.String(LabelRoute, route),
		attribute.Bool(LabelFailed, failed),
	)
	m.ipcRequests.Add(ctx, 1, attrs)
	m.ipcDuration.Record(ctx, duration.Seconds(), attrs)
}
