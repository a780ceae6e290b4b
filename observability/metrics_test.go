package observability

import (
	"context"
	"testing"
	"time"

	"walrus/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := make(map[string]metricdata.Aggregation)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			found[m.Name] = m.Data
		}
	}
	return found
}

func sumFor(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()

	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)

	var total int64
	for _, point := range sum.DataPoints {
		if v, ok := point.Attributes.Value(attribute.Key(key)); ok && v.Emit() == value {
			total += point.Value
		}
	}
	return total
}

func TestMetricsRecordTimers(t *testing.T) {
	metrics, reader := setupMetrics(t)
	ctx := context.Background()

	metrics.TimerFired(ctx, models.EventKindReminder, 20*time.Millisecond)
	metrics.TimerFired(ctx, models.EventKindReminder, 0)
	metrics.TimerFired(ctx, models.EventKindGiveaway, time.Second)
	metrics.DispatcherRestarted(ctx)

	found := collect(t, reader)

	assert.Equal(t, int64(2), sumFor(t, found[TimersFiredTotal], LabelEvent, "reminder"))
	assert.Equal(t, int64(1), sumFor(t, found[TimersFiredTotal], LabelEvent, "giveaway"))

	delay, ok := found[TimerFireDelay].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, point := range delay.DataPoints {
		count += point.Count
	}
	assert.Equal(t, uint64(3), count)

	restarts, ok := found[DispatcherRestarts].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, restarts.DataPoints, 1)
	assert.Equal(t, int64(1), restarts.DataPoints[0].Value)
}

func TestMetricsRecordBotActivity(t *testing.T) {
	metrics, reader := setupMetrics(t)
	ctx := context.Background()

	metrics.CommandUsed(ctx, "remind", false)
	metrics.CommandUsed(ctx, "giveaway create", true)
	metrics.GatewayEvent(ctx, "MESSAGE_CREATE")
	metrics.GatewayEvent(ctx, "MESSAGE_CREATE")
	metrics.IPCRequest(ctx, "stats", 3*time.Millisecond, false)

	found := collect(t, reader)

	assert.Equal(t, int64(1), sumFor(t, found[CommandsTotal], LabelCommand, "remind"))
	assert.Equal(t, int64(1), sumFor(t, found[CommandsTotal], LabelCommand, "giveaway create"))
	assert.Equal(t, int64(2), sumFor(t, found[GatewayEventsTotal], LabelEventType, "MESSAGE_CREATE"))
	assert.Equal(t, int64(1), sumFor(t, found[IPCRequestsTotal], LabelRoute, "stats"))
	assert.Contains(t, found, IPCRequestDuration)
}

func TestSetupDisabledUsesNoopMeter(t *testing.T) {
	metrics, shutdown, err := Setup(context.Background(), Settings{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotPanics(t, func() {
		metrics.TimerFired(context.Background(), models.EventKindReminder, time.Second)
		metrics.CommandUsed(context.Background(), "ping", false)
	})
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, _, err := Setup(context.Background(), Settings{
		Enabled:        true,
		ServiceName:    "walrus-test",
		ExporterType:   "carrier-pigeon",
		ExportInterval: time.Minute,
	})
	assert.ErrorContains(t, err, "unknown exporter type")
}
