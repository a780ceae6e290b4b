package observability

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Settings selects how metrics are exported
type Settings struct {
	Enabled        bool
	ServiceName    string
	Environment    string
	ExporterType   string // console, otlp or none
	OTLPEndpoint   string
	ExportInterval time.Duration
}

// Setup builds the meter provider described by settings and the instruments on it.
// When metrics are disabled the instruments record into a no-op meter.
// The returned shutdown function flushes pending exports.
func Setup(ctx context.Context, settings Settings) (*Metrics, func(context.Context) error, error) {
	noShutdown := func(context.Context) error { return nil }

	if !settings.Enabled || settings.ExporterType == "none" {
		log.Info("OpenTelemetry metrics disabled")
		metrics, err := NewMetrics(noop.NewMeterProvider().Meter(MetricPrefix))
		return metrics, noShutdown, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(settings.ServiceName),
		attribute.String("environment", settings.Environment),
	)

	exporter, err := newExporter(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(settings.ExportInterval)),
		),
	)
	otel.SetMeterProvider(provider)

	metrics, err := NewMetrics(provider.Meter(MetricPrefix))
	if err != nil {
		provider.Shutdown(ctx)
		return nil, nil, fmt.Errorf("failed to create instruments: %w", err)
	}

	log.WithField("exporter", settings.ExporterType).Info("Metrics provider initialized successfully")
	return metrics, provider.Shutdown, nil
}

func newExporter(ctx context.Context, settings Settings) (sdkmetric.Exporter, error) {
	switch settings.ExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		return exporter, nil

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(settings.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", settings.OTLPEndpoint).Info("Using OTLP metric exporter")
		return exporter, nil

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", settings.ExporterType)
	}
}
