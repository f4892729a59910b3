// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"product-chatbot/internal/common/config"
	"product-chatbot/internal/common/logger"
)

// Observability owns the otel meter and tracer providers for the process.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	chatCounter    otelmetric.Int64Counter
	chatDuration   otelmetric.Float64Histogram
}

// New registers a Prometheus-backed meter provider and, when a Jaeger endpoint
// is configured, a batching tracer provider. Failures degrade to no-op instruments.
func New(cfg config.ObservabilityConfig, log logger.Logger) *Observability {
	obs := &Observability{}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "product-chatbot"
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
	} else {
		obs.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(obs.meterProvider)

		meter := obs.meterProvider.Meter(serviceName)
		obs.chatCounter, _ = meter.Int64Counter(
			"chat.processed",
			otelmetric.WithDescription("Number of chat messages processed"),
		)
		obs.chatDuration, _ = meter.Float64Histogram(
			"chat.duration",
			otelmetric.WithDescription("Chat message processing duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	if cfg.JaegerEndpoint != "" {
		tp, err := newTracerProvider(serviceName, cfg)
		if err != nil {
			log.Warn("failed to create jaeger tracer provider", map[string]interface{}{
				"endpoint": cfg.JaegerEndpoint,
				"error":    err.Error(),
			})
		} else {
			obs.tracerProvider = tp
			otel.SetTracerProvider(tp)
		}
	}

	obs.tracer = otel.Tracer(serviceName)
	return obs
}

// Noop returns an Observability that records nothing. Spans come from the
// global tracer provider.
func Noop() *Observability {
	return &Observability{tracer: otel.Tracer("product-chatbot")}
}

func (o *Observability) RecordChatProcessed(ctx context.Context, intent, status string) {
	if o.chatCounter != nil {
		o.chatCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordChatDuration(ctx context.Context, duration time.Duration, intent string) {
	if o.chatDuration != nil {
		o.chatDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("intent", intent),
		))
	}
}

// Shutdown flushes pending spans and stops both providers.
func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
