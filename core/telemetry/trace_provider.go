package telemetry

import (
	"context"
	"fmt"

	"github.com/anoideaopen/msc/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the name of the tracer used by value nodes.
const InstrumentationName = "github.com/anoideaopen/msc"

// Tracer returns the tracer of the global trace provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// ShutdownFunc flushes the spans still buffered by the trace provider and stops it.
type ShutdownFunc func(ctx context.Context) error

// InstallTraceProvider sets the global trace provider to one exporting over OTLP http
// to endpoint. An empty endpoint installs a noop provider. caCertsBase64, when set,
// holds the base64 encoded PEM bundle used to verify the collector; otherwise the
// connection is insecure.
//
// The global provider is replaced only on success. The returned function must be
// called on exit to flush the last batch of spans.
func InstallTraceProvider(endpoint, serviceName, caCertsBase64 string) (ShutdownFunc, error) {
	if len(endpoint) == 0 {
		setGlobal(trace.NewNoopTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if caCertsBase64 != "" {
		tlsConfig, err := getTLSConfig(caCertsBase64)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConfig))
	} else {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Main())))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r))

	setGlobal(tp)

	return tp.Shutdown, nil
}

func setGlobal(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}
