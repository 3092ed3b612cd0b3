// Package observe bootstraps OpenTelemetry for the SDK's command-line
// tool and wraps outgoing HTTP transports with instrumentation.
package observe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// HTTPTransport wraps an outgoing transport with OTel HTTP
// instrumentation.
func HTTPTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(base)
}

// Options configures telemetry bootstrap.
type Options struct {
	ServiceName    string
	MetricsEnabled bool
	MetricInterval time.Duration
}

// Configure installs tracer and meter providers backed by stdout
// exporters and returns a shutdown function. Export to a collector is
// the embedding application's concern; the SDK only needs providers
// for its own spans and cache metrics.
func Configure(ctx context.Context, opts Options) (func(context.Context) error, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", opts.ServiceName),
	)

	traceExporter, err := stdouttrace.New()
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	shutdown := func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	}

	if opts.MetricsEnabled {
		metricExporter, err := stdoutmetric.New()
		if err != nil {
			// tracing is already installed; unwind it before failing
			if shutdownErr := tracerProvider.Shutdown(ctx); shutdownErr != nil {
				log.Warn().Err(shutdownErr).Msg("trace provider shutdown failed")
			}
			return nil, err
		}

		interval := opts.MetricInterval
		if interval <= 0 {
			interval = time.Minute
		}

		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
				metricExporter,
				sdkmetric.WithInterval(interval),
			)),
		)
		otel.SetMeterProvider(meterProvider)

		shutdown = func(ctx context.Context) error {
			return errors.Join(
				tracerProvider.Shutdown(ctx),
				meterProvider.Shutdown(ctx),
			)
		}
	}

	log.Debug().Str("service", opts.ServiceName).Msg("telemetry configured")

	return shutdown, nil
}
