// SPDX-License-Identifier: MPL-2.0

// Package tracing installs the OpenTelemetry tracer provider selected by the
// trace.exporter setting.
package tracing

import (
	"context"
	"fmt"
	"io"

	"github.com/osakit/osakit/internal/config"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Setup returns the tracer provider for exporter and a shutdown function.
// Spans are exported synchronously: a CLI process may exit right after the
// run, before a batcher would flush. The stdout exporter writes to w.
func Setup(exporter config.TraceExporter, w io.Writer) (trace.TracerProvider, ShutdownFunc, error) {
	noopShutdown := func(context.Context) error { return nil }

	switch exporter {
	case config.TraceExporterNone, "":
		return noop.NewTracerProvider(), noopShutdown, nil
	case config.TraceExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exp),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		return tp, tp.Shutdown, nil
	default:
		return nil, nil, fmt.Errorf("unsupported exporter: %s", exporter)
	}
}
