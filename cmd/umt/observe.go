package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "umt"

// newLogger builds the CLI logger on w. The level follows --verbose and
// --quiet; colors are dropped with --no-color.
func newLogger(w io.Writer, f commonFlags) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: serviceName,
		Level:  log.InfoLevel,
	})
	switch {
	case f.verbose:
		l.SetLevel(log.DebugLevel)
	case f.quiet:
		l.SetLevel(log.ErrorLevel)
	}
	if f.noColor {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

// setupTracing returns the tracer handed to the engine and a shutdown
// function that flushes pending spans. Without --trace the tracer is a
// no-op.
func setupTracing(w io.Writer, enabled bool) (trace.Tracer, func(context.Context) error, error) {
	if !enabled {
		return noop.NewTracerProvider().Tracer(serviceName), func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSyncer(exporter),
	)
	return provider.Tracer("github.com/alnah/go-umt"), provider.Shutdown, nil
}
