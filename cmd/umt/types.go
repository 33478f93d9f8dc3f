package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-umt/internal/config"
	"go.opentelemetry.io/otel/trace/noop"
)

// runTypes lists the parseable types and what each serializes to.
func runTypes(ctx context.Context, args []string, env *Environment) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: types takes no arguments", ErrUsage)
	}

	cfg := config.DefaultConfig()
	tk, err := newToolkit(ctx, cfg, newLogger(env.Stderr, commonFlags{quiet: true}), noop.NewTracerProvider().Tracer(serviceName), env.Fetcher)
	if err != nil {
		return err
	}
	defer func() { _ = tk.Close() }()

	e, _ := tk.engine("")
	types := e.MimeTypes()
	width := 0
	for _, m := range types {
		width = max(width, len(m))
	}
	for _, m := range types {
		fmt.Fprintf(env.Stdout, "%-*s  -> %s\n", width, m, strings.Join(typeNames(e.Targets(m)), ", "))
	}
	return nil
}
