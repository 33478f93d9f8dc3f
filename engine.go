package umt

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans emitted by the engine.
const tracerName = "github.com/alnah/go-umt"

// Engine ties a Registry to the creation pipeline and exposes the Parse and
// Serialize entry points. Build one with NewEngine; it is safe for
// concurrent Parse and Serialize calls once constructed, but hook contexts
// shared between those calls are the caller's concern.
type Engine struct {
	*Registry

	plugins []Plugin
	logger  *log.Logger
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlugins registers plugins, in order, when the engine is built.
func WithPlugins(plugins ...Plugin) Option {
	return func(e *Engine) {
		e.plugins = append(e.plugins, plugins...)
	}
}

// WithLogger sets the logger handed to plugins. Defaults to a discarding
// logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer used for Parse and Serialize spans. Defaults to
// the global OpenTelemetry tracer, which is a no-op unless a provider is
// installed.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine creates an engine and registers its plugins.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Registry: NewRegistry(),
		logger:   log.New(io.Discard),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, p := range e.plugins {
		e.registerDefinition(p(e))
	}
	return e
}

// Logger returns the engine logger.
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// Parse parses input as mime type m.
func (e *Engine) Parse(ctx context.Context, input string, m MimeType) (node *Node, err error) {
	ctx, span := e.tracer.Start(ctx, "umt.Parse", trace.WithAttributes(
		attribute.String("umt.mime_type", string(m)),
		attribute.Int("umt.input_bytes", len(input)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !e.Has(m) {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotRegistered, m)
	}
	parser, ok := e.LookupParser(m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoParser, m)
	}
	return parser(ctx, input)
}

// Serialize converts n to mime type to; an empty to means n's own type.
// The tree is first purified to n's mime type, since a serializer cannot be
// assumed to understand nodes of other types. It returns false when the
// resolved serializer produced no output, including when none matched.
func (e *Engine) Serialize(n *Node, to MimeType) (string, bool) {
	return e.SerializeContext(context.Background(), n, to)
}

// SerializeContext is Serialize with its span started under ctx.
func (e *Engine) SerializeContext(ctx context.Context, n *Node, to MimeType) (string, bool) {
	if n == nil {
		return "", false
	}
	if to == "" {
		to = n.MimeType
	}

	_, span := e.tracer.Start(ctx, "umt.Serialize", trace.WithAttributes(
		attribute.String("umt.from", string(n.MimeType)),
		attribute.String("umt.to", string(to)),
	))
	defer span.End()

	fn, found := e.LookupSerializer(n.MimeType, to)
	span.SetAttributes(attribute.Bool("umt.serializer_found", found))
	return fn(Purify(n))
}

// MimeTypeOf detects the mime type of a filename or declared content type
// and returns it only if the engine can parse it.
func (e *Engine) MimeTypeOf(input string) (MimeType, bool) {
	m, ok := DetectMimeType(input)
	if !ok || !e.Has(m) {
		return "", false
	}
	return m, true
}
