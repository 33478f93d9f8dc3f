package umt

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// N runs raw through the creation pipeline. The node's own MimeType wins
// over m; if neither is set N fails with ErrNoMimeType.
//
// Matching hooks run one after another, most specific key first, each
// receiving the node returned by the previous one. A hook error stops the
// chain and N returns no node.
func (e *Engine) N(ctx context.Context, raw *Node, m MimeType) (*Node, error) {
	if raw == nil {
		return nil, ErrNilNode
	}
	mimeType := raw.MimeType
	if mimeType == "" {
		mimeType = m
	}
	if mimeType == "" {
		return nil, fmt.Errorf("%w: node type %q", ErrNoMimeType, raw.Type)
	}

	node := raw.Clone()
	node.MimeType = mimeType

	for _, hook := range e.LookupCreationHooks(mimeType, raw.Type) {
		if hook.Match != nil && !hook.Match(node) {
			continue
		}
		next, err := hook.Event(ctx, node, hook.Context)
		if err != nil {
			err = fmt.Errorf("%w: %s on %s node: %w", ErrHook, hook.MimeType, node.Type, err)
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("%w: hook %s returned no node", ErrNilNode, hook.MimeType)
		}
		node = next
	}

	node.created = true
	return node, nil
}

// Build sends every node of a raw tree that has not been created yet
// through N, top-down, keeping parent and index consistent. Format parsers
// call it on the tree they build. Nodes synthesized by hooks are already
// created and pass through untouched.
func (e *Engine) Build(ctx context.Context, raw *Node, m MimeType) (*Node, error) {
	return Map(ctx, raw, func(ctx context.Context, n *Node) (*Node, error) {
		if n.Created() {
			return n, nil
		}
		return e.N(ctx, n, m)
	}, false)
}
