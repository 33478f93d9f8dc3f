// Package id assigns a unique identifier to every node as it is created.
package id

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	umt "github.com/alnah/go-umt"
)

// AttrKey is the node attribute holding the identifier.
const AttrKey = "id"

// Generator returns a fresh identifier on every call. It may be called
// concurrently.
type Generator func() string

type options struct {
	generate  Generator
	overwrite bool
}

// Option configures the id plugin.
type Option func(*options)

// WithGenerator replaces the default UUID generator.
func WithGenerator(g Generator) Option {
	return func(o *options) {
		if g != nil {
			o.generate = g
		}
	}
}

// WithOverwrite replaces identifiers that are already set.
func WithOverwrite() Option {
	return func(o *options) {
		o.overwrite = true
	}
}

// Plugin registers a global creation hook setting the id attribute.
func Plugin(opts ...Option) umt.Plugin {
	o := options{generate: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return umt.Static(umt.Definition{
		OnCreate: []umt.CreateHook{{
			MimeType: umt.AnyMimeType,
			Event: func(_ context.Context, n *umt.Node, _ any) (*umt.Node, error) {
				if Has(n) && !o.overwrite {
					return n, nil
				}
				return n.WithAttr(AttrKey, o.generate()), nil
			},
		}},
	})
}

// Of returns the identifier of n.
func Of(n *umt.Node) (string, bool) {
	v, ok := n.Attr(AttrKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Has reports whether n carries an identifier.
func Has(n *umt.Node) bool {
	_, ok := Of(n)
	return ok
}

// Sequence returns a deterministic Generator yielding prefix1, prefix2, ...
func Sequence(prefix string) Generator {
	var next atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, next.Add(1))
	}
}
