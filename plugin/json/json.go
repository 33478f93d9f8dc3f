// Package json parses JSON into the unified tree. Objects and arrays become
// parent nodes; every node keeps its member key and raw JSON text.
package json

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	umt "github.com/alnah/go-umt"
)

// MimeType is the content type handled by this package.
const MimeType umt.MimeType = "application/json"

// RootKey is the key of the top-level value.
const RootKey = "root"

// Node kinds.
const (
	KindArray   = "array"
	KindObject  = "object"
	KindString  = "string"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindNull    = "null"
)

// ErrInvalidJSON is returned for malformed input.
var ErrInvalidJSON = errors.New("invalid JSON")

// Value is the payload of every JSON node. Key is the member name inside
// an object, the decimal index inside an array, RootKey at the top. Raw is
// the value's JSON text as found in the input.
type Value struct {
	Key string
	Raw string
}

// Decode returns the Go value of Raw: map[string]any, []any, string,
// float64, bool or nil.
func (v Value) Decode() any {
	return gjson.Parse(v.Raw).Value()
}

type options struct {
	indent string
}

// Option configures the json plugin.
type Option func(*options)

// WithIndent pretty-prints serialized output using indent per level.
func WithIndent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

// Plugin registers application/json support.
func Plugin(opts ...Option) umt.Plugin {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(e *umt.Engine) umt.Definition {
		return umt.Definition{
			Supports: []umt.Support{{
				MimeType: MimeType,
				Parser: func(ctx context.Context, input string) (*umt.Node, error) {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					if !gjson.Valid(input) {
						return nil, ErrInvalidJSON
					}
					return e.Build(ctx, fromResult(gjson.Parse(input), RootKey), MimeType)
				},
				Serializer: func(n *umt.Node) (string, bool) {
					var sb strings.Builder
					write(&sb, n)
					out := sb.String()
					if o.indent != "" {
						out = string(pretty.PrettyOptions([]byte(out), &pretty.Options{
							Width:  80,
							Indent: o.indent,
						}))
					}
					return out, true
				},
			}},
		}
	}
}

func fromResult(r gjson.Result, key string) *umt.Node {
	n := &umt.Node{Data: Value{Key: key, Raw: r.Raw}}
	switch {
	case r.IsObject():
		n.Type = KindObject
		n.Children = []*umt.Node{}
		r.ForEach(func(k, v gjson.Result) bool {
			n.Children = append(n.Children, fromResult(v, k.String()))
			return true
		})
	case r.IsArray():
		n.Type = KindArray
		n.Children = []*umt.Node{}
		r.ForEach(func(_, v gjson.Result) bool {
			n.Children = append(n.Children, fromResult(v, strconv.Itoa(len(n.Children))))
			return true
		})
	default:
		n.Type = kindOf(r.Type)
	}
	return n
}

func kindOf(t gjson.Type) string {
	switch t {
	case gjson.String:
		return KindString
	case gjson.Number:
		return KindNumber
	case gjson.True, gjson.False:
		return KindBoolean
	default:
		return KindNull
	}
}

// write rebuilds JSON from the tree so that nodes added, removed or
// rewritten by hooks are reflected in the output.
func write(sb *strings.Builder, n *umt.Node) {
	switch n.Type {
	case KindObject:
		sb.WriteByte('{')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, _ := stdjson.Marshal(KeyOf(c))
			sb.Write(key)
			sb.WriteByte(':')
			write(sb, c)
		}
		sb.WriteByte('}')
	case KindArray:
		sb.WriteByte('[')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			write(sb, c)
		}
		sb.WriteByte(']')
	default:
		v, _ := n.Data.(Value)
		raw := strings.TrimSpace(v.Raw)
		if raw == "" {
			raw = "null"
		}
		sb.WriteString(raw)
	}
}

// KeyOf returns the member key of a JSON node.
func KeyOf(n *umt.Node) string {
	v, _ := n.Data.(Value)
	return v.Key
}

// Get returns the child of an object node with the given key.
func Get(n *umt.Node, key string) (*umt.Node, bool) {
	if n.Type != KindObject {
		return nil, false
	}
	for _, c := range n.Children {
		if KeyOf(c) == key {
			return c, true
		}
	}
	return nil, false
}
