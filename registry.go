package umt

import (
	"context"
	"slices"
)

// ParserFunc turns raw input into a tree. Parsers are expected to route
// every node they build through the creation pipeline (see Engine.Build).
type ParserFunc func(ctx context.Context, input string) (*Node, error)

// SerializerFunc turns a purified, single-mime-type tree into output.
// Returning false means "no output".
type SerializerFunc func(n *Node) (string, bool)

// NodeEvent is a creation hook callback. It receives the current node and
// the hook's registered context, and returns the node that replaces it.
type NodeEvent func(ctx context.Context, n *Node, hookCtx any) (*Node, error)

// NullSerializer never produces output. It is what LookupSerializer
// returns when no serializer matches.
func NullSerializer(*Node) (string, bool) { return "", false }

// CreateHook registers a NodeEvent for a mime type key: a concrete type
// ("text/markdown"), a kind-qualified type ("text/markdown:image"), a major
// wildcard ("text/*") or the global wildcard ("*/*").
type CreateHook struct {
	MimeType MimeType
	Event    NodeEvent

	// Match, when set, lets the hook decline a node.
	Match func(n *Node) bool

	// Context is handed to Event on every call, by reference. It is the
	// only place a hook may keep state across nodes. The engine neither
	// copies nor locks it.
	Context any
}

// Support declares a parseable mime type.
type Support struct {
	MimeType   MimeType
	Parser     ParserFunc
	Serializer SerializerFunc
}

// Serializer declares a conversion between two mime types, either of which
// may be a wildcard.
type Serializer struct {
	From       MimeType
	To         MimeType
	Serializer SerializerFunc
}

type serKey struct {
	from MimeType
	to   MimeType
}

// Registry records which mime types exist and how to parse, serialize and
// observe them. A Registry is populated before use and read-only after;
// registering while parses are running is unsupported.
type Registry struct {
	mimeTypes   map[MimeType]struct{}
	parsers     map[MimeType]ParserFunc
	serializers map[serKey]SerializerFunc
	hooks       map[MimeType][]CreateHook
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		mimeTypes:   make(map[MimeType]struct{}),
		parsers:     make(map[MimeType]ParserFunc),
		serializers: make(map[serKey]SerializerFunc),
		hooks:       make(map[MimeType][]CreateHook),
	}
}

// RegisterSupport declares m as parseable. The serializer becomes the
// identity serializer m→m; nil registers NullSerializer. Registering the
// same type twice overwrites the first registration.
func (r *Registry) RegisterSupport(m MimeType, parser ParserFunc, serializer SerializerFunc) {
	r.mimeTypes[m] = struct{}{}
	if parser != nil {
		r.parsers[m] = parser
	}
	if serializer == nil {
		serializer = NullSerializer
	}
	r.RegisterSerializer(m, m, serializer)
}

// RegisterSerializer declares fn as the serializer from → to.
func (r *Registry) RegisterSerializer(from, to MimeType, fn SerializerFunc) {
	r.serializers[serKey{from: from, to: to}] = fn
}

// RegisterCreationHook appends h to the hooks of h.MimeType. Hooks under
// the same key run in registration order.
func (r *Registry) RegisterCreationHook(h CreateHook) {
	r.hooks[h.MimeType] = append(r.hooks[h.MimeType], h)
}

// Has reports whether m was declared with RegisterSupport.
func (r *Registry) Has(m MimeType) bool {
	_, ok := r.mimeTypes[m]
	return ok
}

// MimeTypes returns the declared mime types, sorted.
func (r *Registry) MimeTypes() []MimeType {
	out := make([]MimeType, 0, len(r.mimeTypes))
	for m := range r.mimeTypes {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// LookupParser returns the parser registered for m.
func (r *Registry) LookupParser(m MimeType) (ParserFunc, bool) {
	p, ok := r.parsers[m]
	return p, ok
}

// LookupSerializer resolves a serializer by trying, in order, (from, to),
// (major(from)/*, to) and (*/*, to). When nothing matches it returns
// NullSerializer and false.
func (r *Registry) LookupSerializer(from, to MimeType) (SerializerFunc, bool) {
	for _, key := range serializerKeys(from, to) {
		if fn, ok := r.serializers[key]; ok {
			return fn, true
		}
	}
	return NullSerializer, false
}

// Targets returns the concrete mime types that a tree of type from can be
// serialized to, sorted.
func (r *Registry) Targets(from MimeType) []MimeType {
	sources := map[MimeType]bool{from: true, from.Wildcard(): true, AnyMimeType: true}
	seen := make(map[MimeType]struct{})
	for key := range r.serializers {
		if sources[key.from] && !key.to.IsWildcard() {
			seen[key.to] = struct{}{}
		}
	}
	out := make([]MimeType, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// LookupCreationHooks returns every hook that applies to a node of type m
// and the given kind, most specific key first: "m:kind", "m",
// "major(m)/*", "*/*". Hooks at all levels are returned.
func (r *Registry) LookupCreationHooks(m MimeType, kind string) []CreateHook {
	var out []CreateHook
	for _, key := range creationKeys(m, kind) {
		out = append(out, r.hooks[key]...)
	}
	return out
}

// registerDefinition adds everything a plugin declares.
func (r *Registry) registerDefinition(def Definition) {
	for _, s := range def.Supports {
		r.RegisterSupport(s.MimeType, s.Parser, s.Serializer)
	}
	for _, h := range def.OnCreate {
		r.RegisterCreationHook(h)
	}
	for _, s := range def.Serializers {
		r.RegisterSerializer(s.From, s.To, s.Serializer)
	}
}
