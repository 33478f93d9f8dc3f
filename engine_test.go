package umt

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// wordsPlugin parses "text/x-words" into a root with one "word" leaf per
// whitespace-separated token, and serializes it back joined by single
// spaces.
func wordsPlugin(e *Engine) Definition {
	const mt MimeType = "text/x-words"
	return Definition{
		Supports: []Support{{
			MimeType: mt,
			Parser: func(ctx context.Context, input string) (*Node, error) {
				root := &Node{Type: "root", Children: []*Node{}}
				for _, w := range strings.Fields(input) {
					root.Children = append(root.Children, &Node{Type: "word", Data: w})
				}
				return e.Build(ctx, root, mt)
			},
			Serializer: func(n *Node) (string, bool) {
				words := make([]string, 0, len(n.Children))
				for _, c := range n.Children {
					words = append(words, c.Data.(string))
				}
				return strings.Join(words, " "), true
			},
		}},
	}
}

func TestEngine_Parse(t *testing.T) {
	t.Parallel()

	t.Run("unregistered type", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(WithPlugins(wordsPlugin))
		_, err := e.Parse(context.Background(), "a b", "text/plain")
		if !errors.Is(err, ErrTypeNotRegistered) {
			t.Errorf("error = %v, want ErrTypeNotRegistered", err)
		}
	})

	t.Run("registered without parser", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(WithPlugins(Static(Definition{
			Supports: []Support{{MimeType: "text/plain"}},
		})))
		_, err := e.Parse(context.Background(), "a b", "text/plain")
		if !errors.Is(err, ErrNoParser) {
			t.Errorf("error = %v, want ErrNoParser", err)
		}
	})

	t.Run("every node is created", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(WithPlugins(wordsPlugin))
		root, err := e.Parse(context.Background(), "one two  three", "text/x-words")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(root.Children) != 3 {
			t.Fatalf("children = %d, want 3", len(root.Children))
		}
		Walk(root, func(n *Node) bool {
			if !n.Created() {
				t.Errorf("%s node bypassed creation", n.Type)
			}
			if n.MimeType != "text/x-words" {
				t.Errorf("%s node mime type = %q", n.Type, n.MimeType)
			}
			return true
		})
		assertParentIndex(t, root)
	})

	t.Run("hook error aborts the parse", func(t *testing.T) {
		t.Parallel()

		errBad := errors.New("bad word")
		e := NewEngine(WithPlugins(wordsPlugin, Static(Definition{
			OnCreate: []CreateHook{{
				MimeType: "text/x-words:word",
				Event: func(_ context.Context, n *Node, _ any) (*Node, error) {
					if n.Data == "two" {
						return nil, errBad
					}
					return n, nil
				},
			}},
		})))

		root, err := e.Parse(context.Background(), "one two", "text/x-words")
		if !errors.Is(err, errBad) {
			t.Errorf("error = %v, want errBad", err)
		}
		if root != nil {
			t.Error("Parse returned a partial tree")
		}
	})
}

func TestEngine_Serialize(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithPlugins(wordsPlugin, Static(Definition{
		Serializers: []Serializer{{
			From: "text/*",
			To:   "text/x-count",
			Serializer: func(n *Node) (string, bool) {
				return strings.Repeat("#", len(n.Children)), true
			},
		}},
	})))

	root, err := e.Parse(context.Background(), "alpha beta", "text/x-words")
	if err != nil {
		t.Fatal(err)
	}
	// A foreign child must not reach the words serializer.
	root = AddChildren(root, &Node{MimeType: "image/png", Type: "blob"})

	tests := []struct {
		name   string
		to     MimeType
		want   string
		wantOK bool
	}{
		{name: "default target is own type", to: "", want: "alpha beta", wantOK: true},
		{name: "identity", to: "text/x-words", want: "alpha beta", wantOK: true},
		{name: "major wildcard source", to: "text/x-count", want: "##", wantOK: true},
		{name: "no serializer", to: "application/pdf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := e.Serialize(root, tt.to)
			if ok != tt.wantOK {
				t.Fatalf("Serialize(%q) ok = %v, want %v", tt.to, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Serialize(%q) = %q, want %q", tt.to, got, tt.want)
			}
		})
	}

	if len(root.Children) != 3 {
		t.Error("Serialize purified the caller's tree")
	}
}

func TestEngine_SerializeContext_ParentSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")
	e := NewEngine(WithPlugins(wordsPlugin), WithTracer(tracer))

	ctx, parent := tracer.Start(context.Background(), "document")
	root, err := e.Parse(ctx, "a b", "text/x-words")
	if err != nil {
		t.Fatal(err)
	}
	if out, ok := e.SerializeContext(ctx, root, ""); !ok || out != "a b" {
		t.Fatalf("SerializeContext() = %q, %v", out, ok)
	}
	parent.End()

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, span := range recorder.Ended() {
		byName[span.Name()] = span
	}
	for _, name := range []string{"umt.Parse", "umt.Serialize"} {
		span, ok := byName[name]
		if !ok {
			t.Errorf("span %s not recorded", name)
			continue
		}
		if span.Parent().SpanID() != parent.SpanContext().SpanID() {
			t.Errorf("span %s parent = %s, want %s", name, span.Parent().SpanID(), parent.SpanContext().SpanID())
		}
	}
}

func TestEngine_SerializeNil(t *testing.T) {
	t.Parallel()

	if out, ok := NewEngine().Serialize(nil, "text/plain"); ok || out != "" {
		t.Errorf("Serialize(nil) = %q, %v", out, ok)
	}
}

func TestEngine_MimeTypeOf(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithPlugins(Static(Definition{
		Supports: []Support{{MimeType: "text/markdown"}},
	})))

	tests := []struct {
		input  string
		want   MimeType
		wantOK bool
	}{
		{input: "README.md", want: "text/markdown", wantOK: true},
		{input: "text/x-markdown", want: "text/markdown", wantOK: true},
		{input: "index.html", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, ok := e.MimeTypeOf(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MimeTypeOf(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEngine_PluginOrder(t *testing.T) {
	t.Parallel()

	first := Static(Definition{Supports: []Support{{
		MimeType:   "text/plain",
		Serializer: func(*Node) (string, bool) { return "first", true },
	}}})
	second := Static(Definition{Supports: []Support{{
		MimeType:   "text/plain",
		Serializer: func(*Node) (string, bool) { return "second", true },
	}}})

	e := NewEngine(WithPlugins(first), WithPlugins(second))
	if out, _ := e.Serialize(&Node{MimeType: "text/plain", Type: "root"}, ""); out != "second" {
		t.Errorf("Serialize() = %q, want the later plugin to win", out)
	}
}
