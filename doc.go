// Package umt parses documents of different content types into one unified
// tree, lets plugins observe and rewrite every node as it is created, and
// serializes the tree back to any registered type.
//
// # Quick Start
//
// Build an engine from plugins, parse, serialize:
//
//	e := umt.NewEngine(umt.WithPlugins(
//	    id.Plugin(),
//	    markdown.Plugin(),
//	    xml.Plugin(),
//	))
//
//	root, err := e.Parse(ctx, "# Title\n\nBody text.", markdown.MimeType)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, ok := e.Serialize(root, "application/xml")
//
// # Nodes
//
// Every node carries a MimeType tag and a Type (its kind within the
// format: "heading", "array", "element"). Format payload lives in Data,
// attributes added by hooks in Attrs. Nodes with a non-nil Children slice
// are parents; Parent and Index are recomputed after every structural
// change and never serialized.
//
// # Creation Hooks
//
// Every node passes through Engine.N, which runs the hooks registered for
// the node's type in this order:
//
//  1. "text/markdown:image" (type qualified by kind)
//  2. "text/markdown"
//  3. "text/*"
//  4. "*/*"
//
// All matching hooks run, one at a time. Each may return a replacement
// node, for instance one with extra children of another mime type.
//
// # Serialization
//
// Serialize purifies the tree to the root's own mime type, then resolves a
// serializer from (from, to), (major(from)/*, to) and (*/*, to). When none
// matches, the result is "no output" rather than an error.
//
// # Concurrency
//
// The registry is filled by NewEngine and read-only afterwards. Hook
// contexts are shared by reference and never locked by the engine; plugins
// that accumulate state across concurrent parses must synchronize it
// themselves.
package umt
