package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/internal/inspect"
	"github.com/alnah/go-umt/internal/yamlutil"
)

// Tree dump formats of the parse command.
const (
	formatTree = "tree"
	formatYAML = "yaml"
	formatNone = "none"
)

// runParse prints the tree of one document, then its serialization.
func runParse(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseParseFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: parse takes one input, got %d", ErrUsage, len(positional))
	}
	switch f.format {
	case formatTree, formatYAML, formatNone:
	default:
		return fmt.Errorf("%w: unknown format %q (want tree, yaml or none)", ErrUsage, f.format)
	}

	name := stdinName
	if len(positional) == 1 {
		name = positional[0]
	}

	s, err := resolveSettings(&f.treeFlags, env)
	if err != nil {
		return err
	}
	tk, done, err := openToolkit(ctx, s, f.common.trace, env)
	if err != nil {
		return err
	}
	defer done()

	ctx, span := tk.tracer.Start(ctx, "umt parse")
	defer span.End()

	e, tree, err := parseDocument(ctx, tk, s, name, env)
	if err != nil {
		return err
	}

	if err := dumpTree(env.Stdout, tree, f.format, s.noColor); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	out, err := serialize(ctx, e, tree, resolveTarget(s.to))
	if err != nil {
		return err
	}
	return writeText(env.Stdout, out)
}

// dumpTree writes tree in the requested format.
func dumpTree(w io.Writer, tree *umt.Node, format string, noColor bool) error {
	switch format {
	case formatYAML:
		data, err := yamlutil.Marshal(umt.Clean(tree))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatTree:
		styles := inspect.DefaultStyles()
		if noColor {
			styles = inspect.PlainStyles()
		}
		return inspect.Fprint(w, tree, styles)
	}
	return nil
}

// writeText writes s followed by a newline unless it already ends with one.
func writeText(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
