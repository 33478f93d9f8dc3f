package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// runDiff parses one document, serializes it back to its own type and
// prints a line diff between the two. A difference exits with
// ExitGeneral, like diff(1).
func runDiff(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseDiffFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: diff takes one input, got %d", ErrUsage, len(positional))
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

	ctx, span := tk.tracer.Start(ctx, "umt diff")
	defer span.End()

	// The document is read once here so that the diff compares against
	// exactly what was parsed.
	doc, err := readDocument(ctx, name, env, tk.pages)
	if err != nil {
		return err
	}
	e, _ := tk.engine(doc.source)
	m, err := resolveType(e, doc, s.from)
	if err != nil {
		return err
	}
	tree, err := e.Parse(ctx, doc.content, m)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	out, err := serialize(ctx, e, s.filter.Apply(tree), "")
	if err != nil {
		return err
	}

	changed := writeLineDiff(env.Stdout, name, doc.content, out, s.noColor)
	if changed {
		return fmt.Errorf("%w: %s", ErrRoundTripDiffers, name)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "%s: round trip is identical\n", name)
	}
	return nil
}

// writeLineDiff prints a line-level diff of before and after and reports
// whether they differ. A missing final newline is not a difference.
func writeLineDiff(w io.Writer, name, before, after string, noColor bool) bool {
	before, after = withFinalNewline(before), withFinalNewline(after)
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changed := false
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}

	del := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).TabWidth(lipgloss.NoTabConversion)
	ins := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).TabWidth(lipgloss.NoTabConversion)
	paint := func(style lipgloss.Style, s string) string {
		if noColor {
			return s
		}
		return style.Render(s)
	}

	fmt.Fprintf(w, "--- %s\n+++ %s (round trip)\n", name, name)
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				fmt.Fprintln(w, paint(del, "-"+line))
			case diffmatchpatch.DiffInsert:
				fmt.Fprintln(w, paint(ins, "+"+line))
			default:
				fmt.Fprintln(w, " "+line)
			}
		}
	}
	return true
}

// splitLines splits text into lines, dropping the empty string after a
// final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func withFinalNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
