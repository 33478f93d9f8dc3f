package main

// Notes:
// - print*Usage: we test that required content strings are present. Exact
//   formatting is an implementation detail.
// - runHelp: we test routing to the correct help topic.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Main usage output
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	output := buf.String()

	for _, s := range []string{"Usage: umt", "Commands:", "parse", "convert", "diff", "types", "version", "help"} {
		if !strings.Contains(output, s) {
			t.Errorf("printUsage output should contain %q", s)
		}
	}
}

// ---------------------------------------------------------------------------
// TestCommandUsage - Every flag is documented
// ---------------------------------------------------------------------------

func TestCommandUsage(t *testing.T) {
	t.Parallel()

	shared := []string{
		"--from", "--to", "--id", "--text", "--sanitize", "--indent", "--filter",
		"--crawl", "--max-depth", "--allow-domain", "--block-domain", "--current-domain",
		"--render", "--timeout", "--images", "--store", "--store-dir", "--store-db",
		"--config", "--quiet", "--verbose", "--no-color", "--trace",
	}
	tests := []struct {
		name  string
		print func(w *bytes.Buffer)
		extra []string
	}{
		{"parse", func(w *bytes.Buffer) { printParseUsage(w) }, []string{"Usage: umt parse", "--format"}},
		{"convert", func(w *bytes.Buffer) { printConvertUsage(w) }, []string{"Usage: umt convert", "--output", "--workers"}},
		{"diff", func(w *bytes.Buffer) { printDiffUsage(w) }, []string{"Usage: umt diff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.print(&buf)
			output := buf.String()
			for _, s := range append(tt.extra, shared...) {
				if !strings.Contains(output, s) {
					t.Errorf("%s usage should contain %q", tt.name, s)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Topic routing
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{"no topic", nil, "Commands:", nil},
		{"parse", []string{"parse"}, "Usage: umt parse", nil},
		{"convert", []string{"convert"}, "Usage: umt convert", nil},
		{"diff", []string{"diff"}, "Usage: umt diff", nil},
		{"types", []string{"types"}, "Usage: umt types", nil},
		{"version", []string{"version"}, "Usage: umt version", nil},
		{"help", []string{"help"}, "Usage: umt help", nil},
		{"unknown", []string{"frobnicate"}, "", ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, "", nil)
			err := runHelp(tt.args, env.Environment)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("runHelp(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(env.stdout.String(), tt.want) {
				t.Errorf("runHelp(%v) output = %q, want it to contain %q", tt.args, env.stdout.String(), tt.want)
			}
		})
	}
}
