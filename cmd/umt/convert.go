package main

import (
	"context"
	"fmt"
	"io"
	"time"
)

// runConvert converts every input to the target type.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		positional = []string{stdinName}
	}

	s, err := resolveSettings(&f.treeFlags, env)
	if err != nil {
		return err
	}
	if f.set["workers"] {
		s.cfg.Workers = f.workers
	}
	outputDir := f.output
	if outputDir == "" {
		outputDir = s.cfg.Output.DefaultDir
	}

	tk, done, err := openToolkit(ctx, s, f.common.trace, env)
	if err != nil {
		return err
	}
	defer done()

	// A throwaway engine answers which extensions are parseable.
	detector, _ := tk.engine("")
	accept := func(path string) bool {
		_, ok := detector.MimeTypeOf(path)
		return ok
	}

	target := resolveTarget(s.to)
	files, err := discoverFiles(positional, outputDir, target, accept)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no parseable files found", ErrNoInput)
	}

	workers := resolveWorkers(s.cfg.Workers)
	s.logger.Debug("converting", "files", len(files), "workers", workers, "to", target)

	results := convertBatch(ctx, tk, s, files, workers, env)
	summary := printResults(results, f.common.quiet, f.common.verbose, env)
	if summary.Failed > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", summary.Failed, summary.FirstErr)
	}
	return nil
}

// printResults writes standard output results in input order and reports
// file results on stderr.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if r.OutputPath == "" {
			if err := writeText(env.Stdout, r.Output); err != nil {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, err)
			}
			continue
		}

		if quiet {
			continue
		}
		reportCreated(env.Stderr, r, verbose)
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stderr, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary
}

func reportCreated(w io.Writer, r ConversionResult, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(w, "Created %s\n", r.OutputPath)
}
