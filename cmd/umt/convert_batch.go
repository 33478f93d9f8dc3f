package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-umt/internal/fileutil"
	"github.com/alnah/go-umt/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	// Output holds the serialization when OutputPath is empty.
	Output   string
	Err      error
	Duration time.Duration
}

// convertBatch converts files with at most workers running at once.
// Results keep the order of files; one failure does not stop the others.
func convertBatch(ctx context.Context, tk *toolkit, s *settings, files []FileToConvert, workers int, env *Environment) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(files))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = ConversionResult{InputPath: f.InputPath, Err: err}
				return nil
			}
			results[i] = convertFile(ctx, tk, s, f, env)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, tk *toolkit, s *settings, f FileToConvert, env *Environment) (result ConversionResult) {
	start := env.Now()
	result = ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	defer func() { result.Duration = env.Now().Sub(start) }()

	ctx, span := tk.tracer.Start(ctx, "umt convert", trace.WithAttributes(attribute.String("umt.input", f.InputPath)))
	defer span.End()

	e, tree, err := parseDocument(ctx, tk, s, f.InputPath, env)
	if err != nil {
		result.Err = err
		return result
	}

	out, err := serialize(ctx, e, tree, resolveTarget(s.to))
	if err != nil {
		result.Err = err
		return result
	}

	if f.OutputPath == "" {
		result.Output = out
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
		return result
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, []byte(out), filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return result
	}
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	// FirstErr is the error of the first failed input, in input order.
	FirstErr error
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			if summary.FirstErr == nil {
				summary.FirstErr = r.Err
			}
		} else {
			summary.Succeeded++
		}
	}
	return summary
}
