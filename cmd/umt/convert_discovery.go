package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/internal/config"
	"github.com/alnah/go-umt/internal/fileutil"
)

// outputExtensions names output files by target type.
var outputExtensions = map[umt.MimeType]string{
	"text/markdown":    ".md",
	"text/html":        ".html",
	"application/json": ".json",
	"application/xml":  ".xml",
	"text/plain":       ".txt",
}

// FileToConvert represents a single input to process. OutputPath is empty
// when the result goes to standard output.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles expands inputs into files. Directories are walked for
// files whose extension accept recognizes; files and URLs named
// explicitly are always kept.
func discoverFiles(inputs []string, outputDir string, target umt.MimeType, accept func(path string) bool) ([]FileToConvert, error) {
	var files []FileToConvert
	for _, input := range inputs {
		if input == stdinName || fileutil.IsURL(input) {
			files = append(files, FileToConvert{InputPath: input, OutputPath: resolveOutputPath(urlOrStdinBase(input), outputDir, "", target)})
			continue
		}

		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		if !info.IsDir() {
			files = append(files, FileToConvert{InputPath: input, OutputPath: resolveOutputPath(input, outputDir, "", target)})
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() || !accept(path) {
				return nil
			}
			files = append(files, FileToConvert{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, input, target)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// urlOrStdinBase returns the name an output file takes after a URL or
// stdin input; empty means standard output.
func urlOrStdinBase(input string) string {
	if input == stdinName {
		return ""
	}
	base := filepath.Base(urlPath(input))
	if base == "." || base == "/" || base == "" {
		return "index"
	}
	return base
}

// resolveOutputPath determines the output path of an input. Without an
// output directory, and for stdin, the result goes to standard output.
func resolveOutputPath(inputPath, outputDir, baseInputDir string, target umt.MimeType) string {
	if inputPath == "" || outputDir == "" {
		return ""
	}
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext) + extensionFor(target, ext)

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base)
		}
	}

	return filepath.Join(outputDir, base)
}

// extensionFor returns the file extension of target, keeping the input's
// own extension when the target is the input type.
func extensionFor(target umt.MimeType, inputExt string) string {
	if target == "" {
		return inputExt
	}
	if ext, ok := outputExtensions[target]; ok {
		return ext
	}
	return inputExt
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}
