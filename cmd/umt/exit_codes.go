package main

import (
	"errors"
	"os"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/internal/config"
	"github.com/alnah/go-umt/internal/fileutil"
)

// Exit codes for the umt CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error, or a round trip that differs
	ExitUsage   = 2 // Invalid flags, config, or unsupported types
	ExitIO      = 3 // File not found, permission denied
	ExitFetch   = 4 // Network or browser errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Fetch errors (exit 4)
	if errors.Is(err, fetch.ErrBrowserConnect) ||
		errors.Is(err, fetch.ErrPageLoad) ||
		errors.Is(err, fetch.ErrHTTPStatus) ||
		errors.Is(err, fetch.ErrContentTooLarge) ||
		errors.Is(err, fetch.ErrTooManyRedirects) {
		return ExitFetch
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, fileutil.ErrFilenamePathTraversal) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, umt.ErrTypeNotRegistered) ||
		errors.Is(err, umt.ErrNoParser) ||
		errors.Is(err, fetch.ErrInvalidURL) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrNoSerializer) ||
		errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
