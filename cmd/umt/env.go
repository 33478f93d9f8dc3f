package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-umt/fetch"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Getenv and Environ read process environment variables.
	Getenv  func(string) string
	Environ func() []string
	// Fetcher replaces network access when set.
	Fetcher fetch.Fetcher
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
	}
}
