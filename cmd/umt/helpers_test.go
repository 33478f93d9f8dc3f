package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-umt/fetch"
)

// ---------------------------------------------------------------------------
// Test Environment - Buffers and fakes injected into run()
// ---------------------------------------------------------------------------

// errNetworkDisabled is returned by the default test fetcher.
var errNetworkDisabled = errors.New("network disabled in tests")

// testEnv wraps an Environment whose streams are buffers.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment reading stdin and the given variables.
// Network access fails unless the test replaces Fetcher.
func newTestEnv(t *testing.T, stdin string, vars map[string]string) *testEnv {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdin:  strings.NewReader(stdin),
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Fetcher: fetch.FetcherFunc(func(context.Context, string) (*fetch.Response, error) {
			return nil, errNetworkDisabled
		}),
	}
	return &testEnv{Environment: env, stdout: stdout, stderr: stderr}
}

// pages serves fixed bodies by URL.
func pages(bodies map[string]string, contentType string) fetch.Fetcher {
	return fetch.FetcherFunc(func(_ context.Context, url string) (*fetch.Response, error) {
		body, ok := bodies[url]
		if !ok {
			return nil, fetch.ErrHTTPStatus
		}
		return &fetch.Response{URL: url, StatusCode: 200, ContentType: contentType, Body: []byte(body)}, nil
	})
}
