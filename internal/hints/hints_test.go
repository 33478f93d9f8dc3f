package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they use
//   t.Setenv and swap the package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

func withContainer(t *testing.T, inside bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return inside }
}

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		env         map[string]string
		wantSandbox bool
		wantBin     bool
	}{
		{
			name:        "in CI",
			env:         map[string]string{"CI": "true"},
			wantSandbox: true,
			wantBin:     true,
		},
		{
			name:        "in Docker",
			container:   true,
			wantSandbox: true,
			wantBin:     true,
		},
		{
			name:      "sandbox already disabled",
			container: true,
			env:       map[string]string{"ROD_NO_SANDBOX": "1"},
			wantBin:   true,
		},
		{
			name: "browser bin already set",
			env:  map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withContainer(t, tt.container)
			for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
				t.Setenv(k, tt.env[k])
			}

			hint := ForBrowserConnect()

			if !strings.HasPrefix(hint, "\n  hint: ") {
				t.Errorf("hint = %q, want hint prefix", hint)
			}
			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("mentions ROD_NO_SANDBOX = %v, want %v", got, tt.wantSandbox)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("mentions ROD_BROWSER_BIN = %v, want %v", got, tt.wantBin)
			}
			if !strings.Contains(hint, "--render") {
				t.Error("expected the plain HTTP fallback")
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{
			name:  "suggests user config path",
			paths: []string{"umt.yaml", "/home/u/.config/umt/umt.yaml"},
			want:  "\n  hint: use --config /path/to/umt.yaml or create /home/u/.config/umt/umt.yaml",
		},
		{
			name:  "no user path",
			paths: []string{"umt.yaml"},
			want:  "\n  hint: use --config /path/to/umt.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ForConfigNotFound(tt.paths); got != tt.want {
				t.Errorf("ForConfigNotFound() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForUnknownType(t *testing.T) {
	t.Parallel()

	if got := ForUnknownType(nil); got != "" {
		t.Errorf("ForUnknownType(nil) = %q, want empty", got)
	}
	got := ForUnknownType([]string{"text/html", "text/markdown"})
	if !strings.Contains(got, "text/html, text/markdown") || !strings.Contains(got, "--from") {
		t.Errorf("ForUnknownType() = %q", got)
	}
}

func TestForNoSerializer(t *testing.T) {
	t.Parallel()

	if got := ForNoSerializer(nil); got != "" {
		t.Errorf("ForNoSerializer(nil) = %q, want empty", got)
	}
	want := "\n  hint: try --to text/html, --to application/xml"
	if got := ForNoSerializer([]string{"text/html", "application/xml"}); got != want {
		t.Errorf("ForNoSerializer() = %q, want %q", got, want)
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	for name, hint := range map[string]string{
		"timeout":          ForTimeout(),
		"output directory": ForOutputDirectory(),
	} {
		if !strings.HasPrefix(hint, "\n  hint: ") {
			t.Errorf("%s hint = %q, want hint prefix", name, hint)
		}
	}
}
