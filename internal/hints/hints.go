// Package hints provides actionable error hints for common CLI failures.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-umt/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for headless browser launch errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a local Chrome")
	}

	hints = append(hints, "or drop --render to fetch over plain HTTP")

	return formatHints(hints)
}

// ForTimeout suggests raising the fetch timeout.
func ForTimeout() string {
	return format("slow hosts may need a larger --timeout")
}

// ForConfigNotFound suggests --config or creating a config under
// ~/.config/umt/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/umt.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/umt") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownType lists the registered mime types.
func ForUnknownType(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("registered types: " + strings.Join(available, ", ") + "; set --from explicitly")
}

// ForNoSerializer suggests a target that exists for the source type.
func ForNoSerializer(targets []string) string {
	if len(targets) == 0 {
		return ""
	}
	return format("try --to " + strings.Join(targets, ", --to "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
