// Package hints appends actionable advice to CLI error messages.
// Every hint is formatted as "\n  hint: <text>".
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/livemd/internal/fileutil"
)

// IsInContainer detects Docker and similar runtimes via /.dockerenv.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for PDF export when Chrome cannot start.
// Chrome runs unsandboxed when CI=true or ROD_BROWSER_BIN is set.
func ForBrowserConnect() string {
	var hints []string

	browserBin := os.Getenv("ROD_BROWSER_BIN")
	inCI := os.Getenv("CI") == "true"

	if IsInContainer() && !inCI && browserBin == "" {
		hints = append(hints, "set CI=true to run Chrome without a sandbox in containers")
	}
	if browserBin == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	hints = append(hints, "run 'livemd doctor' to check the browser setup")

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the export timeout.
func ForTimeout() string {
	return format("for large documents, use --timeout or LIVEMD_TIMEOUT")
}

// ForConfigNotFound suggests --config or creating the file in the livemd
// user config directory, when one appears among searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/livemd.yaml"

	marker := string(filepath.Separator) + "livemd" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, marker) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForAddrInUse suggests another listen address.
func ForAddrInUse(addr string) string {
	return format("another process is listening on " + addr + "; use --addr or LIVEMD_ADDR")
}

// ForUnsupportedStore lists the accepted store DSN forms.
func ForUnsupportedStore() string {
	return format("use memory://, file://path.yaml or sqlite://path.db")
}

// ForUnknownStyle lists available highlight styles.
func ForUnknownStyle(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
