// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	info, err := os.Stat("/.dockerenv")
	return err == nil && !info.IsDir()
}

// InCI reports whether a common CI environment variable is set.
func InCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForChrome returns hints for a failed or unavailable Chrome backend.
func ForChrome(unavailable bool) string {
	var hints []string

	if unavailable {
		hints = append(hints, "run 'html2pdf install chrome' or pass --install to download Chromium")
	}
	if (InCI() || IsInContainer()) && os.Getenv("HTML2PDF_NO_SANDBOX") != "1" {
		hints = append(hints, "set HTML2PDF_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("HTML2PDF_BROWSER_BIN") == "" {
		hints = append(hints, "set HTML2PDF_BROWSER_BIN to use a custom Chrome")
	}

	return formatHints(hints)
}

// ForRemoteChrome returns hints for the DevTools endpoint backend.
func ForRemoteChrome(configured bool) string {
	if !configured {
		return format("set HTML2PDF_REMOTE_URL or --remote-url to a DevTools endpoint (ws://host:9222)")
	}
	return format("check the remote browser is running and reachable")
}

// ForWkhtmltopdf returns the install hint for the wkhtmltopdf binary.
func ForWkhtmltopdf() string {
	switch runtime.GOOS {
	case "darwin":
		return format("install it with 'brew install wkhtmltopdf' or set HTML2PDF_WKHTMLTOPDF_PATH")
	case "windows":
		return format("install it from https://wkhtmltopdf.org/downloads.html or set HTML2PDF_WKHTMLTOPDF_PATH")
	default:
		return format("install it with 'sudo apt-get install wkhtmltopdf' or set HTML2PDF_WKHTMLTOPDF_PATH")
	}
}

// ForStructured returns hints when the fallback found nothing to lay out.
func ForStructured() string {
	return format("check --entry-selector matches the report's repeated blocks")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use the --timeout flag")
}

// ForMissingInput returns a hint for a missing input document.
func ForMissingInput() string {
	return format("pass the HTML file as an argument or set HTML2PDF_INPUT")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-html2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-html2pdf") {
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
