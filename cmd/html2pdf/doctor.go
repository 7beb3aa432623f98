package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string        `json:"status"` // "ready", "warnings", "errors"
	Backends []backendInfo `json:"backends"`
	Chrome   chromeInfo    `json:"chrome"`
	Env      envInfo       `json:"environment"`
	System   systemInfo    `json:"system"`
	Warnings []string      `json:"warnings,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

// backendInfo holds the probe result of one backend.
type backendInfo struct {
	Name         string `json:"name"`
	Availability string `json:"availability"`
	Configured   bool   `json:"configured"` // part of the conversion order
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	RemoteURL     string `json:"remote_url,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// Chrome lookups, replaced in tests.
var (
	lookChromePath = launcher.LookPath
	chromeVersion  = func(ctx context.Context, path string) (string, error) {
		out, err := exec.CommandContext(ctx, path, "--version").Output()
		return strings.TrimSpace(string(out)), err
	}
)

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags or config.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, _, err := parseDoctorFlags(cmdDoctor, args, func() { printDoctorUsage(env.Stdout) })
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnEnvVars(env.Stderr)

	cflags := flags.asConvertFlags()
	cfg, err := loadLayeredConfig(cflags, envCfg, env)
	if err != nil {
		return printError(env.Stderr, err)
	}
	s, err := resolveBackendSettings(cflags, envCfg, cfg)
	if err != nil {
		return printError(env.Stderr, err)
	}

	log, err := logger.New(s.log, env.Stderr)
	if err != nil {
		return printError(env.Stderr, err)
	}
	defer func() { _ = log.Sync() }()

	// Probe every backend, not only the configured ones.
	all := *s
	all.backends = html2pdf.KnownBackends
	backends, err := env.NewBackends(&all, log)
	if err != nil {
		return printError(env.Stderr, err)
	}
	defer closeBackends(backends, log)

	result := runDoctor(ctx, backends, s, log)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, backends []html2pdf.Backend, s *settings, log *zap.Logger) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			RemoteURL: s.remoteURL,
		},
	}

	checkBackends(ctx, result, backends, s.backends, log)
	checkChrome(ctx, result, s)
	checkEnvironment(result, s)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkBackends probes every backend. Unavailable backends in the
// conversion order are warnings; an order where nothing can run is an error.
func checkBackends(ctx context.Context, result *doctorResult, backends []html2pdf.Backend, order []string, log *zap.Logger) {
	usable := 0
	for _, b := range backends {
		a := html2pdf.CheckAvailability(ctx, b, false, log)
		configured := slices.Contains(order, b.Name())
		result.Backends = append(result.Backends, backendInfo{
			Name:         b.Name(),
			Availability: a.String(),
			Configured:   configured,
		})
		if !configured {
			continue
		}
		switch a {
		case html2pdf.Available:
			usable++
		case html2pdf.Installable:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s is not installed. Run 'html2pdf install %s' or pass --install", b.Name(), b.Name()))
		default:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s is unavailable and will be skipped", b.Name()))
		}
	}

	if usable == 0 {
		result.Errors = append(result.Errors,
			"No configured backend is available. Install one or change --backends")
	}
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(ctx context.Context, result *doctorResult, s *settings) {
	chromePath := s.chrome.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = lookChromePath()
		if !found {
			return
		}
	}

	if !fileutil.FileExists(afero.NewOsFs(), chromePath) {
		if slices.Contains(s.backends, html2pdf.BackendChrome) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Chrome not found at %s", chromePath))
		}
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = !s.chrome.NoSandbox

	version, err := chromeVersion(ctx, chromePath)
	if err == nil {
		result.Chrome.Version = version
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, s *settings) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = hints.InCI()

	// Warn if container/CI without sandbox disabled
	if (result.Env.Container || result.Env.CI) && !s.chrome.NoSandbox &&
		slices.Contains(s.backends, html2pdf.BackendChrome) {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the Chrome sandbox is enabled. Set HTML2PDF_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("HTML2PDF_CONTAINER") == "1" {
		return true, "HTML2PDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by wkhtmltopdf is writable.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTempFile("test", "txt")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "html2pdf doctor")
	fmt.Fprintln(w)

	// Backends section
	fmt.Fprintln(w, "Backends")
	for _, b := range r.Backends {
		label := "[OK]"
		switch {
		case !b.Configured:
			label = "[--]"
		case b.Availability != html2pdf.Available.String():
			label = "[WARN]"
		}
		suffix := ""
		if !b.Configured {
			suffix = " (not in order)"
		}
		fmt.Fprintf(w, "  %s %s: %s%s\n", label, b.Name, b.Availability, suffix)
	}
	fmt.Fprintln(w)

	// Chrome section
	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (HTML2PDF_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	if r.Env.RemoteURL != "" {
		fmt.Fprintf(w, "  [OK] Remote endpoint: %s\n", r.Env.RemoteURL)
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
