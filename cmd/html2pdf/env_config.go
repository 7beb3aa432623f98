package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
)

// envPrefix marks the variables read by the CLI.
const envPrefix = "HTML2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	Input      string        // HTML2PDF_INPUT: input HTML file
	Output     string        // HTML2PDF_OUTPUT: output PDF file
	ConfigPath string        // HTML2PDF_CONFIG: config file name or path
	Timeout    time.Duration // HTML2PDF_TIMEOUT: per-backend timeout

	// Tier 2 - Backends
	Backends        []string // HTML2PDF_BACKENDS: comma-separated order
	Install         *bool    // HTML2PDF_INSTALL: install missing backends
	BrowserBin      string   // HTML2PDF_BROWSER_BIN: Chrome binary
	NoSandbox       *bool    // HTML2PDF_NO_SANDBOX: disable the Chrome sandbox
	RemoteURL       string   // HTML2PDF_REMOTE_URL: DevTools endpoint
	WkhtmltopdfPath string   // HTML2PDF_WKHTMLTOPDF_PATH: wkhtmltopdf binary

	// Tier 3 - Formatting and logging
	PageSize    string   // HTML2PDF_PAGE_SIZE: a3, a4, a5, letter, legal
	Margins     string   // HTML2PDF_MARGINS: margin shorthand
	HeaderText  *string  // HTML2PDF_HEADER_TEXT: header text
	FooterText  *string  // HTML2PDF_FOOTER_TEXT: footer text, empty disables
	MinFontSize *float64 // HTML2PDF_MIN_FONT_SIZE: font size floor in points
	PrintMedia  *bool    // HTML2PDF_PRINT_MEDIA: honor the print stylesheet
	DateFormat  string   // HTML2PDF_DATE_FORMAT: [date] format
	LogLevel    string   // HTML2PDF_LOG_LEVEL: debug, info, warn, error
	LogFormat   string   // HTML2PDF_LOG_FORMAT: console, json
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"HTML2PDF_INPUT":   true,
	"HTML2PDF_OUTPUT":  true,
	"HTML2PDF_CONFIG":  true,
	"HTML2PDF_TIMEOUT": true,
	// Tier 2 - Backends
	"HTML2PDF_BACKENDS":         true,
	"HTML2PDF_INSTALL":          true,
	"HTML2PDF_BROWSER_BIN":      true,
	"HTML2PDF_NO_SANDBOX":       true,
	"HTML2PDF_REMOTE_URL":       true,
	"HTML2PDF_WKHTMLTOPDF_PATH": true,
	// Tier 3 - Formatting and logging
	"HTML2PDF_PAGE_SIZE":     true,
	"HTML2PDF_MARGINS":       true,
	"HTML2PDF_HEADER_TEXT":   true,
	"HTML2PDF_FOOTER_TEXT":   true,
	"HTML2PDF_MIN_FONT_SIZE": true,
	"HTML2PDF_PRINT_MEDIA":   true,
	"HTML2PDF_DATE_FORMAT":   true,
	"HTML2PDF_LOG_LEVEL":     true,
	"HTML2PDF_LOG_FORMAT":    true,
	// Container override read by doctor
	"HTML2PDF_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Values that fail to parse are ignored, like unset variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		Input:      os.Getenv("HTML2PDF_INPUT"),
		Output:     os.Getenv("HTML2PDF_OUTPUT"),
		ConfigPath: os.Getenv("HTML2PDF_CONFIG"),
		// Tier 2
		BrowserBin:      os.Getenv("HTML2PDF_BROWSER_BIN"),
		RemoteURL:       os.Getenv("HTML2PDF_REMOTE_URL"),
		WkhtmltopdfPath: os.Getenv("HTML2PDF_WKHTMLTOPDF_PATH"),
		Install:         envBool("HTML2PDF_INSTALL"),
		NoSandbox:       envBool("HTML2PDF_NO_SANDBOX"),
		// Tier 3
		PageSize:   os.Getenv("HTML2PDF_PAGE_SIZE"),
		Margins:    os.Getenv("HTML2PDF_MARGINS"),
		PrintMedia: envBool("HTML2PDF_PRINT_MEDIA"),
		DateFormat: os.Getenv("HTML2PDF_DATE_FORMAT"),
		LogLevel:   os.Getenv("HTML2PDF_LOG_LEVEL"),
		LogFormat:  os.Getenv("HTML2PDF_LOG_FORMAT"),
	}

	// Parse duration for timeout
	if timeout := os.Getenv("HTML2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if list := os.Getenv("HTML2PDF_BACKENDS"); list != "" {
		if names, err := html2pdf.ParseBackendNames(list); err == nil {
			cfg.Backends = names
		}
	}

	// Set-but-empty header and footer are meaningful: they disable the text.
	if v, ok := os.LookupEnv("HTML2PDF_HEADER_TEXT"); ok {
		cfg.HeaderText = &v
	}
	if v, ok := os.LookupEnv("HTML2PDF_FOOTER_TEXT"); ok {
		cfg.FooterText = &v
	}

	if size := os.Getenv("HTML2PDF_MIN_FONT_SIZE"); size != "" {
		if f, err := strconv.ParseFloat(size, 64); err == nil && f >= 0 {
			cfg.MinFontSize = &f
		}
	}

	return cfg
}

// envBool parses a boolean variable. Unset or invalid values return nil.
func envBool(name string) *bool {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// warnEnvVars prints warnings for unrecognized HTML2PDF_* variables, which
// catches typos like HTML2PDF_TIMEOUTS, and for known variables whose value
// loadEnvConfig ignores.
func warnEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
	for _, msg := range invalidEnvValues() {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}

// invalidEnvValues describes each set variable that loadEnvConfig ignores.
func invalidEnvValues() []string {
	var msgs []string
	ignored := func(name, value, reason string) {
		msgs = append(msgs, fmt.Sprintf("ignoring %s=%q: %s", name, value, reason))
	}

	if v := os.Getenv("HTML2PDF_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			ignored("HTML2PDF_TIMEOUT", v, "must be a positive duration like 30s or 2m")
		}
	}
	if v := os.Getenv("HTML2PDF_BACKENDS"); v != "" {
		if _, err := html2pdf.ParseBackendNames(v); err != nil {
			ignored("HTML2PDF_BACKENDS", v, err.Error())
		}
	}
	if v := os.Getenv("HTML2PDF_MIN_FONT_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err != nil || f < 0 {
			ignored("HTML2PDF_MIN_FONT_SIZE", v, "must be a number >= 0")
		}
	}
	for _, name := range []string{"HTML2PDF_INSTALL", "HTML2PDF_NO_SANDBOX", "HTML2PDF_PRINT_MEDIA"} {
		if v := os.Getenv(name); v != "" {
			if _, err := strconv.ParseBool(v); err != nil {
				ignored(name, v, "must be true, false, 1 or 0")
			}
		}
	}
	return msgs
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later via
// mergeFlags. This ensures: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - I/O (config path and timeout handled separately)
	if env.Input != "" {
		cfg.Input = env.Input
	}
	if env.Output != "" {
		cfg.Output = env.Output
	}

	// Tier 2 - Backends
	if len(env.Backends) > 0 {
		cfg.Backends.Order = env.Backends
	}
	if env.Install != nil {
		cfg.Backends.Install = *env.Install
	}
	if env.BrowserBin != "" {
		cfg.Chrome.BrowserBin = env.BrowserBin
	}
	if env.NoSandbox != nil {
		cfg.Chrome.NoSandbox = *env.NoSandbox
	}
	if env.RemoteURL != "" {
		cfg.Chrome.RemoteURL = env.RemoteURL
	}
	if env.WkhtmltopdfPath != "" {
		cfg.Wkhtmltopdf.Path = env.WkhtmltopdfPath
	}

	// Tier 3 - Formatting
	if env.PageSize != "" {
		cfg.Format.PageSize = env.PageSize
	}
	if env.Margins != "" {
		cfg.Format.Margins = env.Margins
	}
	if env.HeaderText != nil {
		cfg.Format.HeaderText = *env.HeaderText
	}
	if env.FooterText != nil {
		cfg.Format.FooterText = env.FooterText
	}
	if env.MinFontSize != nil {
		cfg.Format.MinFontSize = env.MinFontSize
	}
	if env.PrintMedia != nil {
		cfg.Format.PrintMediaCSS = env.PrintMedia
	}
	if env.DateFormat != "" {
		cfg.Format.DateFormat = env.DateFormat
	}

	// Tier 3 - Logging
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
