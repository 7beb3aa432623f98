// Package config loads the YAML configuration file of the html2pdf CLI.
//
// Zero values mean "not set": the CLI layers environment variables and flags
// on top, then falls back to the library defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// dirName is the directory under the user config dir searched for named configs.
const dirName = "go-html2pdf"

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX
	MaxURLLength      = 2048 // Browser limit
	MaxTitleLength    = 200  // Document title
	MaxTextLength     = 500  // Header/footer text
	MaxSelectorLength = 200  // CSS selector
	MaxShortLength    = 50   // page size, margins, durations, levels
)

// Config holds all configuration for a conversion run.
type Config struct {
	Input       string            `yaml:"input"`
	Output      string            `yaml:"output"`
	Backends    BackendsConfig    `yaml:"backends"`
	Chrome      ChromeConfig      `yaml:"chrome"`
	Wkhtmltopdf WkhtmltopdfConfig `yaml:"wkhtmltopdf"`
	Format      FormatConfig      `yaml:"format"`
	Extract     ExtractConfig     `yaml:"extract"`
	Log         LogConfig         `yaml:"log"`
}

// BackendsConfig selects and bounds the rendering backends.
type BackendsConfig struct {
	Order   []string `yaml:"order"`   // empty = default order
	Install bool     `yaml:"install"` // allow on-demand installation
	Timeout string   `yaml:"timeout"` // per attempt, e.g. "2m"; empty = none
}

// ChromeConfig configures the local and remote Chrome backends.
type ChromeConfig struct {
	BrowserBin string `yaml:"browserBin"`
	NoSandbox  bool   `yaml:"noSandbox"`
	RemoteURL  string `yaml:"remoteURL"`
}

// WkhtmltopdfConfig configures the wkhtmltopdf backend.
type WkhtmltopdfConfig struct {
	Path string `yaml:"path"` // empty = search PATH
}

// FormatConfig mirrors html2pdf.Format with YAML-friendly types.
type FormatConfig struct {
	Title          string           `yaml:"title"`
	PageSize       string           `yaml:"pageSize"` // a3, a4, a5, letter, legal
	Margins        string           `yaml:"margins"`  // "0.75in" or "1cm 2cm" or "10mm 15mm 10mm 15mm"
	HeaderText     string           `yaml:"headerText"`
	FooterText     *string          `yaml:"footerText"` // nil = default, "" = no footer
	HeaderFontSize float64          `yaml:"headerFontSize"`
	FooterFontSize float64          `yaml:"footerFontSize"`
	HeaderSpacing  float64          `yaml:"headerSpacing"`
	FooterSpacing  float64          `yaml:"footerSpacing"`
	MinFontSize    *float64         `yaml:"minFontSize"`   // nil = default, 0 = disabled
	PrintMediaCSS  *bool            `yaml:"printMediaCSS"` // nil = default (true)
	DateFormat     string           `yaml:"dateFormat"`    // [date] format: preset or tokens
	PageBreaks     PageBreaksConfig `yaml:"pageBreaks"`
}

// PageBreaksConfig lists CSS selectors per page-break hint. A nil list keeps
// the default, an empty list disables it.
type PageBreaksConfig struct {
	AvoidInside []string `yaml:"avoidInside"`
	AvoidAfter  []string `yaml:"avoidAfter"`
	Before      []string `yaml:"before"`
}

// ExtractConfig holds the selectors used by the structured fallback.
type ExtractConfig struct {
	Entry   string `yaml:"entry"`
	Title   string `yaml:"title"`
	Row     string `yaml:"row"`
	Label   string `yaml:"label"`
	Content string `yaml:"content"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns a configuration with nothing set.
func DefaultConfig() *Config {
	return &Config{}
}

// TimeoutDuration parses Backends.Timeout. Empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Backends.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Backends.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: backends.timeout %q: %v", ErrInvalidValue, c.Backends.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: backends.timeout %q is negative", ErrInvalidValue, c.Backends.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and the values the config package can judge
// on its own. Page sizes, lengths and backend names are checked by the
// library when the configuration is applied.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input", c.Input, MaxPathLength},
		{"output", c.Output, MaxPathLength},
		{"backends.timeout", c.Backends.Timeout, MaxShortLength},
		{"chrome.browserBin", c.Chrome.BrowserBin, MaxPathLength},
		{"chrome.remoteURL", c.Chrome.RemoteURL, MaxURLLength},
		{"wkhtmltopdf.path", c.Wkhtmltopdf.Path, MaxPathLength},
		{"format.title", c.Format.Title, MaxTitleLength},
		{"format.pageSize", c.Format.PageSize, MaxShortLength},
		{"format.margins", c.Format.Margins, MaxShortLength},
		{"format.headerText", c.Format.HeaderText, MaxTextLength},
		{"format.dateFormat", c.Format.DateFormat, MaxShortLength},
		{"extract.entry", c.Extract.Entry, MaxSelectorLength},
		{"extract.title", c.Extract.Title, MaxSelectorLength},
		{"extract.row", c.Extract.Row, MaxSelectorLength},
		{"extract.label", c.Extract.Label, MaxSelectorLength},
		{"extract.content", c.Extract.Content, MaxSelectorLength},
		{"log.level", c.Log.Level, MaxShortLength},
		{"log.format", c.Log.Format, MaxShortLength},
	}
	if c.Format.FooterText != nil {
		fields = append(fields, struct {
			name  string
			value string
			max   int
		}{"format.footerText", *c.Format.FooterText, MaxTextLength})
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	for name, list := range map[string][]string{
		"format.pageBreaks.avoidInside": c.Format.PageBreaks.AvoidInside,
		"format.pageBreaks.avoidAfter":  c.Format.PageBreaks.AvoidAfter,
		"format.pageBreaks.before":      c.Format.PageBreaks.Before,
	} {
		for i, sel := range list {
			if err := validateFieldLength(fmt.Sprintf("%s[%d]", name, i), sel, MaxSelectorLength); err != nil {
				return err
			}
		}
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	for _, size := range []struct {
		name  string
		value float64
	}{
		{"format.headerFontSize", c.Format.HeaderFontSize},
		{"format.footerFontSize", c.Format.FooterFontSize},
		{"format.headerSpacing", c.Format.HeaderSpacing},
		{"format.footerSpacing", c.Format.FooterSpacing},
	} {
		if size.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %.1f", ErrInvalidValue, size.name, size.value)
		}
	}
	if c.Format.MinFontSize != nil && *c.Format.MinFontSize < 0 {
		return fmt.Errorf("%w: format.minFontSize must not be negative, got %.1f", ErrInvalidValue, *c.Format.MinFontSize)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from the OS filesystem. See Load.
func LoadConfig(nameOrPath string) (*Config, error) {
	return Load(afero.NewOsFs(), nameOrPath)
}

// Load loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func Load(fs afero.Fs, nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(fs, nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(fs, configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return fileutil.IsFilePath(s) || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-html2pdf/
func resolveConfigPath(fs afero.Fs, name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	dirs := []string{"."}
	if dir, err := userConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, dirName))
	}

	var tried []string
	for _, dir := range dirs {
		for _, ext := range extensions {
			path := filepath.Join(dir, name+ext)
			if info, err := fs.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
			tried = append(tried, path)
		}
	}

	return "", &NotFoundError{Name: name, Tried: tried}
}

// NotFoundError lists the paths searched for a named config.
// It matches ErrConfigNotFound with errors.Is.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

// Is reports whether target is ErrConfigNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}
