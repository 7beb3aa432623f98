package config

// Notes:
// - Load is exercised against afero.MemMapFs; named lookups rely on the
//   package-level userConfigDir hook, so those subtests do not run in parallel.
// - Values such as page sizes and backend names are validated by the library,
//   not here.

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// ---------------------------------------------------------------------------
// TestLoad - File and Name Resolution
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		_, err := Load(afero.NewMemMapFs(), "")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("expected ErrEmptyConfigName, got %v", err)
		}
	})

	t.Run("missing file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := Load(afero.NewMemMapFs(), "/etc/nope/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("full file is decoded", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		content := `input: ideas.html
output: ideas.pdf
backends:
  order: [wkhtmltopdf, structured]
  install: true
  timeout: 90s
chrome:
  browserBin: /usr/bin/chromium
  noSandbox: true
wkhtmltopdf:
  path: /opt/wk/bin/wkhtmltopdf
format:
  title: Business Ideas
  pageSize: letter
  margins: 1cm 2cm
  footerText: ""
  minFontSize: 8
  printMediaCSS: false
  pageBreaks:
    avoidInside: [.business-idea]
    before: []
extract:
  entry: .idea
log:
  level: debug
  format: json
`
		if err := afero.WriteFile(fs, "/cfg/report.yaml", []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(fs, "/cfg/report.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Input != "ideas.html" || cfg.Output != "ideas.pdf" {
			t.Errorf("input/output = %q/%q", cfg.Input, cfg.Output)
		}
		if got := strings.Join(cfg.Backends.Order, ","); got != "wkhtmltopdf,structured" {
			t.Errorf("backends.order = %q", got)
		}
		if !cfg.Backends.Install {
			t.Error("expected backends.install = true")
		}
		if !cfg.Chrome.NoSandbox || cfg.Chrome.BrowserBin != "/usr/bin/chromium" {
			t.Errorf("chrome = %+v", cfg.Chrome)
		}
		if cfg.Wkhtmltopdf.Path != "/opt/wk/bin/wkhtmltopdf" {
			t.Errorf("wkhtmltopdf.path = %q", cfg.Wkhtmltopdf.Path)
		}
		if cfg.Format.PageSize != "letter" || cfg.Format.Margins != "1cm 2cm" {
			t.Errorf("format = %+v", cfg.Format)
		}
		if cfg.Format.FooterText == nil || *cfg.Format.FooterText != "" {
			t.Errorf("expected explicit empty footer, got %v", cfg.Format.FooterText)
		}
		if cfg.Format.MinFontSize == nil || *cfg.Format.MinFontSize != 8 {
			t.Errorf("minFontSize = %v", cfg.Format.MinFontSize)
		}
		if cfg.Format.PrintMediaCSS == nil || *cfg.Format.PrintMediaCSS {
			t.Errorf("printMediaCSS = %v", cfg.Format.PrintMediaCSS)
		}
		if cfg.Format.PageBreaks.Before == nil || len(cfg.Format.PageBreaks.Before) != 0 {
			t.Errorf("expected explicit empty before list, got %#v", cfg.Format.PageBreaks.Before)
		}
		if cfg.Format.PageBreaks.AvoidAfter != nil {
			t.Errorf("expected unset avoidAfter, got %#v", cfg.Format.PageBreaks.AvoidAfter)
		}
		if cfg.Extract.Entry != ".idea" {
			t.Errorf("extract.entry = %q", cfg.Extract.Entry)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("log = %+v", cfg.Log)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/cfg/bad.yaml", []byte("format: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(fs, "/cfg/bad.yaml")
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("expected ErrConfigParse, got %v", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/cfg/typo.yaml", []byte("outptu: x.pdf\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(fs, "/cfg/typo.yaml")
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("expected ErrConfigParse, got %v", err)
		}
	})

	t.Run("empty file returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/cfg/empty.yaml", nil, 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(fs, "/cfg/empty.yaml")
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("expected ErrConfigParse, got %v", err)
		}
	})

	t.Run("invalid timeout fails validation", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/cfg/t.yaml", []byte("backends:\n  timeout: soon\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(fs, "/cfg/t.yaml")
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue, got %v", err)
		}
	})
}

func TestLoad_ByName(t *testing.T) {
	orig := userConfigDir
	defer func() { userConfigDir = orig }()
	userConfigDir = func() (string, error) { return "/home/me/.config", nil }

	t.Run("current directory wins over user config dir", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "report.yaml", []byte("output: local.pdf\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		userPath := filepath.Join("/home/me/.config", dirName, "report.yaml")
		if err := afero.WriteFile(fs, userPath, []byte("output: user.pdf\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(fs, "report")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Output != "local.pdf" {
			t.Errorf("output = %q, want local.pdf", cfg.Output)
		}
	})

	t.Run("yml extension in user config dir", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		userPath := filepath.Join("/home/me/.config", dirName, "report.yml")
		if err := afero.WriteFile(fs, userPath, []byte("output: user.pdf\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(fs, "report")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Output != "user.pdf" {
			t.Errorf("output = %q, want user.pdf", cfg.Output)
		}
	})

	t.Run("not found lists searched paths", func(t *testing.T) {
		_, err := Load(afero.NewMemMapFs(), "missing")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}

		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected *NotFoundError, got %T", err)
		}
		if len(nf.Tried) != 4 {
			t.Errorf("expected 4 searched paths, got %v", nf.Tried)
		}
		if !strings.Contains(err.Error(), dirName) {
			t.Errorf("expected error to mention %s, got %q", dirName, err.Error())
		}
	})
}

// ---------------------------------------------------------------------------
// TestValidate - Field Limits and Values
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	negative := -1.0
	longFooter := strings.Repeat("f", MaxTextLength+1)

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "empty config is valid",
			cfg:  Config{},
		},
		{
			name:    "title too long",
			cfg:     Config{Format: FormatConfig{Title: strings.Repeat("t", MaxTitleLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "footer too long",
			cfg:     Config{Format: FormatConfig{FooterText: &longFooter}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "selector too long",
			cfg:     Config{Format: FormatConfig{PageBreaks: PageBreaksConfig{Before: []string{strings.Repeat("s", MaxSelectorLength+1)}}}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "remote URL too long",
			cfg:     Config{Chrome: ChromeConfig{RemoteURL: "ws://" + strings.Repeat("h", MaxURLLength)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "negative timeout",
			cfg:     Config{Backends: BackendsConfig{Timeout: "-5s"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative header font size",
			cfg:     Config{Format: FormatConfig{HeaderFontSize: -2}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative min font size",
			cfg:     Config{Format: FormatConfig{MinFontSize: &negative}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown log format",
			cfg:     Config{Log: LogConfig{Format: "xml"}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "upper-case log format accepted",
			cfg:  Config{Log: LogConfig{Format: "JSON"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTimeoutDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			cfg := Config{Backends: BackendsConfig{Timeout: tt.in}}
			got, err := cfg.TimeoutDuration()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("TimeoutDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
