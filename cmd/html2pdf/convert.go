package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/extract"
	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrTooManyInputs  = errors.New("only one input file is accepted")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrInterrupted    = errors.New("conversion interrupted")
	ErrUnknownCommand = errors.New("unknown command")
)

// settings is the fully resolved configuration of one run.
type settings struct {
	input           string
	output          string
	backends        []string
	install         bool
	timeout         time.Duration
	chrome          html2pdf.ChromeOptions
	remoteURL       string
	wkhtmltopdfPath string
	format          *html2pdf.Format
	selectors       extract.Selectors
	log             logger.Config
}

// runConvert orchestrates one conversion: configuration layering, backend
// construction, then the fallback sequence.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	envCfg := loadEnvConfig()
	warnEnvVars(env.Stderr)

	cfg, err := loadLayeredConfig(flags, envCfg, env)
	if err != nil {
		return err
	}

	s, err := resolveSettings(positionalArgs, flags, envCfg, cfg)
	if err != nil {
		return err
	}

	log, err := logger.New(s.log, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	backends, err := env.NewBackends(s, log)
	if err != nil {
		return err
	}
	defer closeBackends(backends, log)

	reporter := newConsoleReporter(env.Stdout, env.Stderr, flags.common.quiet)
	seq := html2pdf.NewSequencer(backends,
		html2pdf.WithLogger(log),
		html2pdf.WithFs(env.Fs),
		html2pdf.WithReporter(reporter),
		html2pdf.WithInstall(s.install),
		html2pdf.WithAttemptTimeout(s.timeout),
	)

	outcome := seq.Run(ctx, html2pdf.Plan{Input: s.input, Output: s.output, Format: s.format})
	if !outcome.Succeeded() && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
	return outcome.Err()
}

// loadLayeredConfig loads the config file (flag, then HTML2PDF_CONFIG),
// then applies environment variables and flags on top.
func loadLayeredConfig(flags *convertFlags, envCfg *envConfig, env *Environment) (*config.Config, error) {
	cfg := config.DefaultConfig()

	configPath := flags.common.config
	if configPath == "" {
		configPath = envCfg.ConfigPath
	}
	if configPath != "" {
		var err error
		cfg, err = config.Load(env.Fs, configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	return cfg, nil
}

// mergeFlags applies flags explicitly set on the command line to cfg.
// CLI flags override environment variables and config file values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output = flags.output
	}

	// Backends
	if flags.backends.order != "" {
		cfg.Backends.Order = strings.Split(flags.backends.order, ",")
	}
	if flags.changed("install") {
		cfg.Backends.Install = flags.backends.install
	}
	if flags.backends.browserBin != "" {
		cfg.Chrome.BrowserBin = flags.backends.browserBin
	}
	if flags.changed("no-sandbox") {
		cfg.Chrome.NoSandbox = flags.backends.noSandbox
	}
	if flags.backends.remoteURL != "" {
		cfg.Chrome.RemoteURL = flags.backends.remoteURL
	}
	if flags.backends.wkhtmltopdfPath != "" {
		cfg.Wkhtmltopdf.Path = flags.backends.wkhtmltopdfPath
	}

	// Format
	fc := &cfg.Format
	if flags.format.title != "" {
		fc.Title = flags.format.title
	}
	if flags.format.pageSize != "" {
		fc.PageSize = flags.format.pageSize
	}
	if flags.format.margins != "" {
		fc.Margins = flags.format.margins
	}
	if flags.changed("header-text") {
		fc.HeaderText = flags.format.headerText
	}
	if flags.changed("footer-text") {
		text := flags.format.footerText
		fc.FooterText = &text
	}
	if flags.format.noFooter {
		empty := ""
		fc.FooterText = &empty
	}
	if flags.format.headerFontSize > 0 {
		fc.HeaderFontSize = flags.format.headerFontSize
	}
	if flags.format.footerFontSize > 0 {
		fc.FooterFontSize = flags.format.footerFontSize
	}
	if flags.changed("min-font-size") {
		size := flags.format.minFontSize
		fc.MinFontSize = &size
	}
	if flags.changed("print-media") {
		printMedia := flags.format.printMedia
		fc.PrintMediaCSS = &printMedia
	}
	if flags.format.dateFormat != "" {
		fc.DateFormat = flags.format.dateFormat
	}

	// Page breaks
	if flags.pageBreaks.disabled {
		fc.PageBreaks = config.PageBreaksConfig{AvoidInside: []string{}, AvoidAfter: []string{}, Before: []string{}}
	} else {
		if flags.changed("avoid-break-inside") {
			fc.PageBreaks.AvoidInside = flags.pageBreaks.avoidInside
		}
		if flags.changed("avoid-break-after") {
			fc.PageBreaks.AvoidAfter = flags.pageBreaks.avoidAfter
		}
		if flags.changed("break-before") {
			fc.PageBreaks.Before = flags.pageBreaks.before
		}
	}

	// Extraction
	if flags.extract.entry != "" {
		cfg.Extract.Entry = flags.extract.entry
	}
	if flags.extract.title != "" {
		cfg.Extract.Title = flags.extract.title
	}
	if flags.extract.row != "" {
		cfg.Extract.Row = flags.extract.row
	}
	if flags.extract.label != "" {
		cfg.Extract.Label = flags.extract.label
	}
	if flags.extract.content != "" {
		cfg.Extract.Content = flags.extract.content
	}

	// Logging
	if flags.common.logLevel != "" {
		cfg.Log.Level = flags.common.logLevel
	}
	if flags.common.logFormat != "" {
		cfg.Log.Format = flags.common.logFormat
	}
}

// resolveSettings turns the layered config into a validated run.
func resolveSettings(args []string, flags *convertFlags, envCfg *envConfig, cfg *config.Config) (*settings, error) {
	input, err := resolveInputPath(args, cfg)
	if err != nil {
		return nil, err
	}

	s, err := resolveBackendSettings(flags, envCfg, cfg)
	if err != nil {
		return nil, err
	}

	format, err := buildFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	s.input = input
	s.output = cfg.Output
	if s.output == "" {
		s.output = fileutil.ReplaceExt(input, ".pdf")
	}
	s.format = format
	return s, nil
}

// resolveBackendSettings resolves what the backends need, without a
// document. Shared by convert, doctor and install.
func resolveBackendSettings(flags *convertFlags, envCfg *envConfig, cfg *config.Config) (*settings, error) {
	backends, err := resolveBackends(cfg)
	if err != nil {
		return nil, err
	}

	timeout, err := resolveTimeoutWithEnv(flags.backends.timeout, envCfg.Timeout, cfg.Backends.Timeout)
	if err != nil {
		return nil, err
	}

	selectors := extract.Selectors{
		Entry:   cfg.Extract.Entry,
		Title:   cfg.Extract.Title,
		Row:     cfg.Extract.Row,
		Label:   cfg.Extract.Label,
		Content: cfg.Extract.Content,
	}
	if err := selectors.Validate(); err != nil {
		return nil, err
	}

	return &settings{
		backends: backends,
		install:  cfg.Backends.Install,
		timeout:  timeout,
		chrome: html2pdf.ChromeOptions{
			BrowserBin: cfg.Chrome.BrowserBin,
			NoSandbox:  cfg.Chrome.NoSandbox,
			Timeout:    timeout,
		},
		remoteURL:       cfg.Chrome.RemoteURL,
		wkhtmltopdfPath: cfg.Wkhtmltopdf.Path,
		selectors:       selectors,
		log:             resolveLogConfig(flags.common, cfg.Log),
	}, nil
}

// resolveInputPath returns the positional input, falling back to config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("%w: got %d", ErrTooManyInputs, len(args))
	case len(args) == 1:
		return args[0], nil
	case cfg.Input != "":
		return cfg.Input, nil
	default:
		return "", ErrNoInput
	}
}

// resolveBackends returns the configured order, or the default one. With a
// remote endpoint configured and no explicit order, the remote browser is
// tried first.
func resolveBackends(cfg *config.Config) ([]string, error) {
	if len(cfg.Backends.Order) > 0 {
		return html2pdf.ParseBackendNames(strings.Join(cfg.Backends.Order, ","))
	}
	order := append([]string(nil), html2pdf.DefaultOrder...)
	if strings.TrimSpace(cfg.Chrome.RemoteURL) != "" {
		order = append([]string{html2pdf.BackendRemoteChrome}, order...)
	}
	return order, nil
}

// resolveTimeoutWithEnv determines the per-backend timeout.
// Priority: flag > env var > config. Zero means no timeout.
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration, configValue string) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: use format like 30s, 2m, 1m30s", ErrInvalidTimeout, flagValue)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q: must be positive", ErrInvalidTimeout, flagValue)
		}
		return d, nil
	}

	if envValue > 0 {
		return envValue, nil
	}

	if configValue != "" {
		d, err := time.ParseDuration(configValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q in config: use format like 30s, 2m, 1m30s", ErrInvalidTimeout, configValue)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q in config: must be positive", ErrInvalidTimeout, configValue)
		}
		return d, nil
	}

	return 0, nil
}

// buildFormat layers the config format over the library defaults.
func buildFormat(fc config.FormatConfig) (*html2pdf.Format, error) {
	f := html2pdf.DefaultFormat()

	f.Title = fc.Title
	if fc.PageSize != "" {
		f.PageSize = strings.ToLower(fc.PageSize)
	}
	if fc.Margins != "" {
		m, err := html2pdf.ParseMargins(fc.Margins)
		if err != nil {
			return nil, err
		}
		f.Margins = m
	}
	f.HeaderText = fc.HeaderText
	if fc.FooterText != nil {
		f.FooterText = *fc.FooterText
	}
	if fc.HeaderFontSize > 0 {
		f.HeaderFontSize = fc.HeaderFontSize
	}
	if fc.FooterFontSize > 0 {
		f.FooterFontSize = fc.FooterFontSize
	}
	if fc.HeaderSpacing > 0 {
		f.HeaderSpacing = fc.HeaderSpacing
	}
	if fc.FooterSpacing > 0 {
		f.FooterSpacing = fc.FooterSpacing
	}
	if fc.MinFontSize != nil {
		f.MinFontSize = *fc.MinFontSize
	}
	if fc.PrintMediaCSS != nil {
		f.PrintMediaCSS = *fc.PrintMediaCSS
	}
	f.DateFormat = fc.DateFormat

	// nil keeps the default list, empty disables it
	if fc.PageBreaks.AvoidInside != nil {
		f.PageBreaks.AvoidInside = fc.PageBreaks.AvoidInside
	}
	if fc.PageBreaks.AvoidAfter != nil {
		f.PageBreaks.AvoidAfter = fc.PageBreaks.AvoidAfter
	}
	if fc.PageBreaks.Before != nil {
		f.PageBreaks.Before = fc.PageBreaks.Before
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// resolveLogConfig picks the log level: --verbose and --quiet win over the
// configured level.
func resolveLogConfig(common commonFlags, lc config.LogConfig) logger.Config {
	cfg := logger.DefaultConfig()
	if lc.Level != "" {
		cfg.Level = lc.Level
	}
	if lc.Format != "" {
		cfg.Format = strings.ToLower(lc.Format)
	}
	switch {
	case common.verbose:
		cfg.Level = "debug"
	case common.quiet:
		cfg.Level = "error"
	}
	return cfg
}

// newBackends builds the production backends named in s.backends.
func newBackends(s *settings, log *zap.Logger) ([]html2pdf.Backend, error) {
	backends := make([]html2pdf.Backend, 0, len(s.backends))
	for _, name := range s.backends {
		switch name {
		case html2pdf.BackendChrome:
			backends = append(backends, html2pdf.NewChromeBackend(s.chrome, log))
		case html2pdf.BackendRemoteChrome:
			backends = append(backends, html2pdf.NewRemoteChromeBackend(s.remoteURL, log))
		case html2pdf.BackendWkhtmltopdf:
			backends = append(backends, html2pdf.NewWkhtmltopdfBackend(s.wkhtmltopdfPath, log))
		case html2pdf.BackendStructured:
			backends = append(backends, html2pdf.NewStructuredBackend(s.selectors, log))
		default:
			return nil, fmt.Errorf("%w: %q", html2pdf.ErrUnknownBackend, name)
		}
	}
	return backends, nil
}

// closeBackends releases backends holding processes or sessions.
func closeBackends(backends []html2pdf.Backend, log *zap.Logger) {
	for _, b := range backends {
		c, ok := b.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			log.Debug("closing backend", zap.String("backend", b.Name()), zap.Error(err))
		}
	}
}
