package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// runInstallCmd executes the install command and returns an exit code.
// Backends default to chrome, the only one with a managed download.
func runInstallCmd(ctx context.Context, args []string, env *Environment) int {
	flags, names, err := parseDoctorFlags(cmdInstall, args, func() { printInstallUsage(env.Stdout) })
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

	s.backends = []string{html2pdf.BackendChrome}
	if len(names) > 0 {
		s.backends, err = html2pdf.ParseBackendNames(strings.Join(names, ","))
		if err != nil {
			return printError(env.Stderr, err)
		}
	}

	log, err := logger.New(s.log, env.Stderr)
	if err != nil {
		return printError(env.Stderr, err)
	}
	defer func() { _ = log.Sync() }()

	backends, err := env.NewBackends(s, log)
	if err != nil {
		return printError(env.Stderr, err)
	}
	defer closeBackends(backends, log)

	if err := installBackends(ctx, env.Stdout, backends, flags.common.quiet, log); err != nil {
		return printError(env.Stderr, err)
	}
	return ExitSuccess
}

// installBackends installs each backend that supports it and reports the
// resulting availability. Backends already available are left untouched.
func installBackends(ctx context.Context, w io.Writer, backends []html2pdf.Backend, quiet bool, log *zap.Logger) error {
	var errs []error
	for _, b := range backends {
		_, installable := b.(html2pdf.Installer)
		a := html2pdf.CheckAvailability(ctx, b, installable, log)

		switch {
		case a == html2pdf.Available:
			if !quiet {
				fmt.Fprintf(w, "[OK] %s: %s\n", b.Name(), a)
			}
		case !installable:
			fmt.Fprintf(w, "[ERROR] %s: %s%s\n", b.Name(), a, hintFor(html2pdf.Result{
				Backend: b.Name(),
				Err:     html2pdf.ErrBackendUnavailable,
			}))
			errs = append(errs, fmt.Errorf("%w: %s", html2pdf.ErrInstallUnsupported, b.Name()))
		default:
			fmt.Fprintf(w, "[ERROR] %s: %s after install\n", b.Name(), a)
			errs = append(errs, fmt.Errorf("%w: %s is %s after install", html2pdf.ErrBackendUnavailable, b.Name(), a))
		}
	}
	return errors.Join(errs...)
}
