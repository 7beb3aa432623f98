package main

import (
	"errors"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/dateutil"
	"github.com/alnah/go-html2pdf/internal/extract"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// Exit codes for html2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess      = 0 // PDF created
	ExitGeneral      = 1 // General/unexpected error, interrupted run
	ExitUsage        = 2 // Invalid flags, config, or validation
	ExitMissingInput = 3 // Input document not found or not specified
	ExitAllFailed    = 4 // Every backend failed, manual instructions printed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Interrupted (exit 1): checked first, attempt errors carry context.Canceled
	if errors.Is(err, ErrInterrupted) {
		return ExitGeneral
	}

	// Missing input (exit 3): checked before all-failed, every attempt reports it
	if errors.Is(err, html2pdf.ErrMissingInput) ||
		errors.Is(err, ErrNoInput) {
		return ExitMissingInput
	}

	// Every backend failed (exit 4)
	if errors.Is(err, html2pdf.ErrAllBackendsFailed) {
		return ExitAllFailed
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, html2pdf.ErrInvalidPageSize) ||
		errors.Is(err, html2pdf.ErrInvalidMargin) ||
		errors.Is(err, html2pdf.ErrInvalidLength) ||
		errors.Is(err, html2pdf.ErrInvalidFontSize) ||
		errors.Is(err, html2pdf.ErrInvalidSelector) ||
		errors.Is(err, html2pdf.ErrUnknownBackend) ||
		errors.Is(err, html2pdf.ErrNoBackends) ||
		errors.Is(err, html2pdf.ErrInstallUnsupported) ||
		errors.Is(err, extract.ErrInvalidSelector) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, logger.ErrInvalidLevel) ||
		errors.Is(err, logger.ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrTooManyInputs) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}
