package html2pdf

import "errors"

// Sentinel errors for conversion attempts.
var (
	ErrMissingInput       = errors.New("input document not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendFailed      = errors.New("backend conversion failed")
	ErrAllBackendsFailed  = errors.New("all backends failed")
	ErrInstallUnsupported = errors.New("backend cannot be installed automatically")

	// Rendering errors, wrapped by ErrBackendFailed.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrEmptyPDF       = errors.New("backend produced an empty PDF")
	ErrWritePDF       = errors.New("failed to write PDF file")
	ErrExtraction     = errors.New("failed to extract report entries")

	// Format validation errors.
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrInvalidMargin   = errors.New("invalid margin")
	ErrInvalidLength   = errors.New("invalid length")
	ErrInvalidFontSize = errors.New("invalid font size")
	ErrInvalidSelector = errors.New("invalid selector")

	// Backend selection errors.
	ErrUnknownBackend = errors.New("unknown backend")
	ErrNoBackends     = errors.New("no backends configured")
)

// ErrorKind classifies the failure of one conversion attempt.
type ErrorKind int

// Error kinds, from most to least specific.
const (
	KindNone ErrorKind = iota
	KindMissingInput
	KindBackendUnavailable
	KindBackend
)

// String returns the kind name used in console output and logs.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingInput:
		return "MissingInputError"
	case KindBackendUnavailable:
		return "BackendUnavailableError"
	case KindBackend:
		return "BackendError"
	default:
		return "unknown"
	}
}

// KindOf maps an attempt error to its kind.
// Any error that is neither a missing input nor an unavailable backend
// counts as a backend failure.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, ErrBackendUnavailable):
		return KindBackendUnavailable
	default:
		return KindBackend
	}
}
