package html2pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Backend names.
const (
	BackendChrome       = "chrome"
	BackendRemoteChrome = "remote-chrome"
	BackendWkhtmltopdf  = "wkhtmltopdf"
	BackendStructured   = "structured"
)

// DefaultOrder is the backend priority used when none is configured:
// the CSS-aware renderer first, the structural extraction fallback last.
var DefaultOrder = []string{BackendChrome, BackendWkhtmltopdf, BackendStructured}

// KnownBackends lists every backend name accepted by ParseBackendNames.
var KnownBackends = []string{BackendChrome, BackendRemoteChrome, BackendWkhtmltopdf, BackendStructured}

// Availability is the result of probing a backend.
type Availability int

// Availability values.
const (
	Unavailable Availability = iota
	Installable
	Available
)

// String returns a lowercase label for console output.
func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Installable:
		return "installable"
	default:
		return "unavailable"
	}
}

// Job is one conversion request handed to a backend.
type Job struct {
	InputPath string // absolute path of the HTML document
	Format    *Format
	fs        afero.Fs
}

// ReadInput returns the document bytes through the invoker's filesystem.
func (j Job) ReadInput() ([]byte, error) {
	fs := j.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return afero.ReadFile(fs, j.InputPath)
}

// Backend renders an HTML document to PDF bytes with one engine.
type Backend interface {
	Name() string
	// Probe reports whether the backend can run right now. It must not install anything.
	Probe(ctx context.Context) Availability
	Render(ctx context.Context, job Job) ([]byte, error)
}

// Installer is implemented by backends that can install their engine on demand.
// Install must be idempotent.
type Installer interface {
	Install(ctx context.Context) error
}

// ParseBackendNames splits a comma-separated list into backend names,
// rejecting unknown and duplicate names.
func ParseBackendNames(list string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for _, raw := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if !isKnownBackend(name) {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownBackend, name, strings.Join(KnownBackends, ", "))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, ErrNoBackends
	}
	return names, nil
}

func isKnownBackend(name string) bool {
	for _, known := range KnownBackends {
		if name == known {
			return true
		}
	}
	return false
}
