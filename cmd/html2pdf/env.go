package main

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
)

// BackendFactory builds the backends named in s, in order.
type BackendFactory func(s *settings, logger *zap.Logger) ([]html2pdf.Backend, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, filesystem, and backend construction.
type Environment struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Fs          afero.Fs
	NewBackends BackendFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Fs:          afero.NewOsFs(),
		NewBackends: newBackends,
	}
}
