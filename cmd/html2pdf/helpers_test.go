package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Stub backends and environment
// ---------------------------------------------------------------------------

const (
	testInput  = "/reports/ideas.html"
	testOutput = "/reports/ideas.pdf"
)

var (
	stubPDF       = []byte("%PDF-1.4 stub")
	errStubRender = errors.New("stub render failed")
)

// stubBackend is a scripted html2pdf.Backend.
type stubBackend struct {
	name         string
	availability html2pdf.Availability
	err          error

	mu      sync.Mutex
	renders int
	closed  bool
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Probe(context.Context) html2pdf.Availability { return b.availability }

func (b *stubBackend) Render(context.Context, html2pdf.Job) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renders++
	if b.err != nil {
		return nil, b.err
	}
	return stubPDF, nil
}

func (b *stubBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *stubBackend) renderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

// installableStub becomes available once installed.
type installableStub struct {
	*stubBackend
	installs int
}

func (b *installableStub) Install(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.installs++
	b.availability = html2pdf.Available
	return nil
}

// stubSet builds backends by name. Unknown names get an available stub.
type stubSet struct {
	mu       sync.Mutex
	backends map[string]html2pdf.Backend
	requests [][]string
	settings *settings
}

func newStubSet(backends ...html2pdf.Backend) *stubSet {
	set := &stubSet{backends: make(map[string]html2pdf.Backend)}
	for _, b := range backends {
		set.backends[b.Name()] = b
	}
	return set
}

func (s *stubSet) factory(st *settings, _ *zap.Logger) ([]html2pdf.Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, append([]string(nil), st.backends...))
	s.settings = st
	out := make([]html2pdf.Backend, 0, len(st.backends))
	for _, name := range st.backends {
		b, ok := s.backends[name]
		if !ok {
			b = &stubBackend{name: name, availability: html2pdf.Available}
			s.backends[name] = b
		}
		out = append(out, b)
	}
	return out, nil
}

// testEnv returns an Environment writing to buffers over a MemMapFs.
func testEnv(t *testing.T, set *stubSet) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout:      &stdout,
		Stderr:      &stderr,
		Fs:          afero.NewMemMapFs(),
		NewBackends: set.factory,
	}
	return env, &stdout, &stderr
}

// writeInput creates the test report on fs.
func writeInput(t *testing.T, fs afero.Fs) {
	t.Helper()
	if err := afero.WriteFile(fs, testInput, []byte("<html><body><h1>Ideas</h1></body></html>"), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
}

// parseTestFlags parses convert flags or fails the test.
func parseTestFlags(t *testing.T, args ...string) (*convertFlags, []string) {
	t.Helper()
	flags, positional, err := parseConvertFlags(args, func() {})
	if err != nil {
		t.Fatalf("parseConvertFlags(%v): %v", args, err)
	}
	return flags, positional
}
