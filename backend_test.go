package html2pdf

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakePDF is a minimal byte payload accepted as backend output.
var fakePDF = []byte("%PDF-1.4 fake")

// fakeBackend is a scripted Backend for sequencing tests.
type fakeBackend struct {
	name         string
	availability Availability
	pdf          []byte
	err          error
	panicProbe   bool
	panicRender  bool
	blockRender  bool // wait for ctx to end, then return its error

	mu      sync.Mutex
	probes  int
	renders int
	jobs    []Job
}

func newFake(name string) *fakeBackend {
	return &fakeBackend{name: name, availability: Available, pdf: fakePDF}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Probe(context.Context) Availability {
	f.mu.Lock()
	f.probes++
	a := f.availability
	f.mu.Unlock()

	if f.panicProbe {
		panic("probe exploded")
	}
	return a
}

func (f *fakeBackend) Render(ctx context.Context, job Job) ([]byte, error) {
	f.mu.Lock()
	f.renders++
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if f.panicRender {
		panic("render exploded")
	}
	if f.blockRender {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.pdf, f.err
}

func (f *fakeBackend) renderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders
}

func (f *fakeBackend) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

// installableBackend becomes Available after Install.
type installableBackend struct {
	*fakeBackend
	installErr error
	installs   int
}

func newInstallable(name string) *installableBackend {
	fb := newFake(name)
	fb.availability = Installable
	return &installableBackend{fakeBackend: fb}
}

func (b *installableBackend) Install(context.Context) error {
	b.installs++
	if b.installErr != nil {
		return b.installErr
	}
	b.mu.Lock()
	b.availability = Available
	b.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// TestParseBackendNames - Backend Lists
// ---------------------------------------------------------------------------

func TestParseBackendNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "single", input: "chrome", want: "chrome"},
		{name: "order kept", input: "wkhtmltopdf,chrome", want: "wkhtmltopdf,chrome"},
		{name: "spaces and case", input: " Chrome , STRUCTURED ", want: "chrome,structured"},
		{name: "duplicates dropped", input: "chrome,chrome,structured", want: "chrome,structured"},
		{name: "remote", input: "remote-chrome", want: "remote-chrome"},
		{name: "unknown", input: "chrome,weasyprint", wantErr: ErrUnknownBackend},
		{name: "empty", input: "", wantErr: ErrNoBackends},
		{name: "only commas", input: ", ,", wantErr: ErrNoBackends},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBackendNames(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if joined := strings.Join(got, ","); joined != tt.want {
				t.Errorf("ParseBackendNames(%q) = %q, want %q", tt.input, joined, tt.want)
			}
		})
	}
}

func TestDefaultOrder(t *testing.T) {
	t.Parallel()

	if DefaultOrder[0] != BackendChrome {
		t.Errorf("primary backend = %q, want %q", DefaultOrder[0], BackendChrome)
	}
	if DefaultOrder[len(DefaultOrder)-1] != BackendStructured {
		t.Errorf("last backend = %q, want %q", DefaultOrder[len(DefaultOrder)-1], BackendStructured)
	}
}

func TestAvailabilityString(t *testing.T) {
	t.Parallel()

	tests := map[Availability]string{
		Available:   "available",
		Installable: "installable",
		Unavailable: "unavailable",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", a, got, want)
		}
	}
}
