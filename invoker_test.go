package html2pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

const (
	testInput  = "/reports/ideas.html"
	testOutput = "/reports/out/ideas.pdf"
)

func memFsWithInput(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, testInput, []byte(reportFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return fs
}

// ---------------------------------------------------------------------------
// TestInvoke - Single Attempts
// ---------------------------------------------------------------------------

func TestInvoke(t *testing.T) {
	t.Parallel()

	t.Run("success writes output", func(t *testing.T) {
		t.Parallel()

		fs := memFsWithInput(t)
		b := newFake("chrome")

		res := NewInvoker(fs, nil).Invoke(context.Background(), b, testInput, testOutput, nil)
		if !res.OK() {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Backend != "chrome" || res.Output != testOutput {
			t.Errorf("result = %+v", res)
		}
		if res.Size != int64(len(fakePDF)) {
			t.Errorf("Size = %d, want %d", res.Size, len(fakePDF))
		}
		if res.Duration <= 0 {
			t.Error("expected duration to be recorded")
		}

		got, err := afero.ReadFile(fs, testOutput)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !bytes.Equal(got, fakePDF) {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("nil format uses defaults", func(t *testing.T) {
		t.Parallel()

		fs := memFsWithInput(t)
		b := newFake("chrome")

		NewInvoker(fs, nil).Invoke(context.Background(), b, testInput, testOutput, nil)
		if len(b.jobs) != 1 || b.jobs[0].Format == nil || b.jobs[0].Format.PageSize != PageSizeA4 {
			t.Fatalf("expected default format in job, got %+v", b.jobs)
		}
		data, err := b.jobs[0].ReadInput()
		if err != nil || !bytes.Contains(data, []byte("business-idea")) {
			t.Errorf("job should read input through invoker fs, err = %v", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		b := newFake("chrome")

		res := NewInvoker(fs, nil).Invoke(context.Background(), b, testInput, testOutput, nil)
		if res.Kind() != KindMissingInput {
			t.Errorf("Kind = %v, want MissingInputError (err %v)", res.Kind(), res.Err)
		}
		if b.renderCount() != 0 {
			t.Error("backend must not run without input")
		}
	})

	t.Run("directory as input is missing input", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := fs.MkdirAll("/reports/dir.html", 0o755); err != nil {
			t.Fatal(err)
		}

		res := NewInvoker(fs, nil).Invoke(context.Background(), newFake("chrome"), "/reports/dir.html", testOutput, nil)
		if res.Kind() != KindMissingInput {
			t.Errorf("Kind = %v, want MissingInputError", res.Kind())
		}
	})

	t.Run("backend error", func(t *testing.T) {
		t.Parallel()

		fs := memFsWithInput(t)
		b := newFake("chrome")
		b.err = ErrPageLoad

		res := NewInvoker(fs, nil).Invoke(context.Background(), b, testInput, testOutput, nil)
		if res.Kind() != KindBackend {
			t.Errorf("Kind = %v, want BackendError", res.Kind())
		}
		if !errors.Is(res.Err, ErrBackendFailed) || !errors.Is(res.Err, ErrPageLoad) {
			t.Errorf("expected wrapped ErrBackendFailed and ErrPageLoad, got %v", res.Err)
		}
		if exists, _ := afero.Exists(fs, testOutput); exists {
			t.Error("failed attempt must not write output")
		}
	})

	t.Run("empty output is a failure", func(t *testing.T) {
		t.Parallel()

		fs := memFsWithInput(t)
		b := newFake("chrome")
		b.pdf = nil

		res := NewInvoker(fs, nil).Invoke(context.Background(), b, testInput, testOutput, nil)
		if !errors.Is(res.Err, ErrEmptyPDF) {
			t.Errorf("expected ErrEmptyPDF, got %v", res.Err)
		}
	})

	t.Run("panic is contained", func(t *testing.T) {
		t.Parallel()

		fs := memFsWithInput(t)
		b := newFake("chrome")
		b.panicRender = true

		res := NewInvoker(fs, nil).Invoke(context.Background(), b, testInput, testOutput, nil)
		if res.Kind() != KindBackend {
			t.Errorf("Kind = %v, want BackendError", res.Kind())
		}
	})

	t.Run("canceled context skips render", func(t *testing.T) {
		t.Parallel()

		fs := memFsWithInput(t)
		b := newFake("chrome")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := NewInvoker(fs, nil).Invoke(ctx, b, testInput, testOutput, nil)
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.Err)
		}
		if b.renderCount() != 0 {
			t.Error("backend must not run on canceled context")
		}
	})

	t.Run("write failure keeps existing output", func(t *testing.T) {
		t.Parallel()

		base := memFsWithInput(t)
		if err := afero.WriteFile(base, testOutput, []byte("previous"), 0o644); err != nil {
			t.Fatal(err)
		}
		fs := afero.NewReadOnlyFs(base)

		res := NewInvoker(fs, nil).Invoke(context.Background(), newFake("chrome"), testInput, testOutput, nil)
		if !errors.Is(res.Err, ErrWritePDF) {
			t.Errorf("expected ErrWritePDF, got %v", res.Err)
		}
		got, _ := afero.ReadFile(base, testOutput)
		if string(got) != "previous" {
			t.Errorf("existing output changed to %q", got)
		}
	})
}
