package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// Result is the outcome of one conversion attempt: either an output file
// with its size, or an error whose kind is given by Kind.
type Result struct {
	Backend  string
	Output   string
	Size     int64
	Duration time.Duration
	Err      error
}

// OK reports whether the attempt produced the output file.
func (r Result) OK() bool { return r.Err == nil }

// Kind classifies the attempt failure.
func (r Result) Kind() ErrorKind { return KindOf(r.Err) }

// Invoker performs single conversion attempts.
type Invoker struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewInvoker creates an Invoker. A nil fs means the OS filesystem,
// a nil logger discards logs.
func NewInvoker(fs afero.Fs, logger *zap.Logger) *Invoker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{fs: fs, logger: logger}
}

// CheckInput verifies that inputPath references an existing regular file.
func (iv *Invoker) CheckInput(inputPath string) error {
	if err := fileutil.CheckRegularFile(iv.fs, inputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, fileutil.ErrNotRegularFile) {
			return fmt.Errorf("%w: %s", ErrMissingInput, inputPath)
		}
		return fmt.Errorf("%w: %s: %v", ErrMissingInput, inputPath, err)
	}
	return nil
}

// Invoke runs one backend against inputPath and writes the PDF to outputPath.
// Backend errors and panics are caught and returned in the Result.
func (iv *Invoker) Invoke(ctx context.Context, b Backend, inputPath, outputPath string, format *Format) (res Result) {
	start := time.Now()
	res = Result{Backend: b.Name(), Output: outputPath}
	log := iv.logger.With(zap.String("backend", res.Backend))

	defer func() {
		res.Duration = time.Since(start)
	}()

	if err := iv.CheckInput(inputPath); err != nil {
		res.Err = err
		return res
	}

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		absInput = inputPath
	}

	job := Job{InputPath: absInput, Format: formatOrDefault(format), fs: iv.fs}
	pdf, err := iv.render(ctx, b, job)
	if err == nil && len(pdf) == 0 {
		err = ErrEmptyPDF
	}
	if err != nil {
		log.Warn("conversion attempt failed", zap.Error(err))
		res.Err = fmt.Errorf("%w: %s: %w", ErrBackendFailed, res.Backend, err)
		return res
	}

	if err := fileutil.WriteFileAtomic(iv.fs, outputPath, pdf, fileutil.FilePermissions); err != nil {
		log.Warn("writing PDF failed", zap.String("output", outputPath), zap.Error(err))
		res.Err = fmt.Errorf("%w: %s: %w: %v", ErrBackendFailed, res.Backend, ErrWritePDF, err)
		return res
	}

	size, err := fileutil.Size(iv.fs, outputPath)
	if err != nil {
		size = int64(len(pdf))
	}
	res.Size = size

	log.Debug("conversion attempt succeeded",
		zap.String("output", outputPath),
		zap.Int64("bytes", size),
		zap.Duration("duration", time.Since(start)))
	return res
}

// render calls the backend, converting a panic into an error.
func (iv *Invoker) render(ctx context.Context, b Backend, job Job) (pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			pdf = nil
			err = fmt.Errorf("backend panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Render(ctx, job)
}
