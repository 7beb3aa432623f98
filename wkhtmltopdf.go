package html2pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"go.uber.org/zap"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

var _ Backend = (*WkhtmltopdfBackend)(nil)

// wkhtmltopdf page size names.
var wkhtmltopdfPageSizes = map[string]string{
	PageSizeA3:     wkhtmltopdf.PageSizeA3,
	PageSizeA4:     wkhtmltopdf.PageSizeA4,
	PageSizeA5:     wkhtmltopdf.PageSizeA5,
	PageSizeLetter: wkhtmltopdf.PageSizeLetter,
	PageSizeLegal:  wkhtmltopdf.PageSizeLegal,
}

// WkhtmltopdfBackend renders with the wkhtmltopdf binary through go-wkhtmltopdf.
// It cannot install the binary; Probe reports Unavailable when it is missing.
type WkhtmltopdfBackend struct {
	logger       *zap.Logger
	newGenerator func() (*wkhtmltopdf.PDFGenerator, error)
}

// NewWkhtmltopdfBackend creates the backend. A non-empty binPath overrides
// the PATH lookup done by go-wkhtmltopdf.
func NewWkhtmltopdfBackend(binPath string, logger *zap.Logger) *WkhtmltopdfBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if binPath != "" {
		wkhtmltopdf.SetPath(binPath)
	}
	return &WkhtmltopdfBackend{
		logger:       logger,
		newGenerator: wkhtmltopdf.NewPDFGenerator,
	}
}

// Name implements Backend.
func (b *WkhtmltopdfBackend) Name() string { return BackendWkhtmltopdf }

// Probe reports Available when go-wkhtmltopdf finds the binary.
func (b *WkhtmltopdfBackend) Probe(_ context.Context) Availability {
	if _, err := b.newGenerator(); err != nil {
		b.logger.Debug("wkhtmltopdf not found", zap.Error(err))
		return Unavailable
	}
	return Available
}

// Render runs wkhtmltopdf on the input file with the translated format.
// Page-break hints travel through a temporary user style sheet.
func (b *WkhtmltopdfBackend) Render(ctx context.Context, job Job) ([]byte, error) {
	f := formatOrDefault(job.Format)

	pdfg, err := b.newGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var styleSheet string
	if css := buildPageBreaksCSS(f.PageBreaks); css != "" {
		path, cleanup, err := fileutil.WriteTempFile(css, "css")
		if err != nil {
			return nil, fmt.Errorf("%w: writing user style sheet: %v", ErrPDFGeneration, err)
		}
		defer cleanup()
		styleSheet = path
	}

	configureGenerator(pdfg, f, job.InputPath, styleSheet)

	var stderr bytes.Buffer
	pdfg.SetStderr(&stderr)

	b.logger.Debug("running wkhtmltopdf", zap.Strings("args", pdfg.Args()))
	if err := pdfg.CreateContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrPDFGeneration, err, strings.TrimSpace(stderr.String()))
	}

	return pdfg.Bytes(), nil
}

// configureGenerator translates the format into wkhtmltopdf options and adds
// the input page. Margins are whole millimetres.
func configureGenerator(pdfg *wkhtmltopdf.PDFGenerator, f *Format, inputPath, styleSheet string) {
	size, ok := wkhtmltopdfPageSizes[strings.ToLower(f.PageSize)]
	if !ok {
		size = wkhtmltopdf.PageSizeA4
	}
	pdfg.PageSize.Set(size)
	pdfg.MarginTop.Set(f.Margins.Top.WholeMillimeters())
	pdfg.MarginRight.Set(f.Margins.Right.WholeMillimeters())
	pdfg.MarginBottom.Set(f.Margins.Bottom.WholeMillimeters())
	pdfg.MarginLeft.Set(f.Margins.Left.WholeMillimeters())
	pdfg.NoOutline.Set(true)
	if f.Title != "" {
		pdfg.Title.Set(f.Title)
	}

	page := wkhtmltopdf.NewPage(inputPath)
	page.EnableLocalFileAccess.Set(true)
	page.Encoding.Set("UTF-8")
	page.DisableSmartShrinking.Set(true)

	// Screen media is wkhtmltopdf's default.
	if f.PrintMediaCSS {
		page.PrintMediaType.Set(true)
	}
	if f.MinFontSize > 0 {
		page.MinimumFontSize.Set(roundPoints(f.MinFontSize))
	}

	// wkhtmltopdf expands [page], [topage], [title] and [date] itself.
	if f.HeaderText != "" {
		page.HeaderCenter.Set(f.HeaderText)
		page.HeaderFontSize.Set(roundPoints(f.HeaderFontSize))
		page.HeaderSpacing.Set(f.HeaderSpacing)
	}
	if f.FooterText != "" {
		page.FooterCenter.Set(f.FooterText)
		page.FooterFontSize.Set(roundPoints(f.FooterFontSize))
		page.FooterSpacing.Set(f.FooterSpacing)
	}

	if styleSheet != "" {
		page.UserStyleSheet.Set(styleSheet)
	}

	pdfg.AddPage(page)
}

func roundPoints(v float64) uint {
	if v <= 0 {
		return 0
	}
	return uint(math.Round(v))
}
