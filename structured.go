package html2pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-html2pdf/internal/dateutil"
	"github.com/alnah/go-html2pdf/internal/extract"
)

var _ Backend = (*StructuredBackend)(nil)

// Structured layout constants, in points unless noted.
const (
	structuredFont        = "Go"
	structuredTitleSize   = 20.0
	structuredHeadingSize = 14.0
	structuredBodySize    = 10.0
	structuredLineFactor  = 1.4
	structuredTitleGap    = 10.0 // mm after the document title
	structuredHeadingGap  = 2.0  // mm after an entry heading
	structuredFieldGap    = 1.5  // mm between fields
	structuredEntryGap    = 7.0  // mm between entries
	mmPerPoint            = mmPerInch / ptPerInch
)

// structuredTitleColor is the RGB color of the document title (#2c5530).
var structuredTitleColor = [3]int{0x2c, 0x55, 0x30}

// StructuredBackend is the pure Go fallback: it extracts the report entries
// from the markup and lays them out as plain sections. Document styling is
// not reproduced. Text is drawn with the embedded Go fonts, so any UTF-8
// content is kept verbatim.
type StructuredBackend struct {
	selectors extract.Selectors
	logger    *zap.Logger
	compress  bool
	now       func() time.Time
}

// NewStructuredBackend creates the fallback backend with the given
// selectors. Empty selectors take their defaults.
func NewStructuredBackend(selectors extract.Selectors, logger *zap.Logger) *StructuredBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuredBackend{selectors: selectors, logger: logger, compress: true, now: time.Now}
}

// Name implements Backend.
func (b *StructuredBackend) Name() string { return BackendStructured }

// Probe always reports Available: the backend has no external engine.
func (b *StructuredBackend) Probe(_ context.Context) Availability { return Available }

// Render parses the input document and lays out one section per entry.
func (b *StructuredBackend) Render(ctx context.Context, job Job) ([]byte, error) {
	f := formatOrDefault(job.Format)

	content, err := job.ReadInput()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrExtraction, job.InputPath, err)
	}

	doc, err := extract.Parse(bytes.NewReader(content), b.selectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := f.Title
	if title == "" {
		title = doc.Title
	}

	b.logger.Debug("report entries extracted",
		zap.Int("entries", len(doc.Entries)),
		zap.String("title", title))

	return b.layout(doc, title, f)
}

// layout writes the extracted document with fpdf.
func (b *StructuredBackend) layout(doc *extract.Document, title string, f *Format) ([]byte, error) {
	paper := f.paper()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: Inches(paper.width).Millimeters(), Ht: Inches(paper.height).Millimeters()},
	})
	pdf.SetCompression(b.compress)
	pdf.AddUTF8FontFromBytes(structuredFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(structuredFont, "B", gobold.TTF)
	pdf.SetMargins(f.Margins.Left.Millimeters(), f.Margins.Top.Millimeters(), f.Margins.Right.Millimeters())
	pdf.SetAutoPageBreak(true, f.Margins.Bottom.Millimeters())
	pdf.SetCreator("go-html2pdf", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}

	l := &structuredLayout{
		pdf:         pdf,
		minFontSize: f.MinFontSize,
		keepEntries: avoidsBreakInside(f.PageBreaks, b.selectors),
		bottom:      f.Margins.Bottom.Millimeters(),
	}

	if err := l.setHeaderFooter(f, title, b.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf.AddPage()
	if title != "" {
		l.writeTitle(title)
	}
	for _, entry := range doc.Entries {
		l.writeEntry(entry)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// avoidsBreakInside reports whether the entry selector is listed in AvoidInside.
func avoidsBreakInside(pb PageBreaks, sel extract.Selectors) bool {
	entry := sel.Entry
	if entry == "" {
		entry = extract.DefaultEntry
	}
	for _, s := range pb.AvoidInside {
		if strings.TrimSpace(s) == entry {
			return true
		}
	}
	return false
}

type structuredLayout struct {
	pdf         *fpdf.Fpdf
	minFontSize float64
	keepEntries bool
	bottom      float64
}

// totalPagesAlias is replaced by the page count when the PDF is written.
const totalPagesAlias = "{nb}"

// setHeaderFooter registers the page header and footer callbacks. Placeholders
// are expanded per page; [topage] relies on fpdf's page count alias.
func (l *structuredLayout) setHeaderFooter(f *Format, title string, now time.Time) error {
	if !f.hasHeaderFooter() {
		return nil
	}

	date, err := dateutil.Format(now, f.DateFormat)
	if err != nil {
		return err
	}
	expand := func(text string) string {
		return strings.NewReplacer(
			"[page]", strconv.Itoa(l.pdf.PageNo()),
			"[topage]", totalPagesAlias,
			"[title]", title,
			"[date]", date,
		).Replace(text)
	}

	l.pdf.AliasNbPages(totalPagesAlias)
	_, top, _, _ := l.pdf.GetMargins()

	if f.HeaderText != "" {
		l.pdf.SetHeaderFunc(func() {
			size := f.HeaderFontSize
			lh := size * mmPerPoint * structuredLineFactor
			l.pdf.SetY(math.Max(top-f.HeaderSpacing-lh, 0))
			l.pdf.SetFont(structuredFont, "", size)
			l.pdf.SetTextColor(0x66, 0x66, 0x66)
			l.pdf.CellFormat(0, lh, expand(f.HeaderText), "", 0, "C", false, 0, "")
			l.pdf.SetTextColor(0, 0, 0)
			l.pdf.SetY(top)
		})
	}

	if f.FooterText != "" {
		l.pdf.SetFooterFunc(func() {
			size := f.FooterFontSize
			lh := size * mmPerPoint * structuredLineFactor
			_, pageHeight := l.pdf.GetPageSize()
			l.pdf.SetY(pageHeight - l.bottom + f.FooterSpacing)
			l.pdf.SetFont(structuredFont, "", size)
			l.pdf.SetTextColor(0x66, 0x66, 0x66)
			l.pdf.CellFormat(0, lh, expand(f.FooterText), "", 0, "C", false, 0, "")
			l.pdf.SetTextColor(0, 0, 0)
		})
	}

	return nil
}

// size applies the minimum font size floor.
func (l *structuredLayout) size(pt float64) float64 {
	return math.Max(pt, l.minFontSize)
}

func (l *structuredLayout) lineHeight(pt float64) float64 {
	return l.size(pt) * mmPerPoint * structuredLineFactor
}

func (l *structuredLayout) writeTitle(title string) {
	l.pdf.SetFont(structuredFont, "B", l.size(structuredTitleSize))
	l.pdf.SetTextColor(structuredTitleColor[0], structuredTitleColor[1], structuredTitleColor[2])
	l.pdf.MultiCell(0, l.lineHeight(structuredTitleSize), extract.CollapseSpace(title), "", "C", false)
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.Ln(structuredTitleGap)
}

func (l *structuredLayout) writeEntry(entry extract.Entry) {
	if l.keepEntries {
		l.keepTogether(l.entryHeight(entry))
	}

	if entry.Title != "" {
		l.pdf.SetFont(structuredFont, "B", l.size(structuredHeadingSize))
		l.pdf.MultiCell(0, l.lineHeight(structuredHeadingSize), extract.CollapseSpace(entry.Title), "", "L", false)
		l.pdf.Ln(structuredHeadingGap)
	}

	lh := l.lineHeight(structuredBodySize)
	for _, field := range entry.Fields {
		l.pdf.SetFont(structuredFont, "B", l.size(structuredBodySize))
		l.pdf.Write(lh, extract.CollapseSpace(field.Label)+" ")
		l.pdf.SetFont(structuredFont, "", l.size(structuredBodySize))
		l.pdf.Write(lh, extract.CollapseSpace(field.Content))
		l.pdf.Ln(lh + structuredFieldGap)
	}

	l.pdf.Ln(structuredEntryGap)
}

// entryHeight estimates the height of an entry in millimetres.
func (l *structuredLayout) entryHeight(entry extract.Entry) float64 {
	width := l.contentWidth()
	var h float64

	if entry.Title != "" {
		l.pdf.SetFont(structuredFont, "B", l.size(structuredHeadingSize))
		lines := l.pdf.SplitText(extract.CollapseSpace(entry.Title), width)
		h += float64(max(len(lines), 1))*l.lineHeight(structuredHeadingSize) + structuredHeadingGap
	}

	l.pdf.SetFont(structuredFont, "", l.size(structuredBodySize))
	lh := l.lineHeight(structuredBodySize)
	for _, field := range entry.Fields {
		text := extract.CollapseSpace(field.Label) + " " + extract.CollapseSpace(field.Content)
		lines := l.pdf.SplitText(text, width)
		h += float64(max(len(lines), 1))*lh + lh + structuredFieldGap
	}

	return h
}

// keepTogether starts a new page when a block of height h would cross the
// bottom margin but fits on an empty page.
func (l *structuredLayout) keepTogether(h float64) {
	_, pageHeight := l.pdf.GetPageSize()
	_, top, _, _ := l.pdf.GetMargins()
	limit := pageHeight - l.bottom

	if l.pdf.GetY()+h > limit && h <= limit-top {
		l.pdf.AddPage()
	}
}

func (l *structuredLayout) contentWidth() float64 {
	pageWidth, _ := l.pdf.GetPageSize()
	left, _, right, _ := l.pdf.GetMargins()
	return pageWidth - left - right
}
