package html2pdf

import (
	"fmt"
	"strings"

	"github.com/alnah/go-html2pdf/internal/dateutil"
)

// Page size constants.
const (
	PageSizeA3     = "a3"
	PageSizeA4     = "a4"
	PageSizeA5     = "a5"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// pageDimensions holds portrait paper dimensions in inches.
type pageDimensions struct {
	width  float64
	height float64
}

var pageSizes = map[string]pageDimensions{
	PageSizeA3:     {width: 11.69, height: 16.54},
	PageSizeA4:     {width: 8.27, height: 11.69},
	PageSizeA5:     {width: 5.83, height: 8.27},
	PageSizeLetter: {width: 8.5, height: 11},
	PageSizeLegal:  {width: 8.5, height: 14},
}

// Defaults applied by DefaultFormat.
const (
	DefaultPageSize       = PageSizeA4
	DefaultFooterText     = "Page [page] of [topage]"
	DefaultHeaderFontSize = 9.0
	DefaultFooterFontSize = 9.0
	DefaultSpacing        = 5.0 // mm between header/footer and content
	DefaultMinFontSize    = 12.0
)

// DefaultMargin is applied to all four sides by DefaultFormat.
var DefaultMargin = Inches(0.75)

// Margins holds the four page margins.
type Margins struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// UniformMargins returns margins with the same length on all sides.
func UniformMargins(l Length) Margins {
	return Margins{Top: l, Right: l, Bottom: l, Left: l}
}

// ParseMargins parses a CSS-like margin shorthand: one value for all sides,
// two for vertical and horizontal, or four for top, right, bottom and left.
func ParseMargins(s string) (Margins, error) {
	parts := strings.Fields(s)
	lengths := make([]Length, len(parts))
	for i, p := range parts {
		l, err := ParseLength(p)
		if err != nil {
			return Margins{}, fmt.Errorf("%w: %v", ErrInvalidMargin, err)
		}
		lengths[i] = l
	}

	switch len(lengths) {
	case 1:
		return UniformMargins(lengths[0]), nil
	case 2:
		return Margins{Top: lengths[0], Right: lengths[1], Bottom: lengths[0], Left: lengths[1]}, nil
	case 4:
		return Margins{Top: lengths[0], Right: lengths[1], Bottom: lengths[2], Left: lengths[3]}, nil
	default:
		return Margins{}, fmt.Errorf("%w: %q (expected 1, 2, or 4 values)", ErrInvalidMargin, s)
	}
}

// PageBreaks holds per-element page-break hints as CSS selectors.
type PageBreaks struct {
	AvoidInside []string // keep the element on one page
	AvoidAfter  []string // keep the element with what follows
	Before      []string // always start the element on a new page
}

// Format is the logical formatting configuration shared by every backend.
// Each backend translates it into its native options and silently drops
// what it cannot express.
type Format struct {
	Title          string
	PageSize       string
	Margins        Margins
	HeaderText     string  // placeholders: [page], [topage], [title], [date]
	FooterText     string  // same placeholders as HeaderText
	HeaderFontSize float64 // points
	FooterFontSize float64 // points
	HeaderSpacing  float64 // millimetres
	FooterSpacing  float64 // millimetres
	MinFontSize    float64 // points, 0 disables the floor
	PrintMediaCSS  bool
	PageBreaks     PageBreaks
	DateFormat     string // [date] tokens for backends that expand placeholders themselves, e.g. "DD/MM/YYYY"
}

// DefaultFormat returns the report defaults: A4, 0.75in margins,
// page numbers in the footer, print stylesheet honored.
func DefaultFormat() *Format {
	return &Format{
		PageSize:       DefaultPageSize,
		Margins:        UniformMargins(DefaultMargin),
		FooterText:     DefaultFooterText,
		HeaderFontSize: DefaultHeaderFontSize,
		FooterFontSize: DefaultFooterFontSize,
		HeaderSpacing:  DefaultSpacing,
		FooterSpacing:  DefaultSpacing,
		MinFontSize:    DefaultMinFontSize,
		PrintMediaCSS:  true,
		PageBreaks: PageBreaks{
			AvoidInside: []string{".business-idea"},
			AvoidAfter:  []string{"h2", "h3"},
		},
	}
}

// Validate checks that the format can be applied by every backend.
// Does not mutate - page size comparison is case-insensitive.
func (f *Format) Validate() error {
	if f == nil {
		return nil
	}

	dims, ok := pageSizes[strings.ToLower(f.PageSize)]
	if !ok {
		return fmt.Errorf("%w: %q (must be a3, a4, a5, letter, or legal)", ErrInvalidPageSize, f.PageSize)
	}

	m := f.Margins
	for _, side := range []struct {
		name  string
		value Length
	}{
		{"top", m.Top}, {"right", m.Right}, {"bottom", m.Bottom}, {"left", m.Left},
	} {
		if side.value < 0 {
			return fmt.Errorf("%w: %s margin %s is negative", ErrInvalidMargin, side.name, side.value)
		}
	}
	if (m.Left+m.Right).Inches() >= dims.width || (m.Top+m.Bottom).Inches() >= dims.height {
		return fmt.Errorf("%w: margins leave no printable area on %s", ErrInvalidMargin, f.PageSize)
	}

	for _, size := range []struct {
		name  string
		value float64
	}{
		{"header font size", f.HeaderFontSize},
		{"footer font size", f.FooterFontSize},
		{"minimum font size", f.MinFontSize},
	} {
		if size.value < 0 {
			return fmt.Errorf("%w: %s %.1f is negative", ErrInvalidFontSize, size.name, size.value)
		}
	}

	if err := dateutil.Validate(f.DateFormat); err != nil {
		return err
	}

	for _, group := range [][]string{f.PageBreaks.AvoidInside, f.PageBreaks.AvoidAfter, f.PageBreaks.Before} {
		for _, sel := range group {
			if strings.TrimSpace(sel) == "" || strings.ContainsAny(sel, "{};") {
				return fmt.Errorf("%w: %q", ErrInvalidSelector, sel)
			}
		}
	}

	return nil
}

// paper returns the page dimensions in inches, falling back to A4.
func (f *Format) paper() pageDimensions {
	if dims, ok := pageSizes[strings.ToLower(f.PageSize)]; ok {
		return dims
	}
	return pageSizes[DefaultPageSize]
}

// hasHeaderFooter reports whether any header or footer text is configured.
func (f *Format) hasHeaderFooter() bool {
	return f.HeaderText != "" || f.FooterText != ""
}

// formatOrDefault returns f, or the defaults when f is nil.
func formatOrDefault(f *Format) *Format {
	if f == nil {
		return DefaultFormat()
	}
	return f
}
