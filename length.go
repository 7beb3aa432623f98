package html2pdf

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Conversion factors to inches.
const (
	mmPerInch = 25.4
	cmPerInch = 2.54
	ptPerInch = 72.0
	pxPerInch = 96.0
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// Length is a physical distance stored in inches.
type Length float64

// Inches creates a Length from inches.
func Inches(v float64) Length { return Length(v) }

// Millimeters creates a Length from millimetres.
func Millimeters(v float64) Length { return Length(v / mmPerInch) }

// ParseLength parses values like "0.75in", "2cm", "19mm", "54pt" or "72px".
// A bare number is read as inches.
func ParseLength(s string) (Length, error) {
	m := lengthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}

	switch strings.ToLower(m[2]) {
	case "", "in":
		return Length(v), nil
	case "cm":
		return Length(v / cmPerInch), nil
	case "mm":
		return Length(v / mmPerInch), nil
	case "pt":
		return Length(v / ptPerInch), nil
	case "px":
		return Length(v / pxPerInch), nil
	default:
		return 0, fmt.Errorf("%w: unsupported unit %q in %q", ErrInvalidLength, m[2], s)
	}
}

// MustParseLength is like ParseLength but panics on invalid input.
// Intended for package-level defaults.
func MustParseLength(s string) Length {
	l, err := ParseLength(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Inches returns the length in inches.
func (l Length) Inches() float64 { return float64(l) }

// Millimeters returns the length in millimetres.
func (l Length) Millimeters() float64 { return float64(l) * mmPerInch }

// Points returns the length in PDF points.
func (l Length) Points() float64 { return float64(l) * ptPerInch }

// WholeMillimeters rounds to the nearest millimetre, for backends that only
// accept integer millimetre values.
func (l Length) WholeMillimeters() uint {
	mm := math.Round(l.Millimeters())
	if mm < 0 {
		return 0
	}
	return uint(mm)
}

// String formats the length in inches, e.g. "0.75in".
func (l Length) String() string {
	return strconv.FormatFloat(float64(l), 'f', -1, 64) + "in"
}
