// Package layout holds the positioned page elements produced by PDF extraction
// and consumed by the table report analyzer.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// PointsPerMillimeter is the number of PDF points in one millimeter
const PointsPerMillimeter = 72.0 / 25.4

// ErrInvalidBBox is returned when a bounding box is not normalised
var ErrInvalidBBox = errors.New("invalid bounding box")

// Kind identifies the variant of a layout element
type Kind string

const (
	KindText   Kind = "text"
	KindLine   Kind = "line"
	KindRect   Kind = "rect"
	KindCurve  Kind = "curve"
	KindFigure Kind = "figure"
	KindOther  Kind = "other"
)

// BBox is an axis-aligned box in PDF user space (origin bottom-left, y up)
type BBox struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// Element is a single positioned item on a page. Text is only meaningful for KindText.
type Element struct {
	Kind     Kind    `json:"kind" yaml:"kind"`
	BBox     BBox    `json:"bbox" yaml:"bbox"`
	Text     string  `json:"text,omitempty" yaml:"text,omitempty"`
	Font     string  `json:"font,omitempty" yaml:"font,omitempty"`
	FontSize float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
}

// MillimetersToPoints converts a length in millimeters to PDF points
func MillimetersToPoints(mm float64) float64 {
	return mm * PointsPerMillimeter
}

// NewBBox builds a box from two arbitrary corners, normalising the order.
func NewBBox(ax, ay, bx, by float64) BBox {
	return BBox{
		X0: math.Min(ax, bx),
		Y0: math.Min(ay, by),
		X1: math.Max(ax, bx),
		Y1: math.Max(ay, by),
	}
}

// Validate reports whether the box is normalised and finite.
func (b BBox) Validate() error {
	for _, v := range [...]float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate in %s", ErrInvalidBBox, b)
		}
	}
	if b.X0 > b.X1 {
		return fmt.Errorf("%w: x0 %g > x1 %g", ErrInvalidBBox, b.X0, b.X1)
	}
	if b.Y0 > b.Y1 {
		return fmt.Errorf("%w: y0 %g > y1 %g", ErrInvalidBBox, b.Y0, b.Y1)
	}
	return nil
}

func (b BBox) Width() float64  { return b.X1 - b.X0 }
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Contains reports whether inner lies fully inside b, bounds inclusive.
func (b BBox) Contains(inner BBox) bool {
	return inner.X0 >= b.X0 && inner.X1 <= b.X1 &&
		inner.Y0 >= b.Y0 && inner.Y1 <= b.Y1
}

// Union returns the smallest box covering both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, o.X0),
		Y0: math.Min(b.Y0, o.Y0),
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
	}
}

// IsZero reports whether every coordinate is zero.
func (b BBox) IsZero() bool {
	return b == BBox{}
}

func (b BBox) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", b.X0, b.Y0, b.X1, b.Y1)
}

// TrimmedText returns the text with trailing whitespace removed.
func (e Element) TrimmedText() string {
	return strings.TrimRightFunc(e.Text, unicode.IsSpace)
}

// HasText reports whether e is a text element with visible content.
func (e Element) HasText() bool {
	return e.Kind == KindText && e.TrimmedText() != ""
}

// IsHorizontalLine reports whether e is a line with exactly equal y coordinates.
func (e Element) IsHorizontalLine() bool {
	return e.Kind == KindLine && e.BBox.Y0 == e.BBox.Y1
}

// IsVerticalLine reports whether e is a line with exactly equal x coordinates.
func (e Element) IsVerticalLine() bool {
	return e.Kind == KindLine && e.BBox.X0 == e.BBox.X1
}

// Text builds a text element.
func Text(text string, x0, y0, x1, y1 float64) Element {
	return Element{Kind: KindText, Text: text, BBox: BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

// Line builds a line element between two points.
func Line(ax, ay, bx, by float64) Element {
	return Element{Kind: KindLine, BBox: NewBBox(ax, ay, bx, by)}
}

// CountByKind tallies elements per kind.
func CountByKind(elements []Element) map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range elements {
		counts[e.Kind]++
	}
	return counts
}
