// Package reportfixture synthesizes the layout elements of a one-page table
// report, as a report writer would draw them, for use in tests and demos.
package reportfixture

import (
	"unicode/utf8"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

// Geometry describes page size and block placement, all in points
type Geometry struct {
	PageWidth   float64
	PageHeight  float64
	Margin      float64
	LegendWidth float64
	LabelWidth  float64
	ColumnWidth float64
	RowHeight   float64
	FontSize    float64
	LineSpacing float64
	// OuterBorder also draws the four table border lines.
	OuterBorder bool
}

// A4 returns portrait A4 geometry with a 10 mm margin
func A4() Geometry {
	return Geometry{
		PageWidth:   595.2756,
		PageHeight:  841.8898,
		Margin:      layout.MillimetersToPoints(10),
		LegendWidth: layout.MillimetersToPoints(70),
		LabelWidth:  layout.MillimetersToPoints(30),
		ColumnWidth: layout.MillimetersToPoints(25),
		RowHeight:   layout.MillimetersToPoints(8),
		FontSize:    10,
		LineSpacing: layout.MillimetersToPoints(6),
	}
}

// Field is one legend line
type Field struct {
	Label string
	Value string
}

// Report is the content of a table report page
type Report struct {
	Title         string
	Fields        []Field
	ColumnHeaders []string
	RowHeaders    []string
	// Values is indexed [row][col] over the data rows and columns.
	Values   [][]string
	Geometry Geometry
	// Stamp paints a small image in the bottom-left corner.
	Stamp bool
}

// Sample returns a small patient report similar to the ones the parser targets.
func Sample() Report {
	return Report{
		Title: "Patient examination report",
		Fields: []Field{
			{Label: "Date", Value: "2024-03-14"},
			{Label: "Patient", Value: "Ivanov I. I."},
			{Label: "Age", Value: "42"},
			{Label: "Doctor", Value: "Petrova A. S."},
		},
		ColumnHeaders: []string{"Mon", "Tue", "Wed"},
		RowHeaders:    []string{"Pulse", "Temp", "SpO2"},
		Values: [][]string{
			{"72", "75", "70"},
			{"36.6", "36.9", "36.7"},
			{"98", "97", "99"},
		},
		Geometry: A4(),
	}
}

// TableOrigin returns the top-left corner of the table block.
func (r Report) TableOrigin() (x, y float64) {
	g := r.Geometry
	return g.Margin + g.LegendWidth, g.PageHeight - g.Margin
}

// NumRows counts the header row plus data rows.
func (r Report) NumRows() int { return len(r.RowHeaders) + 1 }

// NumCols counts the row header column plus data columns.
func (r Report) NumCols() int { return len(r.ColumnHeaders) + 1 }

// Elements lays out the report: grid lines and the stamp first, then legend text, then cell text.
func (r Report) Elements() []layout.Element {
	var out []layout.Element
	out = append(out, r.gridLines()...)
	if r.Stamp {
		out = append(out, layout.Element{Kind: layout.KindFigure, BBox: r.StampBBox()})
	}
	out = append(out, r.legendTexts()...)
	out = append(out, r.cellTexts()...)
	return out
}

func (r Report) gridLines() []layout.Element {
	g := r.Geometry
	left, top := r.TableOrigin()
	right := left + float64(r.NumCols())*g.ColumnWidth
	bottom := top - float64(r.NumRows())*g.RowHeight

	var lines []layout.Element
	first, last := 1, r.NumRows()-1
	if g.OuterBorder {
		first, last = 0, r.NumRows()
	}
	for i := first; i <= last; i++ {
		y := top - float64(i)*g.RowHeight
		lines = append(lines, layout.Line(left, y, right, y))
	}

	first, last = 1, r.NumCols()-1
	if g.OuterBorder {
		first, last = 0, r.NumCols()
	}
	for i := first; i <= last; i++ {
		x := left + float64(i)*g.ColumnWidth
		lines = append(lines, layout.Line(x, bottom, x, top))
	}
	return lines
}

func (r Report) legendTexts() []layout.Element {
	g := r.Geometry
	x := g.Margin
	y := g.PageHeight - g.Margin - g.FontSize

	var texts []layout.Element
	if r.Title != "" {
		texts = append(texts, r.text(r.Title, x, y, g.LegendWidth))
		y -= 2 * g.LineSpacing
	}
	for _, f := range r.Fields {
		texts = append(texts, r.text(f.Label, x, y, g.LabelWidth))
		if f.Value != "" {
			texts = append(texts, r.text(f.Value, x+g.LabelWidth, y, g.LegendWidth-g.LabelWidth))
		}
		y -= g.LineSpacing
	}
	return texts
}

func (r Report) cellTexts() []layout.Element {
	var texts []layout.Element
	for c, h := range r.ColumnHeaders {
		texts = append(texts, r.cellText(h, 0, c+1))
	}
	for row, h := range r.RowHeaders {
		texts = append(texts, r.cellText(h, row+1, 0))
		if row < len(r.Values) {
			for c, v := range r.Values[row] {
				texts = append(texts, r.cellText(v, row+1, c+1))
			}
		}
	}
	return texts
}

func (r Report) cellText(s string, row, col int) layout.Element {
	g := r.Geometry
	left, top := r.TableOrigin()
	cellLeft := left + float64(col)*g.ColumnWidth
	cellBottom := top - float64(row+1)*g.RowHeight

	width := r.textWidth(s, g.ColumnWidth-2)
	x := cellLeft + (g.ColumnWidth-width)/2
	y := cellBottom + (g.RowHeight-g.FontSize)/2
	return layout.Element{
		Kind:     layout.KindText,
		Text:     s,
		FontSize: g.FontSize,
		BBox:     layout.BBox{X0: x, Y0: y, X1: x + width, Y1: y + g.FontSize},
	}
}

func (r Report) text(s string, x, y, maxWidth float64) layout.Element {
	g := r.Geometry
	return layout.Element{
		Kind:     layout.KindText,
		Text:     s,
		FontSize: g.FontSize,
		BBox:     layout.BBox{X0: x, Y0: y, X1: x + r.textWidth(s, maxWidth), Y1: y + g.FontSize},
	}
}

// textWidth approximates a proportional font at half an em per glyph.
func (r Report) textWidth(s string, limit float64) float64 {
	w := float64(utf8.RuneCountInString(s)) * r.Geometry.FontSize * 0.5
	if w > limit {
		return limit
	}
	return w
}
