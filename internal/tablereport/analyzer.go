// Package tablereport recovers the table grid, cell contents and legend of a
// one-page table report from its raw layout elements.
package tablereport

import (
	"fmt"
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

const (
	// DefaultGridEpsilon is the distance under which grid line coordinates are merged
	DefaultGridEpsilon = 0.01

	// DefaultLegendToleranceMM is the vertical distance within which a legend value joins its label
	DefaultLegendToleranceMM = 1.0
)

// Options tunes the analyzer
type Options struct {
	// GridEpsilon merges line coordinates closer than this many points. Zero means exact grouping.
	GridEpsilon float64
	// LegendTolerance is the label/value pairing distance in points.
	LegendTolerance float64
	// SpatialIndex looks up cell contents through an R-tree instead of a linear scan.
	SpatialIndex bool
}

// DefaultOptions returns the analyzer defaults
func DefaultOptions() Options {
	return Options{
		GridEpsilon:     DefaultGridEpsilon,
		LegendTolerance: layout.MillimetersToPoints(DefaultLegendToleranceMM),
		SpatialIndex:    true,
	}
}

// Analyzer turns a page's layout elements into a PageObject.
// It holds no mutable state and may be shared between goroutines.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer. Negative tolerances are clamped to zero.
func NewAnalyzer(opts Options) *Analyzer {
	opts.GridEpsilon = math.Max(opts.GridEpsilon, 0)
	opts.LegendTolerance = math.Max(opts.LegendTolerance, 0)
	return &Analyzer{opts: opts}
}

// Options returns the effective analyzer options
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze runs the analyzer with default options.
func Analyze(elements []layout.Element) (*PageObject, error) {
	return NewAnalyzer(DefaultOptions()).Analyze(elements)
}

// Analyze recovers the legend and table from elements. The only error is a
// malformed bounding box; pages without grid lines yield an empty table and legend.
func (a *Analyzer) Analyze(elements []layout.Element) (*PageObject, error) {
	for i, e := range elements {
		if err := e.BBox.Validate(); err != nil {
			return nil, fmt.Errorf("element %d (%s): %w", i, e.Kind, err)
		}
	}

	page := &PageObject{
		AllElements: append([]layout.Element(nil), elements...),
		Legend:      Legend{Fields: []LegendField{}},
	}

	texts := detectTexts(elements)
	page.Table = a.detectGrid(elements)
	if page.Table.IsEmpty() {
		page.Table.Cells = [][]*layout.Element{}
		return page, nil
	}

	page.Table.Rect = tableRect(page.Table.HorizontalLines, page.Table.VerticalLines)
	page.Table.ColumnBounds = columnBounds(page.Table.Rect, page.Table.VerticalByX)
	page.Table.RowBounds = rowBounds(page.Table.Rect, page.Table.HorizontalByY)

	if a.opts.SpatialIndex {
		page.Table.Cells = assignCellsIndexed(&page.Table, texts)
	} else {
		page.Table.Cells = assignCellsLinear(&page.Table, texts)
	}

	page.Legend = a.detectLegend(texts, page.Table.Rect)
	return page, nil
}

func detectTexts(elements []layout.Element) []layout.Element {
	var texts []layout.Element
	for _, e := range elements {
		if e.HasText() {
			texts = append(texts, e)
		}
	}
	return texts
}

func (a *Analyzer) detectGrid(elements []layout.Element) Table {
	var t Table
	for _, e := range elements {
		switch {
		case e.IsHorizontalLine():
			t.HorizontalLines = append(t.HorizontalLines, e)
		case e.IsVerticalLine():
			t.VerticalLines = append(t.VerticalLines, e)
		}
	}

	t.HorizontalByY = groupLines(t.HorizontalLines, func(e layout.Element) float64 { return e.BBox.Y0 }, a.opts.GridEpsilon)
	// top row first
	for i, j := 0, len(t.HorizontalByY)-1; i < j; i, j = i+1, j-1 {
		t.HorizontalByY[i], t.HorizontalByY[j] = t.HorizontalByY[j], t.HorizontalByY[i]
	}
	t.VerticalByX = groupLines(t.VerticalLines, func(e layout.Element) float64 { return e.BBox.X0 }, a.opts.GridEpsilon)
	return t
}

// groupLines buckets lines by coordinate in ascending order. A line joins the
// current bucket while it lies within eps of the bucket's first coordinate.
func groupLines(lines []layout.Element, coord func(layout.Element) float64, eps float64) []LineGroup {
	if len(lines) == 0 {
		return nil
	}

	sorted := append([]layout.Element(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool { return coord(sorted[i]) < coord(sorted[j]) })

	var groups []LineGroup
	for _, l := range sorted {
		c := coord(l)
		if n := len(groups); n > 0 && math.Abs(c-groups[n-1].Coord) <= eps {
			groups[n-1].Lines = append(groups[n-1].Lines, l)
			continue
		}
		groups = append(groups, LineGroup{Coord: c, Lines: []layout.Element{l}})
	}
	return groups
}

func tableRect(horizontal, vertical []layout.Element) layout.BBox {
	rect := layout.BBox{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, group := range [][]layout.Element{horizontal, vertical} {
		for _, l := range group {
			rect = rect.Union(l.BBox)
		}
	}
	return rect
}

func columnBounds(rect layout.BBox, vertical []LineGroup) []float64 {
	bounds := make([]float64, 0, len(vertical)+2)
	bounds = append(bounds, rect.X0)
	for _, g := range vertical {
		bounds = append(bounds, g.Coord)
	}
	return append(bounds, rect.X1)
}

func rowBounds(rect layout.BBox, horizontal []LineGroup) []float64 {
	bounds := make([]float64, 0, len(horizontal)+2)
	bounds = append(bounds, rect.Y1)
	for _, g := range horizontal {
		bounds = append(bounds, g.Coord)
	}
	return append(bounds, rect.Y0)
}

func newCells(t *Table) [][]*layout.Element {
	cells := make([][]*layout.Element, t.NumRows())
	for r := range cells {
		cells[r] = make([]*layout.Element, t.NumCols())
	}
	return cells
}

func assignCellsLinear(t *Table, texts []layout.Element) [][]*layout.Element {
	cells := newCells(t)
	for r := range cells {
		for c := range cells[r] {
			box := t.CellBox(r, c)
			for i := range texts {
				if box.Contains(texts[i].BBox) {
					cells[r][c] = &texts[i]
					break
				}
			}
		}
	}
	return cells
}

// assignCellsIndexed matches assignCellsLinear: among the texts contained in a
// cell the one with the lowest index wins.
func assignCellsIndexed(t *Table, texts []layout.Element) [][]*layout.Element {
	var tr rtree.RTreeG[int]
	for i, e := range texts {
		tr.Insert([2]float64{e.BBox.X0, e.BBox.Y0}, [2]float64{e.BBox.X1, e.BBox.Y1}, i)
	}

	cells := newCells(t)
	for r := range cells {
		for c := range cells[r] {
			box := t.CellBox(r, c)
			best := -1
			tr.Search([2]float64{box.X0, box.Y0}, [2]float64{box.X1, box.Y1},
				func(_, _ [2]float64, i int) bool {
					if (best < 0 || i < best) && box.Contains(texts[i].BBox) {
						best = i
					}
					return true
				})
			if best >= 0 {
				cells[r][c] = &texts[best]
			}
		}
	}
	return cells
}

func (a *Analyzer) detectLegend(texts []layout.Element, rect layout.BBox) Legend {
	legend := Legend{Fields: []LegendField{}}

	var items []layout.Element
	for _, e := range texts {
		if e.BBox.X0 < rect.X0 {
			items = append(items, e)
		}
	}
	if len(items) == 0 {
		return legend
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].BBox.Y0 > items[j].BBox.Y0 })

	title := items[0]
	legend.Title = &title

	for i := 1; i < len(items); {
		label := items[i]
		if i+1 < len(items) && math.Abs(items[i+1].BBox.Y0-label.BBox.Y0) <= a.opts.LegendTolerance {
			value := items[i+1]
			if value.BBox.X0 < label.BBox.X0 {
				label, value = value, label
			}
			legend.Fields = append(legend.Fields, LegendField{Label: label, Value: &value})
			i += 2
			continue
		}
		legend.Fields = append(legend.Fields, LegendField{Label: label})
		i++
	}
	return legend
}
