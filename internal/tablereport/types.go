package tablereport

import (
	"github.com/a3tai/mcp-table-report/internal/layout"
)

// LineGroup collects grid lines sharing a coordinate (y for horizontal, x for vertical)
type LineGroup struct {
	Coord float64          `json:"coord"`
	Lines []layout.Element `json:"lines"`
}

// Table is the grid recovered from the line elements of a page
type Table struct {
	Rect            layout.BBox      `json:"rect"`
	HorizontalLines []layout.Element `json:"horizontal_lines"`
	VerticalLines   []layout.Element `json:"vertical_lines"`

	// HorizontalByY is ordered by descending y, VerticalByX by ascending x.
	HorizontalByY []LineGroup `json:"horizontal_by_y"`
	VerticalByX   []LineGroup `json:"vertical_by_x"`

	// RowBounds runs top to bottom, ColumnBounds left to right.
	RowBounds    []float64 `json:"row_bounds"`
	ColumnBounds []float64 `json:"column_bounds"`

	// Cells is indexed [row][col]; a nil entry is an empty cell.
	Cells [][]*layout.Element `json:"cells"`
}

// NumRows returns the number of grid rows
func (t *Table) NumRows() int {
	if len(t.RowBounds) < 2 {
		return 0
	}
	return len(t.RowBounds) - 1
}

// NumCols returns the number of grid columns
func (t *Table) NumCols() int {
	if len(t.ColumnBounds) < 2 {
		return 0
	}
	return len(t.ColumnBounds) - 1
}

// IsEmpty reports whether no grid lines were found
func (t *Table) IsEmpty() bool {
	return len(t.HorizontalLines) == 0 && len(t.VerticalLines) == 0
}

// Cell returns the element at row, col or nil when out of range or empty.
func (t *Table) Cell(row, col int) *layout.Element {
	if row < 0 || row >= len(t.Cells) || col < 0 || col >= len(t.Cells[row]) {
		return nil
	}
	return t.Cells[row][col]
}

// CellBox returns the rectangle of the cell at row, col.
func (t *Table) CellBox(row, col int) layout.BBox {
	return layout.BBox{
		X0: t.ColumnBounds[col],
		Y0: t.RowBounds[row+1],
		X1: t.ColumnBounds[col+1],
		Y1: t.RowBounds[row],
	}
}

// CellText returns the trimmed text of a cell, empty when the cell is empty.
func (t *Table) CellText(row, col int) string {
	if e := t.Cell(row, col); e != nil {
		return e.TrimmedText()
	}
	return ""
}

// LegendField is a label with an optional value
type LegendField struct {
	Label layout.Element  `json:"label"`
	Value *layout.Element `json:"value,omitempty"`
}

// HasValue reports whether a value was paired with the label
func (f LegendField) HasValue() bool {
	return f.Value != nil
}

// Legend is the descriptive block printed to the left of the table
type Legend struct {
	Title  *layout.Element `json:"title,omitempty"`
	Fields []LegendField   `json:"fields"`
}

// Lookup returns the field whose label text matches, trailing whitespace ignored.
func (l *Legend) Lookup(label string) (LegendField, bool) {
	for _, f := range l.Fields {
		if f.Label.TrimmedText() == label {
			return f, true
		}
	}
	return LegendField{}, false
}

// PageObject is the structured result of analyzing one report page
type PageObject struct {
	Legend      Legend           `json:"legend"`
	Table       Table            `json:"table"`
	AllElements []layout.Element `json:"all_elements"`
}
