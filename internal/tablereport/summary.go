package tablereport

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

// FieldSummary is a legend field reduced to text and position
type FieldSummary struct {
	Label     string       `json:"label" yaml:"label"`
	Value     *string      `json:"value" yaml:"value"`
	LabelBBox layout.BBox  `json:"label_bbox" yaml:"label_bbox"`
	ValueBBox *layout.BBox `json:"value_bbox,omitempty" yaml:"value_bbox,omitempty"`
}

// Summary is a serialisation friendly view of a PageObject
type Summary struct {
	Title        string         `json:"title" yaml:"title"`
	Fields       []FieldSummary `json:"fields" yaml:"fields"`
	Rect         layout.BBox    `json:"table_rect" yaml:"table_rect"`
	Rows         int            `json:"num_rows" yaml:"num_rows"`
	Cols         int            `json:"num_cols" yaml:"num_cols"`
	RowBounds    []float64      `json:"row_bounds" yaml:"row_bounds"`
	ColumnBounds []float64      `json:"column_bounds" yaml:"column_bounds"`

	// Cells holds trimmed cell texts; null marks an empty cell.
	Cells        [][]*string         `json:"cells" yaml:"cells"`
	ElementCount map[layout.Kind]int `json:"element_count" yaml:"element_count"`
}

// Summarize builds the Summary of a page.
func Summarize(p *PageObject) Summary {
	s := Summary{
		Fields:       make([]FieldSummary, 0, len(p.Legend.Fields)),
		Rect:         p.Table.Rect,
		Rows:         p.Table.NumRows(),
		Cols:         p.Table.NumCols(),
		RowBounds:    p.Table.RowBounds,
		ColumnBounds: p.Table.ColumnBounds,
		Cells:        make([][]*string, len(p.Table.Cells)),
		ElementCount: layout.CountByKind(p.AllElements),
	}
	if p.Legend.Title != nil {
		s.Title = p.Legend.Title.TrimmedText()
	}

	for _, f := range p.Legend.Fields {
		fs := FieldSummary{Label: f.Label.TrimmedText(), LabelBBox: f.Label.BBox}
		if f.Value != nil {
			v := f.Value.TrimmedText()
			box := f.Value.BBox
			fs.Value, fs.ValueBBox = &v, &box
		}
		s.Fields = append(s.Fields, fs)
	}

	for r, row := range p.Table.Cells {
		s.Cells[r] = make([]*string, len(row))
		for c, e := range row {
			if e != nil {
				text := e.TrimmedText()
				s.Cells[r][c] = &text
			}
		}
	}
	return s
}

// FormatText renders a page as a human readable report.
func FormatText(p *PageObject) string {
	var b strings.Builder

	b.WriteString("Legend\n")
	if p.Legend.Title != nil {
		fmt.Fprintf(&b, "  title: %s\n", p.Legend.Title.TrimmedText())
	} else {
		b.WriteString("  title: <none>\n")
	}
	for _, f := range p.Legend.Fields {
		value := "<absent>"
		if f.Value != nil {
			value = f.Value.TrimmedText()
		}
		fmt.Fprintf(&b, "  %s: %s\n", f.Label.TrimmedText(), value)
	}

	b.WriteString("\nTable\n")
	if p.Table.IsEmpty() {
		b.WriteString("  no grid lines found\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  rect: %s\n", p.Table.Rect)
	fmt.Fprintf(&b, "  size: %d rows x %d cols\n", p.Table.NumRows(), p.Table.NumCols())

	for r := range p.Table.Cells {
		cols := make([]string, len(p.Table.Cells[r]))
		for c := range cols {
			if p.Table.Cells[r][c] == nil {
				cols[c] = "-"
			} else {
				cols[c] = p.Table.CellText(r, c)
			}
		}
		fmt.Fprintf(&b, "  [%d] %s\n", r, strings.Join(cols, " | "))
	}
	return b.String()
}

// FormatElements renders one line per element, in extraction order.
func FormatElements(elements []layout.Element) string {
	var b strings.Builder
	for i, e := range elements {
		fmt.Fprintf(&b, "%4d %-6s %s", i, e.Kind, e.BBox)
		if e.Kind == layout.KindText {
			fmt.Fprintf(&b, " %q", e.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
