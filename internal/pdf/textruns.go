package pdf

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

// baselineTolerance is how far apart two glyph baselines may be, in points,
// and still belong to the same run.
const baselineTolerance = 0.5

// TextRuns merges positioned glyphs into text elements. A glyph extends the
// current run when it sits on the same baseline, has the same font size and
// starts less than fontSize*gapRatio after the previous glyph ends.
// Runs made only of whitespace are dropped.
func TextRuns(glyphs []pdf.Text, gapRatio float64) []layout.Element {
	var runs []layout.Element
	var current []pdf.Text

	flush := func() {
		if len(current) > 0 {
			if run, ok := newRun(current); ok {
				runs = append(runs, run)
			}
			current = current[:0]
		}
	}

	for _, g := range glyphs {
		if len(current) > 0 && !continuesRun(current[len(current)-1], g, gapRatio) {
			flush()
		}
		current = append(current, g)
	}
	flush()
	return runs
}

func continuesRun(prev, next pdf.Text, gapRatio float64) bool {
	if math.Abs(next.Y-prev.Y) >= baselineTolerance {
		return false
	}
	if math.Abs(next.FontSize-prev.FontSize) > 1e-6 {
		return false
	}
	size := math.Abs(prev.FontSize)
	gap := next.X - (prev.X + prev.W)
	return gap < size*gapRatio && gap > -size
}

func newRun(glyphs []pdf.Text) (layout.Element, bool) {
	var sb strings.Builder
	for _, g := range glyphs {
		sb.WriteString(g.S)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return layout.Element{}, false
	}

	first, last := glyphs[0], glyphs[len(glyphs)-1]
	return layout.Element{
		Kind:     layout.KindText,
		Text:     text,
		Font:     first.Font,
		FontSize: first.FontSize,
		BBox:     layout.NewBBox(first.X, first.Y, last.X+last.W, first.Y+first.FontSize),
	}, true
}
