package tablereport

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/reportfixture"
)

func samplePage(t *testing.T) *PageObject {
	t.Helper()
	page, err := Analyze(reportfixture.Sample().Elements())
	require.NoError(t, err)
	return page
}

func TestSummarize(t *testing.T) {
	s := Summarize(samplePage(t))

	assert.Equal(t, "Patient examination report", s.Title)
	require.Len(t, s.Fields, 4)
	assert.Equal(t, "Doctor", s.Fields[3].Label)
	require.NotNil(t, s.Fields[3].Value)
	assert.Equal(t, "Petrova A. S.", *s.Fields[3].Value)
	assert.NotNil(t, s.Fields[3].ValueBBox)

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 4, s.Cols)
	assert.Nil(t, s.Cells[0][0])
	require.NotNil(t, s.Cells[1][0])
	assert.Equal(t, "Pulse", *s.Cells[1][0])
	assert.Equal(t, 6, s.ElementCount[layout.KindLine])
}

func TestSummaryJSON(t *testing.T) {
	page, err := Analyze(append(gridFrame(100, 0, 400, 500),
		layout.Text("Title", 10, 450, 60, 460),
		layout.Text("Orphan", 10, 400, 60, 410),
	))
	require.NoError(t, err)

	data, err := json.Marshal(Summarize(page))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	fields := decoded["fields"].([]interface{})
	require.Len(t, fields, 1)
	field := fields[0].(map[string]interface{})
	assert.Equal(t, "Orphan", field["label"])
	assert.Nil(t, field["value"])
	assert.NotContains(t, field, "value_bbox")
}

func TestFormatText(t *testing.T) {
	out := FormatText(samplePage(t))

	assert.Contains(t, out, "title: Patient examination report")
	assert.Contains(t, out, "Age: 42")
	assert.Contains(t, out, "size: 4 rows x 4 cols")
	assert.Contains(t, out, "[0] - | Mon | Tue | Wed")
	assert.Contains(t, out, "[3] SpO2 | 98 | 97 | 99")
}

func TestFormatTextEmptyPage(t *testing.T) {
	page, err := Analyze([]layout.Element{layout.Text("x", 0, 0, 1, 1)})
	require.NoError(t, err)

	out := FormatText(page)
	assert.Contains(t, out, "title: <none>")
	assert.Contains(t, out, "no grid lines found")
}

func TestFormatTextAbsentValue(t *testing.T) {
	page, err := Analyze(append(gridFrame(100, 0, 400, 500),
		layout.Text("Title", 10, 450, 60, 460),
		layout.Text("Orphan", 10, 400, 60, 410),
	))
	require.NoError(t, err)
	assert.Contains(t, FormatText(page), "Orphan: <absent>")
}

func TestFormatElements(t *testing.T) {
	out := FormatElements([]layout.Element{
		layout.Line(0, 10, 100, 10),
		layout.Text("Hello", 1, 2, 3, 4),
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "line")
	assert.NotContains(t, lines[0], `"`)
	assert.Contains(t, lines[1], `"Hello"`)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, samplePage(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TableSheet, LegendSheet}, f.GetSheetList())

	v, err := f.GetCellValue(TableSheet, "A1")
	require.NoError(t, err)
	assert.Empty(t, v)
	v, err = f.GetCellValue(TableSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Mon", v)
	v, err = f.GetCellValue(TableSheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "99", v)

	v, err = f.GetCellValue(LegendSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Patient examination report", v)
	v, err = f.GetCellValue(LegendSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Ivanov I. I.", v)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportXLSX(path, samplePage(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LegendSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}
