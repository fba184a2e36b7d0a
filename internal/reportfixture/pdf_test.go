package reportfixture

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

func TestPDFStructure(t *testing.T) {
	data := Sample().PDF(SampleInfo())

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4\n")))
	assert.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))

	m := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(data)
	require.NotNil(t, m)
	xref, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data[xref:], []byte("xref\n0 8\n")))

	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllSubmatch(data[xref:], -1)
	require.Len(t, entries, 7)
	for i, e := range entries {
		off, err := strconv.Atoi(string(e[1]))
		require.NoError(t, err)
		want := fmt.Sprintf("%d 0 obj\n", i+1)
		assert.Equal(t, want, string(data[off:off+len(want)]), "xref entry %d", i+1)
	}
}

func TestPDFContent(t *testing.T) {
	data := Sample().PDF(SampleInfo())

	assert.Equal(t, 6, bytes.Count(data, []byte(" l S\n")))
	assert.Contains(t, string(data), "(Ivanov I. I.) Tj")
	assert.Contains(t, string(data), "/Title (Patient examination report)")
	assert.NotContains(t, string(data), "/Im1 Do")
	assert.NotContains(t, string(data), "/XObject <<")
}

func TestPDFStamp(t *testing.T) {
	r := Sample()
	r.Stamp = true
	data := r.PDF(SampleInfo())

	assert.Contains(t, string(data), "q 20 0 0 20 ")
	assert.Contains(t, string(data), "/Im1 Do Q")
	assert.Contains(t, string(data), "/XObject << /Im1 6 0 R >>")

	counts := layout.CountByKind(r.Elements())
	assert.Equal(t, 1, counts[layout.KindFigure])
	assert.Equal(t, r.StampBBox(), layout.BBox{X0: r.Geometry.Margin, Y0: r.Geometry.Margin,
		X1: r.Geometry.Margin + StampSize, Y1: r.Geometry.Margin + StampSize})
}

func TestPDFEscapesText(t *testing.T) {
	r := Sample()
	r.Title = `Report (draft) \ v2`
	assert.Contains(t, string(r.PDF(Info{})), `(Report \(draft\) \\ v2) Tj`)
}

func TestNum(t *testing.T) {
	assert.Equal(t, "10", num(10))
	assert.Equal(t, "28.3465", num(layout.MillimetersToPoints(10)))
	assert.Equal(t, "0.5", num(0.5))
	assert.Equal(t, "-3", num(-3))
	assert.Equal(t, "0", num(1e-9))
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, Sample().WritePDF(path, SampleInfo()))
	assert.FileExists(t, path)
}
