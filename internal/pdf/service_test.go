package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/pdf/security"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

func TestNewService(t *testing.T) {
	svc, dir := newTestService(t)
	assert.Equal(t, int64(testMaxFileSize), svc.GetMaxFileSize())

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, svc.GetConfiguredDirectory())
	assert.Equal(t, tablereport.DefaultOptions(), svc.AnalyzerOptions())
}

func TestNewService_InvalidConfig(t *testing.T) {
	_, err := NewService(ServiceConfig{MaxFileSize: 1})
	assert.Error(t, err)

	_, err = NewService(ServiceConfig{Directory: t.TempDir()})
	assert.ErrorContains(t, err, "maximum file size")
}

func TestService_PathConfinement(t *testing.T) {
	svc, _ := newTestService(t)
	outside := writeReport(t, t.TempDir(), "outside.pdf", false)

	_, err := svc.PDFPageElements(PDFPageRequest{Path: outside})
	assert.ErrorIs(t, err, security.ErrOutsideDirectory)

	_, err = svc.PDFAnalyzeTableReport(PDFPageRequest{Path: "../outside.pdf"})
	assert.ErrorIs(t, err, security.ErrOutsideDirectory)

	_, err = svc.PDFValidateFile(PDFValidateFileRequest{Path: outside})
	assert.ErrorContains(t, err, "security validation failed")

	_, err = svc.PDFListReports(PDFListReportsRequest{Directory: filepath.Dir(outside)})
	assert.ErrorIs(t, err, security.ErrOutsideDirectory)
}

func TestService_PDFValidateFile(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", false)

	result, err := svc.PDFValidateFile(PDFValidateFileRequest{Path: "report.pdf"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "report.pdf", result.Path)

	result, err = svc.PDFValidateFile(PDFValidateFileRequest{Path: "missing.pdf"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestService_PDFPageElements(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", true)

	result, err := svc.PDFPageElements(PDFPageRequest{Path: "report.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Page)
	assert.Equal(t, 6, result.Counts[layout.KindLine])
	assert.Equal(t, 1, result.Counts[layout.KindFigure])
	assert.Equal(t, 24, result.Counts[layout.KindText])
	assert.Len(t, result.Elements, 31)
}

func TestService_PDFAnalyzeTableReport(t *testing.T) {
	svc, dir := newTestService(t)
	path := writeReport(t, dir, "report.pdf", false)

	// absolute paths inside the directory are accepted too
	result, err := svc.PDFAnalyzeTableReport(PDFPageRequest{Path: path})
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, "Patient examination report", s.Title)
	require.Len(t, s.Fields, 4)
	assert.Equal(t, "Patient", s.Fields[1].Label)
	require.NotNil(t, s.Fields[1].Value)
	assert.Equal(t, "Ivanov I. I.", *s.Fields[1].Value)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 4, s.Cols)
	assert.Nil(t, s.Cells[0][0])
	require.NotNil(t, s.Cells[3][3])
	assert.Equal(t, "99", *s.Cells[3][3])

	require.NotNil(t, result.Object)
	assert.Equal(t, "Wed", result.Object.Table.CellText(0, 3))
}

func TestService_PDFAnalyzeTableReportPageOutOfRange(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", false)

	_, err := svc.PDFAnalyzeTableReport(PDFPageRequest{Path: "report.pdf", Page: 4})
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestService_PDFSavePageStream(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", false)

	result, err := svc.PDFSavePageStream(PDFSavePageStreamRequest{Path: "report.pdf", Output: "out/stream.txt"})
	require.NoError(t, err)
	assert.Equal(t, "out/stream.txt", result.Output)

	data, err := os.ReadFile(filepath.Join(dir, "out", "stream.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.Bytes)
	assert.Equal(t, 6, strings.Count(string(data), " l S"))
	assert.Contains(t, string(data), "(Ivanov I. I.) Tj")

	_, err = svc.PDFSavePageStream(PDFSavePageStreamRequest{Path: "report.pdf", Output: "../stream.txt"})
	assert.ErrorIs(t, err, security.ErrOutsideDirectory)

	_, err = svc.PDFSavePageStream(PDFSavePageStreamRequest{Path: "report.pdf"})
	assert.ErrorContains(t, err, "output path cannot be empty")
}

func TestService_PDFExtractImages(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "stamped.pdf", true)
	writeReport(t, dir, "plain.pdf", false)

	result, err := svc.PDFExtractImages(PDFExtractImagesRequest{Path: "stamped.pdf", Output: "images"})
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "images", result.Output)

	img := result.Images[0]
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.NotEmpty(t, img.Format)
	assert.Equal(t, "images", filepath.Dir(img.File))
	assert.True(t, strings.HasPrefix(filepath.Base(img.File), "stamped_p0_"))
	assert.FileExists(t, filepath.Join(dir, img.File))
	assert.Positive(t, img.Size)

	result, err = svc.PDFExtractImages(PDFExtractImagesRequest{Path: "plain.pdf", Output: "images"})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
	assert.NotNil(t, result.Images)
}

func TestService_PDFMeasureOpening(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", false)

	result, err := svc.PDFMeasureOpening(PDFMeasureOpeningRequest{Path: "report.pdf", Runs: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Runs)
	assert.Len(t, result.RunsMS, 2)
	assert.Equal(t, 30, result.Elements)
	assert.GreaterOrEqual(t, result.AverageMS, 0.0)

	result, err = svc.PDFMeasureOpening(PDFMeasureOpeningRequest{Path: "report.pdf"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMeasureRuns, result.Runs)

	_, err = svc.PDFMeasureOpening(PDFMeasureOpeningRequest{Path: "report.pdf", Runs: MaxMeasureRuns + 1})
	assert.Error(t, err)
}

func TestService_PDFExportTable(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", false)

	result, err := svc.PDFExportTable(PDFExportTableRequest{Path: "report.pdf", Output: "exports/report.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, "exports/report.xlsx", result.Output)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 4, result.Cols)
	assert.Equal(t, 4, result.Fields)

	f, err := excelize.OpenFile(filepath.Join(dir, "exports", "report.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(tablereport.TableSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Mon", v)
}

func TestService_PDFListReports(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "a.pdf", false)
	writeReport(t, dir, "nested/b.pdf", false)

	result, err := svc.PDFListReports(PDFListReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, svc.GetConfiguredDirectory(), result.Directory)
	assert.Equal(t, 2, result.TotalCount)

	result, err = svc.PDFListReports(PDFListReportsRequest{Directory: "nested"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf"}, names(result.Files))
}

func TestService_ConcurrentAnalysis(t *testing.T) {
	svc, dir := newTestService(t)
	writeReport(t, dir, "report.pdf", false)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PDFAnalyzeTableReport(PDFPageRequest{Path: "report.pdf"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
