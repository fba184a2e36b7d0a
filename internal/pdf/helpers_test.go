package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-table-report/internal/reportfixture"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

const testMaxFileSize = 10 * 1024 * 1024

// writeReport renders the sample report into dir and returns its path
func writeReport(t *testing.T, dir, name string, stamp bool) string {
	t.Helper()
	r := reportfixture.Sample()
	r.Stamp = stamp
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, r.WritePDF(path, reportfixture.SampleInfo()))
	return path
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(ServiceConfig{
		MaxFileSize: testMaxFileSize,
		Directory:   dir,
		Analyzer:    tablereport.DefaultOptions(),
		Extractor:   DefaultExtractorOptions(),
	})
	require.NoError(t, err)
	return svc, dir
}
