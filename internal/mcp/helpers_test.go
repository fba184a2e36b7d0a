package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-table-report/internal/config"
	"github.com/a3tai/mcp-table-report/internal/pdf"
	"github.com/a3tai/mcp-table-report/internal/reportfixture"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()
	cfg.ServerName = "test-server"
	cfg.MaxFileSize = 10 * 1024 * 1024
	return cfg
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	cfg := testConfig(t)
	svc, err := pdf.NewService(cfg.ServiceConfig())
	require.NoError(t, err)
	s, err := NewServer(cfg, svc)
	require.NoError(t, err)
	return s, cfg.PDFDirectory
}

// writeReport renders the sample report into dir and returns its file name
func writeReport(t *testing.T, dir, name string, stamp bool) string {
	t.Helper()
	r := reportfixture.Sample()
	r.Stamp = stamp
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, r.WritePDF(path, reportfixture.SampleInfo()))
	return name
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// extractTextFromResult returns the first text content of a tool result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
