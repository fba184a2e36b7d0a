package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpc sends one JSON-RPC message through the protocol server and returns the decoded reply
func rpc(t *testing.T, s *Server, id int, method string, params interface{}) map[string]interface{} {
	t.Helper()
	msg, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	reply := s.MCPServer().HandleMessage(context.Background(), msg)
	require.NotNil(t, reply, "no reply to %s", method)

	data, err := json.Marshal(reply)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotContains(t, decoded, "error", "%s failed: %s", method, data)
	return decoded
}

func initialize(t *testing.T, s *Server) {
	t.Helper()
	rpc(t, s, 1, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]interface{}{"name": "test-client", "version": "1.0.0"},
	})
}

func TestServerToolsRegistration(t *testing.T) {
	s, _ := newTestServer(t)
	initialize(t, s)

	reply := rpc(t, s, 2, "tools/list", map[string]interface{}{})
	tools := reply["result"].(map[string]interface{})["tools"].([]interface{})

	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]interface{})["name"].(string))
	}
	assert.ElementsMatch(t, []string{
		"pdf_server_info",
		"pdf_validate_file",
		"pdf_list_elements",
		"pdf_analyze_table_report",
		"pdf_metadata",
		"pdf_save_page_stream",
		"pdf_extract_images",
		"pdf_measure_opening",
		"pdf_export_table",
		"pdf_list_reports",
	}, names)
}

func TestServerIntegrationAnalyze(t *testing.T) {
	s, dir := newTestServer(t)
	name := writeReport(t, dir, "report.pdf", false)
	initialize(t, s)

	reply := rpc(t, s, 3, "tools/call", map[string]interface{}{
		"name": "pdf_analyze_table_report",
		"arguments": map[string]interface{}{
			"path": name,
			"page": 0,
		},
	})

	result := reply["result"].(map[string]interface{})
	assert.NotEqual(t, true, result["isError"])
	content := result["content"].([]interface{})
	require.NotEmpty(t, content)
	text := content[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "title: Patient examination report")
	assert.Contains(t, text, "[0] - | Mon | Tue | Wed")
}

func TestServerIntegrationToolError(t *testing.T) {
	s, _ := newTestServer(t)
	initialize(t, s)

	reply := rpc(t, s, 4, "tools/call", map[string]interface{}{
		"name":      "pdf_metadata",
		"arguments": map[string]interface{}{"path": "missing.pdf"},
	})

	result := reply["result"].(map[string]interface{})
	assert.Equal(t, true, result["isError"])
	text := result["content"].([]interface{})[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "does not exist")
}

func TestServerIntegrationConcurrentCalls(t *testing.T) {
	s, dir := newTestServer(t)
	name := writeReport(t, dir, "report.pdf", false)
	initialize(t, s)

	const calls = 8
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		go func(id int) {
			msg, _ := json.Marshal(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      100 + id,
				"method":  "tools/call",
				"params": map[string]interface{}{
					"name":      "pdf_list_elements",
					"arguments": map[string]interface{}{"path": name},
				},
			})
			reply := s.MCPServer().HandleMessage(context.Background(), msg)
			data, err := json.Marshal(reply)
			if err == nil && !json.Valid(data) {
				err = fmt.Errorf("invalid reply for call %d", id)
			}
			errs <- err
		}(i)
	}
	for i := 0; i < calls; i++ {
		assert.NoError(t, <-errs)
	}
}
