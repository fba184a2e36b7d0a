// Package mcp exposes the table report PDF service as MCP tools over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-table-report/internal/config"
	"github.com/a3tai/mcp-table-report/internal/descriptions"
	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/logging"
	"github.com/a3tai/mcp-table-report/internal/pdf"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

// shutdownTimeout bounds the SSE server's graceful shutdown
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}
	s.registerTools()

	return s, nil
}

func pathArg() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
	)
}

func pageArg() mcp.ToolOption {
	return mcp.WithNumber("page",
		mcp.Description("Zero-based page index (default 0)"),
	)
}

func formatArg() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: 'text' (default) or 'json'"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.addTool(mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	), s.handlePDFServerInfo)

	s.addTool(mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		pathArg(),
	), s.handlePDFValidateFile)

	s.addTool(mcp.NewTool(
		"pdf_list_elements",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_list_elements")),
		pathArg(),
		pageArg(),
		formatArg(),
	), s.handlePDFListElements)

	s.addTool(mcp.NewTool(
		"pdf_analyze_table_report",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_analyze_table_report")),
		pathArg(),
		pageArg(),
		formatArg(),
	), s.handlePDFAnalyzeTableReport)

	s.addTool(mcp.NewTool(
		"pdf_metadata",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_metadata")),
		pathArg(),
	), s.handlePDFMetadata)

	s.addTool(mcp.NewTool(
		"pdf_save_page_stream",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_save_page_stream")),
		pathArg(),
		pageArg(),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Output file path, relative to the configured directory"),
		),
	), s.handlePDFSavePageStream)

	s.addTool(mcp.NewTool(
		"pdf_extract_images",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_images")),
		pathArg(),
		pageArg(),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Output directory, relative to the configured directory"),
		),
	), s.handlePDFExtractImages)

	s.addTool(mcp.NewTool(
		"pdf_measure_opening",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_measure_opening")),
		pathArg(),
		pageArg(),
		mcp.WithNumber("runs",
			mcp.Description(fmt.Sprintf("Number of runs (default %d, max %d)", pdf.DefaultMeasureRuns, pdf.MaxMeasureRuns)),
		),
	), s.handlePDFMeasureOpening)

	s.addTool(mcp.NewTool(
		"pdf_export_table",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_export_table")),
		pathArg(),
		pageArg(),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Output .xlsx path, relative to the configured directory"),
		),
	), s.handlePDFExportTable)

	s.addTool(mcp.NewTool(
		"pdf_list_reports",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_list_reports")),
		mcp.WithString("directory",
			mcp.Description("Directory to search (uses the configured directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive file name filter"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return (0 for no limit)"),
		),
	), s.handlePDFListReports)
}

// addTool registers a tool whose calls are logged under a fresh request id
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	name := tool.Name
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := uuid.NewString()
		start := time.Now()
		logging.Debug().With(logging.Component("mcp"), logging.Operation(name), logging.RequestID(id)).
			Msg("tool call started")

		result, err := handler(ctx, request)

		event := logging.Info()
		if err != nil || (result != nil && result.IsError) {
			event = logging.Warn()
		}
		event.With(logging.Component("mcp"), logging.Operation(name), logging.RequestID(id),
			logging.Duration(time.Since(start)), logging.ErrorField(err)).Msg("tool call finished")
		return result, err
	})
}

// pageFrom reads the optional page argument. Fractional values are rejected.
func pageFrom(request mcp.CallToolRequest) (int, error) {
	return intArg(request, "page", 0)
}

func intArg(request mcp.CallToolRequest, key string, def int) (int, error) {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be an integer, got %g", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return v
	}
	return ""
}

func wantsJSON(request mcp.CallToolRequest) (bool, error) {
	switch f := strings.ToLower(stringArg(request, "format")); f {
	case "", "text":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported format %q (must be text or json)", f)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Handler functions
func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.PDFServerInfo(pdf.PDFServerInfoRequest{
		ServerName: s.config.ServerName,
		Version:    s.config.Version,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)), nil
}

func (s *Server) handlePDFListElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, asJSON, err := pageRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFPageElements(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if asJSON {
		return jsonResult(result)
	}
	return mcp.NewToolResultText(formatPageElementsResult(result)), nil
}

func (s *Server) handlePDFAnalyzeTableReport(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	req, asJSON, err := pageRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFAnalyzeTableReport(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if asJSON {
		return jsonResult(result)
	}

	text := fmt.Sprintf("Table report analysis of %s, page %d\n\n", result.Path, result.Page)
	text += tablereport.FormatText(result.Object)
	return mcp.NewToolResultText(text), nil
}

func pageRequest(request mcp.CallToolRequest) (pdf.PDFPageRequest, bool, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return pdf.PDFPageRequest{}, false, err
	}
	page, err := pageFrom(request)
	if err != nil {
		return pdf.PDFPageRequest{}, false, err
	}
	asJSON, err := wantsJSON(request)
	if err != nil {
		return pdf.PDFPageRequest{}, false, err
	}
	return pdf.PDFPageRequest{Path: path, Page: page}, asJSON, nil
}

func (s *Server) handlePDFMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFMetadata(pdf.PDFMetadataRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMetadataResult(result)), nil
}

func (s *Server) handlePDFSavePageStream(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, page, output, err := outputRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFSavePageStream(pdf.PDFSavePageStreamRequest{Path: path, Page: page, Output: output})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved content stream of %s page %d to %s (%d bytes)",
		result.Path, result.Page, result.Output, result.Bytes)), nil
}

func (s *Server) handlePDFExtractImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, page, output, err := outputRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFExtractImages(pdf.PDFExtractImagesRequest{Path: path, Page: page, Output: output})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatExtractImagesResult(result)), nil
}

func (s *Server) handlePDFMeasureOpening(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := pageFrom(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	runs, err := intArg(request, "runs", pdf.DefaultMeasureRuns)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFMeasureOpening(pdf.PDFMeasureOpeningRequest{Path: path, Page: page, Runs: runs})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMeasureOpeningResult(result)), nil
}

func (s *Server) handlePDFExportTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, page, output, err := outputRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFExportTable(pdf.PDFExportTableRequest{Path: path, Page: page, Output: output})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Exported %d x %d table and %d legend fields of %s page %d to %s",
		result.Rows, result.Cols, result.Fields, result.Path, result.Page, result.Output)), nil
}

func outputRequest(request mcp.CallToolRequest) (path string, page int, output string, err error) {
	if path, err = request.RequireString("path"); err != nil {
		return "", 0, "", err
	}
	if output, err = request.RequireString("output"); err != nil {
		return "", 0, "", err
	}
	if page, err = pageFrom(request); err != nil {
		return "", 0, "", err
	}
	return path, page, output, nil
}

func (s *Server) handlePDFListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := intArg(request, "limit", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFListReports(pdf.PDFListReportsRequest{
		Directory: stringArg(request, "directory"),
		Query:     stringArg(request, "query"),
		Limit:     limit,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		text := fmt.Sprintf("No PDF reports found in directory: %s", result.Directory)
		if result.Query != "" {
			text += fmt.Sprintf(" (searched for: %s)", result.Query)
		}
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultText(formatListReportsResult(result)), nil
}

// Formatting functions
func formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("Server: %s v%s\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Max file size: %d bytes\n", result.MaxFileSize)
	text += fmt.Sprintf("Legend tolerance: %g mm, grid epsilon: %g pt, run gap ratio: %g\n",
		result.LegendToleranceMM, result.GridEpsilon, result.RunGapRatio)

	text += "\nAvailable tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("- %s: %s\n", tool.Name, tool.Parameters)
	}

	text += fmt.Sprintf("\nReports in directory (%d", len(result.DirectoryContents))
	if result.Truncated {
		text += ", truncated"
	}
	if result.FromCache {
		text += fmt.Sprintf(", cached %.0fs ago", result.CacheAgeSeconds)
	}
	text += "):\n"
	for _, file := range result.DirectoryContents {
		text += fmt.Sprintf("- %s (%d bytes)\n", file.Path, file.Size)
	}

	text += "\n" + result.UsageGuidance + "\n"
	return text
}

func formatPageElementsResult(result *pdf.PDFPageElementsResult) string {
	text := fmt.Sprintf("Layout elements of %s, page %d: %d total\n", result.Path, result.Page, len(result.Elements))
	for _, kind := range []layout.Kind{
		layout.KindText, layout.KindLine, layout.KindRect, layout.KindCurve, layout.KindFigure, layout.KindOther,
	} {
		if n := result.Counts[kind]; n > 0 {
			text += fmt.Sprintf("  %s: %d\n", kind, n)
		}
	}
	text += "\n" + tablereport.FormatElements(result.Elements)
	return text
}

func formatMetadataResult(result *pdf.PDFMetadataResult) string {
	text := "PDF Metadata\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedTime)

	for _, f := range []struct{ label, value string }{
		{"Title", result.Title},
		{"Author", result.Author},
		{"Subject", result.Subject},
		{"Keywords", result.Keywords},
		{"Creator", result.Creator},
		{"Producer", result.Producer},
		{"Created", result.CreationDate},
		{"Changed", result.ModDate},
	} {
		if f.value != "" {
			text += fmt.Sprintf("%s: %s\n", f.label, f.value)
		}
	}
	return text
}

func formatExtractImagesResult(result *pdf.PDFExtractImagesResult) string {
	text := fmt.Sprintf("Images of %s, page %d\n", result.Path, result.Page)
	text += fmt.Sprintf("Total images extracted: %d\n", result.TotalCount)

	for i, img := range result.Images {
		text += fmt.Sprintf("%d. %s: %dx%d pixels, Format: %s, Size: %d bytes\n",
			i+1, img.File, img.Width, img.Height, img.Format, img.Size)
	}
	return text
}

func formatMeasureOpeningResult(result *pdf.PDFMeasureOpeningResult) string {
	text := fmt.Sprintf("Extraction timing for %s, page %d (%d elements)\n", result.Path, result.Page, result.Elements)
	for i, ms := range result.RunsMS {
		text += fmt.Sprintf("%d / %d: %.3f ms\n", i+1, result.Runs, ms)
	}
	text += fmt.Sprintf("Average: %.3f ms\n", result.AverageMS)
	return text
}

func formatListReportsResult(result *pdf.PDFListReportsResult) string {
	text := fmt.Sprintf("Found %d PDF report(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.Query != "" {
		text += fmt.Sprintf("Search query: %s\n", result.Query)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
	}
	return text
}

// Run starts the MCP server in the configured mode and returns when ctx is
// cancelled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves the protocol on stdin/stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	logging.Info().With(logging.Component("mcp"), logging.Path(s.config.PDFDirectory)).
		Msg("starting MCP server in stdio mode")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the protocol over SSE on the configured address
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	logging.Info().With(logging.Component("mcp"), logging.Path(s.config.PDFDirectory)).
		Msg("starting MCP server in SSE mode on " + addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		logging.Info().With(logging.Component("mcp")).Msg("SSE server stopped")
		return nil
	}
}

// MCPServer returns the underlying protocol server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}
