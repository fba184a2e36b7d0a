package pdf

import (
	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path" yaml:"path"`
	Name         string `json:"name" yaml:"name"`
	Size         int64  `json:"size" yaml:"size"`
	ModifiedTime string `json:"modified_time" yaml:"modified_time"`
}

// ImageInfo describes one image written by PDFExtractImages
type ImageInfo struct {
	Name         string `json:"name" yaml:"name"`
	File         string `json:"file" yaml:"file"`
	Format       string `json:"format" yaml:"format"`
	Width        int    `json:"width" yaml:"width"`
	Height       int    `json:"height" yaml:"height"`
	ObjectNumber int    `json:"object_number" yaml:"object_number"`
	Size         int64  `json:"size" yaml:"size"`
}

// Request Types

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFPageRequest addresses one page of a PDF file. Page is 0-based.
type PDFPageRequest struct {
	Path string `json:"path"`
	Page int    `json:"page"`
}

// PDFMetadataRequest represents a request for the document information dictionary
type PDFMetadataRequest struct {
	Path string `json:"path"`
}

// PDFSavePageStreamRequest writes a page's decoded content stream to Output
type PDFSavePageStreamRequest struct {
	Path   string `json:"path"`
	Page   int    `json:"page"`
	Output string `json:"output"`
}

// PDFExtractImagesRequest writes a page's images into the Output directory
type PDFExtractImagesRequest struct {
	Path   string `json:"path"`
	Page   int    `json:"page"`
	Output string `json:"output"`
}

// PDFMeasureOpeningRequest times Runs extractions of one page
type PDFMeasureOpeningRequest struct {
	Path string `json:"path"`
	Page int    `json:"page"`
	Runs int    `json:"runs"`
}

// PDFExportTableRequest writes the analyzed table of a page to an XLSX workbook
type PDFExportTableRequest struct {
	Path   string `json:"path"`
	Page   int    `json:"page"`
	Output string `json:"output"`
}

// PDFListReportsRequest lists PDF reports under Directory, or the configured directory
type PDFListReportsRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
	Limit     int    `json:"limit"`
}

// Response Types

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid" yaml:"valid"`
	Path    string `json:"path" yaml:"path"`
	Pages   int    `json:"pages,omitempty" yaml:"pages,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// PDFPageElementsResult lists every layout element of a page
type PDFPageElementsResult struct {
	Path     string              `json:"path" yaml:"path"`
	Page     int                 `json:"page" yaml:"page"`
	Counts   map[layout.Kind]int `json:"counts" yaml:"counts"`
	Elements []layout.Element    `json:"elements" yaml:"elements"`
}

// PDFAnalyzeTableReportResult holds the recovered legend and table of a page
type PDFAnalyzeTableReportResult struct {
	Path    string                  `json:"path" yaml:"path"`
	Page    int                     `json:"page" yaml:"page"`
	Summary tablereport.Summary     `json:"summary" yaml:"summary"`
	Object  *tablereport.PageObject `json:"-" yaml:"-"`
}

// PDFMetadataResult holds the document information dictionary
type PDFMetadataResult struct {
	Path         string `json:"path" yaml:"path"`
	Pages        int    `json:"pages" yaml:"pages"`
	Size         int64  `json:"size" yaml:"size"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Author       string `json:"author,omitempty" yaml:"author,omitempty"`
	Subject      string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Producer     string `json:"producer,omitempty" yaml:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty" yaml:"mod_date,omitempty"`
	ModifiedTime string `json:"modified_time" yaml:"modified_time"`
}

// PDFSavePageStreamResult reports where the content stream was written
type PDFSavePageStreamResult struct {
	Path   string `json:"path" yaml:"path"`
	Page   int    `json:"page" yaml:"page"`
	Output string `json:"output" yaml:"output"`
	Bytes  int64  `json:"bytes" yaml:"bytes"`
}

// PDFExtractImagesResult lists the images written for a page
type PDFExtractImagesResult struct {
	Path       string      `json:"path" yaml:"path"`
	Page       int         `json:"page" yaml:"page"`
	Output     string      `json:"output" yaml:"output"`
	Images     []ImageInfo `json:"images" yaml:"images"`
	TotalCount int         `json:"total_count" yaml:"total_count"`
}

// PDFMeasureOpeningResult holds per-run and average extraction times
type PDFMeasureOpeningResult struct {
	Path      string    `json:"path" yaml:"path"`
	Page      int       `json:"page" yaml:"page"`
	Runs      int       `json:"runs" yaml:"runs"`
	RunsMS    []float64 `json:"runs_ms" yaml:"runs_ms"`
	AverageMS float64   `json:"average_ms" yaml:"average_ms"`
	Elements  int       `json:"elements" yaml:"elements"`
}

// PDFExportTableResult reports the workbook written for a page
type PDFExportTableResult struct {
	Path   string `json:"path" yaml:"path"`
	Page   int    `json:"page" yaml:"page"`
	Output string `json:"output" yaml:"output"`
	Rows   int    `json:"rows" yaml:"rows"`
	Cols   int    `json:"cols" yaml:"cols"`
	Fields int    `json:"fields" yaml:"fields"`
}

// PDFListReportsResult lists the PDF reports found
type PDFListReportsResult struct {
	Directory  string     `json:"directory" yaml:"directory"`
	Query      string     `json:"query,omitempty" yaml:"query,omitempty"`
	Files      []FileInfo `json:"files" yaml:"files"`
	TotalCount int        `json:"total_count" yaml:"total_count"`
}

// PDFServerInfoRequest carries the identity of the server reporting on itself
type PDFServerInfoRequest struct {
	ServerName string `json:"server_name" yaml:"server_name"`
	Version    string `json:"version" yaml:"version"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Parameters  string `json:"parameters" yaml:"parameters"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name" yaml:"server_name"`
	Version           string     `json:"version" yaml:"version"`
	DefaultDirectory  string     `json:"default_directory" yaml:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size" yaml:"max_file_size"`
	LegendToleranceMM float64    `json:"legend_tolerance_mm" yaml:"legend_tolerance_mm"`
	GridEpsilon       float64    `json:"grid_epsilon" yaml:"grid_epsilon"`
	RunGapRatio       float64    `json:"run_gap_ratio" yaml:"run_gap_ratio"`
	AvailableTools    []ToolInfo `json:"available_tools" yaml:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents" yaml:"directory_contents"`
	FromCache         bool       `json:"from_cache" yaml:"from_cache"`
	CacheAgeSeconds   float64    `json:"cache_age_seconds" yaml:"cache_age_seconds"`
	Truncated         bool       `json:"truncated" yaml:"truncated"`
	UsageGuidance     string     `json:"usage_guidance" yaml:"usage_guidance"`
}
