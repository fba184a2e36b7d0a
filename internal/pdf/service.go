// Package pdf reads table report PDFs inside one configured directory and
// feeds their page layout to the table report analyzer.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/logging"
	"github.com/a3tai/mcp-table-report/internal/pdf/security"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

// ServiceConfig configures a Service
type ServiceConfig struct {
	MaxFileSize int64
	Directory   string
	Analyzer    tablereport.Options
	Extractor   ExtractorOptions
}

// Service handles PDF file operations by orchestrating the PDF components
type Service struct {
	maxFileSize   int64
	validator     *Validator
	extractor     *Extractor
	analyzer      *tablereport.Analyzer
	pathValidator *security.PathValidator
	serverInfo    *PDFServerInfo
}

// NewService creates a PDF service rooted at cfg.Directory
func NewService(cfg ServiceConfig) (*Service, error) {
	pathValidator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maximum file size must be positive")
	}

	s := &Service{
		maxFileSize:   cfg.MaxFileSize,
		validator:     NewValidator(cfg.MaxFileSize),
		extractor:     NewExtractor(cfg.Extractor),
		analyzer:      tablereport.NewAnalyzer(cfg.Analyzer),
		pathValidator: pathValidator,
	}
	s.serverInfo = NewPDFServerInfo(s)
	return s, nil
}

// resolve confines path to the configured directory
func (s *Service) resolve(path string) (string, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// resolvePDF confines path and checks it is a PDF within the size limit
func (s *Service) resolvePDF(path string) (string, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := s.validator.Check(resolved); err != nil {
		return "", err
	}
	return resolved, nil
}

// relative reports path relative to the configured directory
func (s *Service) relative(path string) string {
	rel, err := filepath.Rel(s.pathValidator.Root(), path)
	if err != nil {
		return path
	}
	return rel
}

func logDone(op, path string, page int, start time.Time, err error) {
	if err != nil {
		logging.Warn().With(logging.Component("pdf"), logging.Operation(op), logging.Path(path),
			logging.Page(page), logging.ErrorField(err)).Msg("operation failed")
		return
	}
	logging.Debug().With(logging.Component("pdf"), logging.Operation(op), logging.Path(path),
		logging.Page(page), logging.Duration(time.Since(start))).Msg("operation completed")
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	result, err := s.validator.ValidateFile(PDFValidateFileRequest{Path: path})
	if err != nil {
		return nil, err
	}
	result.Path = req.Path
	return result, nil
}

// PDFPageElements lists every layout element of a page
func (s *Service) PDFPageElements(req PDFPageRequest) (result *PDFPageElementsResult, err error) {
	start := time.Now()
	defer func() { logDone("page_elements", req.Path, req.Page, start, err) }()

	path, err := s.resolvePDF(req.Path)
	if err != nil {
		return nil, err
	}
	elements, err := s.extractor.PageElements(path, req.Page)
	if err != nil {
		return nil, err
	}
	return &PDFPageElementsResult{
		Path:     req.Path,
		Page:     req.Page,
		Counts:   layout.CountByKind(elements),
		Elements: elements,
	}, nil
}

// PDFAnalyzeTableReport recovers the legend and table of a page
func (s *Service) PDFAnalyzeTableReport(req PDFPageRequest) (result *PDFAnalyzeTableReportResult, err error) {
	start := time.Now()
	defer func() { logDone("analyze_table_report", req.Path, req.Page, start, err) }()

	page, err := s.analyze(req.Path, req.Page)
	if err != nil {
		return nil, err
	}
	return &PDFAnalyzeTableReportResult{
		Path:    req.Path,
		Page:    req.Page,
		Summary: tablereport.Summarize(page),
		Object:  page,
	}, nil
}

func (s *Service) analyze(path string, index int) (*tablereport.PageObject, error) {
	resolved, err := s.resolvePDF(path)
	if err != nil {
		return nil, err
	}
	elements, err := s.extractor.PageElements(resolved, index)
	if err != nil {
		return nil, err
	}
	page, err := s.analyzer.Analyze(elements)
	if err != nil {
		return nil, extractError("analyze", path, index, err)
	}
	return page, nil
}

// PDFMetadata returns the document information dictionary and page count
func (s *Service) PDFMetadata(req PDFMetadataRequest) (*PDFMetadataResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	result, err := s.metadata(path)
	if err != nil {
		return nil, err
	}
	result.Path = req.Path
	return result, nil
}

// PDFSavePageStream writes the decoded content stream of a page to an output
// file inside the configured directory
func (s *Service) PDFSavePageStream(req PDFSavePageStreamRequest) (result *PDFSavePageStreamResult, err error) {
	start := time.Now()
	defer func() { logDone("save_page_stream", req.Path, req.Page, start, err) }()

	if req.Output == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	path, err := s.resolvePDF(req.Path)
	if err != nil {
		return nil, err
	}
	output, err := s.resolve(req.Output)
	if err != nil {
		return nil, err
	}

	n, err := savePageStream(path, req.Page, output)
	if err != nil {
		return nil, err
	}
	return &PDFSavePageStreamResult{Path: req.Path, Page: req.Page, Output: req.Output, Bytes: n}, nil
}

// PDFExtractImages writes the images of a page to an output directory inside
// the configured directory
func (s *Service) PDFExtractImages(req PDFExtractImagesRequest) (result *PDFExtractImagesResult, err error) {
	start := time.Now()
	defer func() { logDone("extract_images", req.Path, req.Page, start, err) }()

	if req.Output == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	path, err := s.resolvePDF(req.Path)
	if err != nil {
		return nil, err
	}
	dir, err := s.resolve(req.Output)
	if err != nil {
		return nil, err
	}

	images, err := extractImages(path, req.Page, dir)
	if err != nil {
		return nil, err
	}
	for i := range images {
		images[i].File = s.relative(images[i].File)
	}
	return &PDFExtractImagesResult{
		Path:       req.Path,
		Page:       req.Page,
		Output:     req.Output,
		Images:     images,
		TotalCount: len(images),
	}, nil
}

// PDFMeasureOpening times repeated extraction of a page
func (s *Service) PDFMeasureOpening(req PDFMeasureOpeningRequest) (*PDFMeasureOpeningResult, error) {
	path, err := s.resolvePDF(req.Path)
	if err != nil {
		return nil, err
	}
	result, err := s.extractor.measureOpening(path, req.Page, req.Runs)
	if err != nil {
		return nil, err
	}
	result.Path = req.Path
	return result, nil
}

// PDFExportTable analyzes a page and writes the table and legend to an XLSX
// workbook inside the configured directory
func (s *Service) PDFExportTable(req PDFExportTableRequest) (result *PDFExportTableResult, err error) {
	start := time.Now()
	defer func() { logDone("export_table", req.Path, req.Page, start, err) }()

	if req.Output == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	output, err := s.resolve(req.Output)
	if err != nil {
		return nil, err
	}

	page, err := s.analyze(req.Path, req.Page)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(output), outputDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := tablereport.ExportXLSX(output, page); err != nil {
		return nil, extractError("export table", req.Path, req.Page, err)
	}
	return &PDFExportTableResult{
		Path:   req.Path,
		Page:   req.Page,
		Output: req.Output,
		Rows:   page.Table.NumRows(),
		Cols:   page.Table.NumCols(),
		Fields: len(page.Legend.Fields),
	}, nil
}

// PDFListReports lists the PDF reports below a directory, by default the configured one
func (s *Service) PDFListReports(req PDFListReportsRequest) (*PDFListReportsResult, error) {
	directory := s.pathValidator.Root()
	if req.Directory != "" {
		resolved, err := s.resolve(req.Directory)
		if err != nil {
			return nil, err
		}
		directory = resolved
	}

	files, err := s.validator.listReports(directory, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	return &PDFListReportsResult{
		Directory:  directory,
		Query:      req.Query,
		Files:      files,
		TotalCount: len(files),
	}, nil
}

// PDFServerInfo describes the server configuration and the reports it can see
func (s *Service) PDFServerInfo(req PDFServerInfoRequest) (*PDFServerInfoResult, error) {
	return s.serverInfo.GetServerInfo(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the directory all paths are confined to
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.Root()
}

// AnalyzerOptions returns the effective table analyzer options
func (s *Service) AnalyzerOptions() tablereport.Options {
	return s.analyzer.Options()
}
