package pdf

import (
	"fmt"
	"sync"
	"time"

	"github.com/a3tai/mcp-table-report/internal/descriptions"
	"github.com/a3tai/mcp-table-report/internal/layout"
)

const (
	serverInfoCacheTTL = 5 * time.Minute
	serverInfoFileCap  = 100
)

// DirectoryCache keeps report listings for a limited time
type DirectoryCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

type cacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a new directory cache with specified TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached listing of dir and its age, if still valid
func (c *DirectoryCache) Get(dir string) ([]FileInfo, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[dir]
	if !exists {
		return nil, 0, false
	}
	age := c.now().Sub(entry.lastUpdate)
	if age > c.ttl {
		return nil, 0, false
	}
	return entry.files, age, true
}

// Set stores the listing of dir
func (c *DirectoryCache) Set(dir string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[dir] = cacheEntry{files: files, lastUpdate: c.now()}
}

// Clear removes expired entries
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for dir, entry := range c.entries {
		if now.Sub(entry.lastUpdate) > c.ttl {
			delete(c.entries, dir)
		}
	}
}

// Len returns the number of cached directories, expired ones included
func (c *DirectoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// PDFServerInfo assembles the server description with a cached report listing
type PDFServerInfo struct {
	cache   *DirectoryCache
	service *Service
}

// NewPDFServerInfo creates a server info handler for service
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{
		cache:   NewDirectoryCache(serverInfoCacheTTL),
		service: service,
	}
}

// GetServerInfo describes the server and lists the reports in its directory
func (p *PDFServerInfo) GetServerInfo(req PDFServerInfoRequest) (*PDFServerInfoResult, error) {
	dir := p.service.pathValidator.Root()

	files, age, cached := p.cache.Get(dir)
	if !cached {
		var err error
		files, err = p.service.validator.listReports(dir, "", serverInfoFileCap)
		if err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}
		p.cache.Set(dir, files)
	}

	opts := p.service.analyzer.Options()
	return &PDFServerInfoResult{
		ServerName:        req.ServerName,
		Version:           req.Version,
		DefaultDirectory:  dir,
		MaxFileSize:       p.service.maxFileSize,
		LegendToleranceMM: opts.LegendTolerance / layout.PointsPerMillimeter,
		GridEpsilon:       opts.GridEpsilon,
		RunGapRatio:       p.service.extractor.opts.RunGapRatio,
		AvailableTools:    availableTools(),
		DirectoryContents: files,
		FromCache:         cached,
		CacheAgeSeconds:   age.Seconds(),
		Truncated:         len(files) >= serverInfoFileCap,
		UsageGuidance:     p.usageGuidance(),
	}, nil
}

// ClearCache drops expired listings
func (p *PDFServerInfo) ClearCache() {
	p.cache.Clear()
}

var toolParameters = map[string]string{
	"pdf_list_reports":         "directory (optional), query (optional), limit (optional)",
	"pdf_server_info":          "none",
	"pdf_validate_file":        "path (required)",
	"pdf_analyze_table_report": "path (required), page (optional, default 0), format (optional: text, json)",
	"pdf_list_elements":        "path (required), page (optional, default 0), format (optional: text, json)",
	"pdf_metadata":             "path (required)",
	"pdf_export_table":         "path (required), page (optional, default 0), output (required)",
	"pdf_save_page_stream":     "path (required), page (optional, default 0), output (required)",
	"pdf_extract_images":       "path (required), page (optional, default 0), output (required)",
	"pdf_measure_opening":      "path (required), page (optional, default 0), runs (optional)",
}

func availableTools() []ToolInfo {
	names := descriptions.GetAllToolNames()
	tools := make([]ToolInfo, 0, len(names))
	for _, name := range names {
		tools = append(tools, ToolInfo{
			Name:        name,
			Description: descriptions.GetToolDescription(name),
			Parameters:  toolParameters[name],
		})
	}
	return tools
}

func (p *PDFServerInfo) usageGuidance() string {
	maxFileSizeMB := p.service.maxFileSize / (1024 * 1024)

	return fmt.Sprintf(`Table Report MCP Server Usage Guide:

1. FIND REPORTS:
   - Use 'pdf_list_reports' to find reports, optionally filtered by name
   - Use 'pdf_validate_file' to check a file before analyzing it

2. READ A REPORT:
   - Use 'pdf_analyze_table_report' to get the legend and the table cells
   - Pages are zero-based; page 0 is the first page
   - Use format "json" for machine-readable output

3. EXPORT:
   - Use 'pdf_export_table' to write the table and legend to an XLSX workbook
   - Use 'pdf_extract_images' to save stamps or signatures embedded in the page

4. TROUBLESHOOT:
   - Use 'pdf_list_elements' to see the text runs and ruling lines the analyzer works on
   - Use 'pdf_save_page_stream' to dump the raw drawing commands of a page
   - Use 'pdf_measure_opening' to time extraction of a slow page

IMPORTANT NOTES:
- Paths are relative to the configured directory; paths outside it are rejected
- The server can handle files up to %dMB
- Only ruled tables are recognized; the grid comes from horizontal and vertical lines
- The directory listing in this response is cached for 5 minutes`, maxFileSizeMB)
}
