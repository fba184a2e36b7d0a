package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Discovery Tools
	PDFListReportsDescription = `Find table report PDFs in the configured directory or one of its subdirectories.

**When to use:** Need to know which reports are available before analyzing one.

**Examples:**
• List everything: "Which reports are in the reports folder?"
• Narrow by name: "Find the March reports" with query "march"
• Browse an archive: directory "archive/2024", limit 20

**Best practices:** Hidden directories, empty files and files above the size limit are skipped. Paths in the result can be passed straight to the other tools.`

	PDFServerInfoDescription = `Describe the server: configured directory, size limit, analysis tolerances, available tools and the reports currently in the directory.

**When to use:** At the start of a session to learn what the server can do and where it reads from.

**Best practices:** The directory listing is cached for a few minutes; use pdf_list_reports for a fresh, filtered view.`

	PDFValidateFileDescription = `Check that a file is a readable PDF within the configured size limit.

**When to use:** Before analyzing a file of unknown origin.

**Examples:**
• "Is incoming/scan-0412.pdf a valid PDF?"

**Best practices:** Validation reports problems in the result instead of failing, so a false verdict comes with a message explaining why.`

	// Analysis Tools
	PDFAnalyzeTableReportDescription = `Recover the structure of a table report page: the legend (title plus label/value fields) to the left of the table, and the table grid with the text of every cell.

**When to use:** Reading the data out of generated reports such as examination protocols, lab sheets or weekly measurement tables.

**How it works:**
• Horizontal and vertical ruling lines define the table rectangle and its row and column boundaries
• Each text run inside the rectangle is assigned to the first cell that fully contains it
• Text to the left of the table forms the legend; the topmost item is the title, and each label is paired with the value on the same baseline

**Examples:**
• "Analyze page 0 of report.pdf and give me the pulse readings"
• "Return the legend of archive/march.pdf as JSON" with format "json"

**Best practices:** Cells are addressed as (row, column) from the top-left. Empty cells are reported as '-' in text output and null in JSON.`

	PDFListElementsDescription = `List every layout element of a page: text runs, lines, rectangles, curves and figures, each with its bounding box.

**When to use:** A table report was not recognized as expected and you need to see what the analyzer sees.

**Examples:**
• "Show the elements of page 1 of report.pdf"
• "Count the ruling lines on the first page" with format "json"`

	PDFMetadataDescription = `Read the document information dictionary of a PDF: title, author, subject, keywords, producer and dates, plus page count and file size.

**When to use:** Identifying who produced a report and when.`

	// Export Tools
	PDFExportTableDescription = `Analyze a table report page and write the result to an XLSX workbook with a Table sheet and a Legend sheet.

**When to use:** Handing report data to spreadsheet users or downstream tooling.

**Examples:**
• "Export page 0 of report.pdf to exports/report.xlsx"

**Best practices:** The output path is resolved inside the configured directory; missing parent directories are created.`

	PDFSavePageStreamDescription = `Save the decoded content stream of a page to a file.

**When to use:** Debugging how a report draws its grid and text, or diffing two report generators.

**Examples:**
• "Dump the content stream of page 0 of report.pdf to debug/page0.txt"`

	PDFExtractImagesDescription = `Extract the raster images of a page (stamps, signatures, logos) into a directory.

**When to use:** A report carries an embedded stamp or signature image that must be archived or checked.

**Examples:**
• "Save the images on page 0 of signed.pdf into images/signed"

**Best practices:** Files are named after the source PDF, the page index and the image resource name.`

	PDFMeasureOpeningDescription = `Time repeated extraction of a page and report each run and the average in milliseconds.

**When to use:** Checking whether a report generator produces pages that are slow to parse.

**Examples:**
• "How long does page 0 of big-report.pdf take to extract? Use 10 runs"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_list_reports":         PDFListReportsDescription,
	"pdf_server_info":          PDFServerInfoDescription,
	"pdf_validate_file":        PDFValidateFileDescription,
	"pdf_analyze_table_report": PDFAnalyzeTableReportDescription,
	"pdf_list_elements":        PDFListElementsDescription,
	"pdf_metadata":             PDFMetadataDescription,
	"pdf_export_table":         PDFExportTableDescription,
	"pdf_save_page_stream":     PDFSavePageStreamDescription,
	"pdf_extract_images":       PDFExtractImagesDescription,
	"pdf_measure_opening":      PDFMeasureOpeningDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
