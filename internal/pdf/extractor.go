package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/pdf/contentstream"
)

// DefaultRunGapRatio is the default glyph gap, in font sizes, that still joins a text run
const DefaultRunGapRatio = 1.0

// ExtractorOptions tunes element extraction
type ExtractorOptions struct {
	RunGapRatio float64
}

// DefaultExtractorOptions returns the extraction defaults
func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{RunGapRatio: DefaultRunGapRatio}
}

// Extractor turns one PDF page into layout elements. Graphics come from the
// page content stream read with pdfcpu, text runs from ledongthuc/pdf.
type Extractor struct {
	opts ExtractorOptions
}

// NewExtractor creates an extractor. A non-positive gap ratio falls back to the default.
func NewExtractor(opts ExtractorOptions) *Extractor {
	if opts.RunGapRatio <= 0 {
		opts.RunGapRatio = DefaultRunGapRatio
	}
	return &Extractor{opts: opts}
}

// PageElements returns the graphics of page index in painting order followed
// by its text runs in content order.
func (e *Extractor) PageElements(path string, index int) ([]layout.Element, error) {
	graphics, err := e.Graphics(path, index)
	if err != nil {
		return nil, err
	}
	texts, err := e.Texts(path, index)
	if err != nil {
		return nil, err
	}
	return append(graphics, texts...), nil
}

// Graphics returns the lines, rectangles, curves and figures painted on a page.
func (e *Extractor) Graphics(path string, index int) ([]layout.Element, error) {
	var elements []layout.Element
	err := withContext(path, false, func(ctx *model.Context) error {
		r, err := pageContent(ctx, index)
		if err != nil {
			return err
		}
		elements, err = contentstream.Scan(r)
		if err != nil {
			return fmt.Errorf("failed to scan content stream: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, extractError("extract graphics", path, index, err)
	}
	return elements, nil
}

// Texts returns the text runs of a page.
func (e *Extractor) Texts(path string, index int) ([]layout.Element, error) {
	var elements []layout.Element
	err := withReader(path, func(r *pdf.Reader) error {
		nr, err := pageNumber(index, r.NumPage())
		if err != nil {
			return err
		}
		page := r.Page(nr)
		if page.V.IsNull() {
			return ErrNoContent
		}
		elements = TextRuns(page.Content().Text, e.opts.RunGapRatio)
		return nil
	})
	if err != nil {
		return nil, extractError("extract text", path, index, err)
	}
	return elements, nil
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount(path string) (int, error) {
	var count int
	err := withContext(path, false, func(ctx *model.Context) error {
		count = ctx.PageCount
		return nil
	})
	if err != nil {
		return 0, extractError("count pages", path, noPage, err)
	}
	return count, nil
}

// pageContent returns the decoded content stream of page index. Pages
// without a content stream yield an empty reader.
func pageContent(ctx *model.Context, index int) (io.Reader, error) {
	nr, err := pageNumber(index, ctx.PageCount)
	if err != nil {
		return nil, err
	}
	r, err := pdfcpu.ExtractPageContent(ctx, nr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page content: %w", err)
	}
	if r == nil {
		return bytes.NewReader(nil), nil
	}
	return r, nil
}
