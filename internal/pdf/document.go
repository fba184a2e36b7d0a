package pdf

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// withContext parses path with pdfcpu and calls fn while the file is open.
// optimize also runs the optimizer, which image extraction depends on.
func withContext(path string, optimize bool, fn func(*model.Context) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var ctx *model.Context
	if optimize {
		ctx, err = api.ReadValidateAndOptimize(file, conf)
	} else {
		ctx, err = api.ReadContext(file, conf)
	}
	if err != nil {
		return fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("failed to ensure page count: %w", err)
	}
	return fn(ctx)
}

// withReader opens path with ledongthuc/pdf and calls fn. The library panics
// on some malformed input; panics are returned as errors.
func withReader(path string, fn func(*pdf.Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return fn(r)
}
