package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	outputFilePerm = 0o600
	outputDirPerm  = 0o750
)

// savePageStream copies the decoded content stream of a page to output.
func savePageStream(path string, index int, output string) (int64, error) {
	var written int64
	err := withContext(path, false, func(ctx *model.Context) error {
		r, err := pageContent(ctx, index)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(output), outputDirPerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePerm)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}

		written, err = io.Copy(f, r)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write content stream: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, extractError("save page stream", path, index, err)
	}
	return written, nil
}
