package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator checks that a file is a readable PDF within the size limit
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given size limit in bytes
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile reports validation problems in the result, not as an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{Path: req.Path}

	pages, err := v.validate(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // invalid files are a result, not a failure
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// Check returns the file info of a valid PDF without parsing it.
func (v *Validator) Check(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := v.ValidateFileInfo(filePath, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (v *Validator) validate(filePath string) (int, error) {
	if _, err := v.Check(filePath); err != nil {
		return 0, err
	}

	var pages int
	err := withReader(filePath, func(r *pdf.Reader) error {
		pages = r.NumPage()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	if pages == 0 {
		return 0, fmt.Errorf("invalid PDF file: no pages")
	}
	return pages, nil
}

// ValidateFileInfo performs the checks that need no parsing
func (v *Validator) ValidateFileInfo(filePath string, info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if !isPDFName(filePath) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}
	if info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}
	return nil
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
