package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrPageOutOfRange is returned for a page index outside the document
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrNoContent is returned when a page has no content stream
	ErrNoContent = errors.New("page has no content")
)

// ExtractError records the operation, file and page that failed
type ExtractError struct {
	Op   string
	Path string
	Page int
	Err  error
}

func (e *ExtractError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s page %d: %v", e.Op, e.Path, e.Page, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// noPage marks an ExtractError that concerns the whole document
const noPage = -1

func extractError(op, path string, page int, err error) error {
	if err == nil {
		return nil
	}
	return &ExtractError{Op: op, Path: path, Page: page, Err: err}
}

// pageNumber converts a 0-based page index to pdf's 1-based page number.
func pageNumber(index, count int) (int, error) {
	if index < 0 || index >= count {
		return 0, fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, index, count)
	}
	return index + 1, nil
}
