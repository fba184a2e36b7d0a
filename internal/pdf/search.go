package pdf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// listReports walks directory for valid PDF files, skipping hidden
// subdirectories. query filters case-insensitively on the file name; a
// positive limit stops the walk once that many files are found.
func (v *Validator) listReports(directory, query string, limit int) ([]FileInfo, error) {
	info, err := os.Stat(directory)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", directory)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	files := []FileInfo{}

	err = filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil //nolint:nilerr // keep walking
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != directory {
				return filepath.SkipDir
			}
			return nil
		}
		if limit > 0 && len(files) >= limit {
			return filepath.SkipAll
		}
		if !isPDFName(d.Name()) {
			return nil
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Name()), query) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished during the walk
		}
		if !fi.Mode().IsRegular() || v.ValidateFileInfo(path, fi) != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         fi.Name(),
			Size:         fi.Size(),
			ModifiedTime: fi.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}
	return files, nil
}
