package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that escape the configured directory
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator confines file access to one directory tree
type PathValidator struct {
	root     string
	realRoot string
}

// NewPathValidator creates a validator rooted at configuredDirectory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	root, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &PathValidator{
		root:     root,
		realRoot: resolveExisting(root),
	}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute, cleaned form of path after checking that it and
// its symlink target stay inside the configured directory. Relative paths are
// taken relative to the configured directory. The path need not exist.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	clean := filepath.Clean(path)

	if !v.within(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	if !v.within(resolveExisting(clean)) {
		return "", fmt.Errorf("%w: %s resolves outside", ErrOutsideDirectory, path)
	}
	return clean, nil
}

// ValidatePath reports whether path is inside the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

func (v *PathValidator) within(p string) bool {
	return isWithin(v.root, p) || isWithin(v.realRoot, p)
}

func isWithin(dir, p string) bool {
	if p == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(p, dir)
}

// resolveExisting evaluates symlinks on the longest existing prefix of p and
// re-appends the rest, so paths that do not exist yet still resolve.
func resolveExisting(p string) string {
	var rest []string
	current := p
	for {
		if _, err := os.Lstat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return p
			}
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved
		}
		parent := filepath.Dir(current)
		if parent == current {
			return p
		}
		rest = append(rest, filepath.Base(current))
		current = parent
	}
}
