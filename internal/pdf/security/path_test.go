package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator("relative/dir")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(v.Root()))
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "reports"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "reports", "a.pdf"), []byte("%PDF"), 0o600))

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.pdf"), []byte("%PDF"), 0o600))

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"absolute inside", filepath.Join(root, "reports", "a.pdf"), filepath.Join(root, "reports", "a.pdf"), false},
		{"relative inside", "reports/a.pdf", filepath.Join(root, "reports", "a.pdf"), false},
		{"root itself", root, root, false},
		{"missing output file", "out/stream.txt", filepath.Join(root, "out", "stream.txt"), false},
		{"dot segments", "reports/../reports/a.pdf", filepath.Join(root, "reports", "a.pdf"), false},
		{"null bytes stripped", "reports/a.pdf\x00", filepath.Join(root, "reports", "a.pdf"), false},
		{"empty", "", "", true},
		{"traversal", "../escape.pdf", "", true},
		{"absolute outside", filepath.Join(outside, "secret.pdf"), "", true},
		{"sibling prefix", root + "-other/file.pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Resolve(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, v.ValidatePath(tt.path))
		})
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF"), 0o600))

	link := filepath.Join(root, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	_, err = v.Resolve(link)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutsideDirectory)
}

func TestResolveSymlinkInside(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF"), 0o600))

	link := filepath.Join(root, "alias.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	got, err := v.Resolve("alias.pdf")
	require.NoError(t, err)
	assert.Equal(t, link, got)
}
