package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// TempTree is a scratch directory tree for archiving tests
type TempTree struct {
	Fs   afero.Fs
	Path string
	T    *testing.T
}

// NewTempTree creates an empty tree in a temporary directory on disk
func NewTempTree(t *testing.T) *TempTree {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "reportzip-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	return &TempTree{
		Fs:   afero.NewOsFs(),
		Path: tmpDir,
		T:    t,
	}
}

// NewMemTree creates an empty tree rooted at /src on an in-memory filesystem
func NewMemTree(t *testing.T) *TempTree {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/src", 0755); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}

	return &TempTree{
		Fs:   fs,
		Path: "/src",
		T:    t,
	}
}

// Cleanup removes the tree
func (tt *TempTree) Cleanup() {
	tt.T.Helper()
	if err := tt.Fs.RemoveAll(tt.Path); err != nil {
		tt.T.Errorf("failed to cleanup temp tree: %v", err)
	}
}

// Join returns the filesystem path of a slash-separated name inside the tree
func (tt *TempTree) Join(name string) string {
	return filepath.Join(tt.Path, filepath.FromSlash(name))
}

// CreateFile writes a file, creating parent directories as needed
func (tt *TempTree) CreateFile(name, content string) {
	tt.T.Helper()
	path := tt.Join(name)
	if err := tt.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tt.T.Fatalf("failed to create directory: %v", err)
	}
	if err := afero.WriteFile(tt.Fs, path, []byte(content), 0644); err != nil {
		tt.T.Fatalf("failed to create file: %v", err)
	}
}

// CreateDir creates a directory and its parents
func (tt *TempTree) CreateDir(name string) {
	tt.T.Helper()
	if err := tt.Fs.MkdirAll(tt.Join(name), 0755); err != nil {
		tt.T.Fatalf("failed to create directory: %v", err)
	}
}

// Chdir switches the working directory to the tree and restores it on cleanup
func (tt *TempTree) Chdir() {
	tt.T.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		tt.T.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tt.Path); err != nil {
		tt.T.Fatalf("failed to change directory: %v", err)
	}
	tt.T.Cleanup(func() { os.Chdir(oldWd) })
}
