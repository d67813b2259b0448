// Package filex adapts local files for upload and download.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalFile is a regular file on disk offered for upload. Its size is taken
// when it is opened with OpenLocal.
type LocalFile struct {
	path string
	name string
	size int64
}

// OpenLocal stats path and returns a LocalFile for it. Directories are refused.
func OpenLocal(path string) (*LocalFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &LocalFile{path: path, name: filepath.Base(path), size: fi.Size()}, nil
}

// OpenAll calls OpenLocal for every path and stops at the first failure.
func OpenAll(paths []string) ([]*LocalFile, error) {
	out := make([]*LocalFile, 0, len(paths))
	for _, p := range paths {
		f, err := OpenLocal(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (f *LocalFile) Name() string { return f.name }
func (f *LocalFile) Size() int64  { return f.size }
func (f *LocalFile) Path() string { return f.path }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}
