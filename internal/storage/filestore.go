package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for the file store.
var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// FileStore keeps uploaded documents flat under a single root directory.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store directory.
func (s *FileStore) Root() string {
	return s.root
}

// Save sanitizes desiredName, writes r under the root and returns the stored
// name. Content goes to a temp file first and is renamed into place, so a
// reader never sees a partial file. An existing file with the same name is
// replaced.
func (s *FileStore) Save(r io.Reader, desiredName string) (string, error) {
	name := SecureFilename(desiredName)
	if name == "" {
		return "", ErrInvalidName
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("move file into place: %w", err)
	}
	return name, nil
}

// storedName reports whether name can be a file Save produced. Dot names,
// which include in-flight temp files, never are.
func storedName(name string) bool {
	return fs.ValidPath(name) && filepath.Base(name) == name && !strings.HasPrefix(name, ".")
}

// Open returns the named file for reading. Names that are not a plain stored
// entry of the root, including anything that would escape it, report
// ErrNotFound. The caller must close the file.
func (s *FileStore) Open(name string) (*os.File, fs.FileInfo, error) {
	if !storedName(name) {
		return nil, nil, ErrNotFound
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		return nil, nil, fmt.Errorf("open upload dir: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// Delete removes the named file. A missing file is not an error.
func (s *FileStore) Delete(name string) error {
	if !storedName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
