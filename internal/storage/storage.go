package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage is the upload area that media records point into.
type Storage struct {
	validator *PathValidator
}

func (s *Storage) RootAbs() string {
	return s.validator.RootAbs()
}

func New(root string) (*Storage, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}

	return &Storage{validator: validator}, nil
}

func (s *Storage) Resolve(storedPath string) (string, error) {
	return s.validator.ResolvePath(storedPath)
}

// RemoveIfExists deletes the file a media record points at. A file that is
// already gone counts as removed.
func (s *Storage) RemoveIfExists(storedPath string) error {
	resolved, err := s.Resolve(storedPath)
	if err != nil {
		return err
	}
	if resolved == s.RootAbs() {
		return fmt.Errorf("remove %q: refusing to remove upload root", storedPath)
	}

	info, err := os.Lstat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", storedPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("remove %q: path is a directory", storedPath)
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", storedPath, err)
	}

	return nil
}

// Exists reports whether a stored path currently names a regular file.
func (s *Storage) Exists(storedPath string) (bool, error) {
	resolved, err := s.Resolve(storedPath)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return info.Mode().IsRegular(), nil
}

// StoredFile is one regular file found under the upload root.
type StoredFile struct {
	Path    string
	Size    int64
	ModTime int64
}

// Walk visits every regular file under the upload root. Paths are slash
// separated and relative to the root, the same form media records store.
func (s *Storage) Walk(fn func(StoredFile) error) error {
	root := s.RootAbs()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return fn(StoredFile{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
	})
}

// WriteFile is used by seeding and tests to place a file under the root.
func (s *Storage) WriteFile(storedPath string, data []byte) error {
	resolved, err := s.Resolve(storedPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", storedPath, err)
	}

	return nil
}
