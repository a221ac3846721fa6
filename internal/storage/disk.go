package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps uploads under a local root directory.  This is the
// default backend; the root doubles as the static file tree served under
// /uploads/.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	for _, dir := range []string{ProfileImageDir, MediaDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, err
		}
	}
	return &DiskStore{Root: root}, nil
}

// abs maps a stored relative path onto the root, refusing traversal out of
// it.
func (s *DiskStore) abs(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", errors.New("storage: path escapes upload root")
	}
	return filepath.Join(s.Root, clean), nil
}

func (s *DiskStore) Save(ctx context.Context, relPath string, r io.Reader, size int64, contentType string) (string, error) {
	dst, err := s.abs(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return relPath, nil
}

func (s *DiskStore) Delete(ctx context.Context, relPath string) error {
	dst, err := s.abs(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
