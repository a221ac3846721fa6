// Package storage abstracts where uploaded files live.  The application
// addresses every file by a relative path like "media/<name>" or
// "profile-images/<name>"; backends decide what that maps to on disk or in
// an object store.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Namespaces under the upload root.  Paths outside these never reach the
// blob store.
const (
	ProfileImageDir = "profile-images"
	MediaDir        = "media"
)

// BlobStore is the file storage contract consumed by handlers and the
// account deletion cascade.
type BlobStore interface {
	// Save writes the content under relPath and returns the stored path.
	Save(ctx context.Context, relPath string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes a stored file.  Deleting a path that does not exist
	// is not an error.
	Delete(ctx context.Context, relPath string) error
}

// ObjectName builds a collision-free stored name for an upload, keeping the
// original extension so content sniffing downstream stays trivial.
func ObjectName(dir, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return dir + "/" + uuid.NewString() + ext
}
