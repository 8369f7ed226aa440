package ports

import (
	"context"
	"io"
)

// FileStore is the hosted object-storage collaborator used for assignment
// attachments and course materials.
type FileStore interface {
	// Upload stores the object under path and returns its public URL.
	Upload(ctx context.Context, path string, contentType string, r io.Reader, size int64) (string, error)
	// PublicURL returns the public URL for an already stored object.
	PublicURL(path string) string
	// Remove deletes the object under path.
	Remove(ctx context.Context, path string) error
}
