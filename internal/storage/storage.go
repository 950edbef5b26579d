// server/internal/storage/storage.go
package storage

import (
	"context"
	"io"
)

// MediaStore persists one binary object under an object key and returns
// a reference a client can fetch it from.
type MediaStore interface {
	Save(ctx context.Context, objectKey string, body io.Reader) (string, error)
}
