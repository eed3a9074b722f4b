package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a stored export no longer exists.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore persists rendered exports by key.
type ObjectStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
