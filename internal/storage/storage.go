// Package storage persists harvested assets in an object store.
package storage

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when an object key is empty.
var ErrEmptyKey = errors.New("object key is empty")

// ObjectStore writes an object, makes it publicly readable and returns its
// public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
