// Package storage is a small filesystem abstraction with a local and an
// S3-compatible driver. The storefront keeps product images and exported
// sales reports on the default disk.
//
//	storage.Connect()
//	url, err := storage.Default().Put(ctx, "relatorios/vendas.csv", data, "text/csv")
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// ErrInvalidPath is returned for absolute paths or paths escaping the root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is implemented by every driver.
type Disk interface {
	// Put writes content to p, creating parents as needed.
	Put(ctx context.Context, p string, content []byte, contentType string) error
	Get(ctx context.Context, p string) ([]byte, error)
	Exists(ctx context.Context, p string) (bool, error)
	// Delete removes p. Deleting a missing file is not an error.
	Delete(ctx context.Context, p string) error
	// URL returns the public URL for p.
	URL(p string) string
}

// clean normalises a disk-relative path and rejects escapes.
func clean(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidPath
	}
	return c, nil
}
