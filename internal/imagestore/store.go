// Package imagestore persists uploaded images and hands out opaque URIs
// (img://<uuid>). Only the assistant ever resolves a URI back into bytes;
// the rest of the application stores and forwards the reference untouched.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const uriScheme = "img://"

// ErrNotFound is returned when a URI does not resolve to a stored image.
var ErrNotFound = errors.New("image not found")

// mediaExt maps the accepted media types to file extensions.
var mediaExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store is a file-backed image store rooted at a single directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create root: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save persists data under a fresh opaque URI. Unknown media types are
// rejected before anything touches disk.
func (s *Store) Save(ctx context.Context, data []byte, mediaType string) (string, error) {
	ext, ok := mediaExt[mediaType]
	if !ok {
		return "", fmt.Errorf("imagestore: unsupported media type %q", mediaType)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := os.WriteFile(filepath.Join(s.dir, id+ext), data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write: %w", err)
	}
	return uriScheme + id, nil
}

// Load resolves a URI to its bytes and media type. Implements
// assistant.ImageResolver.
func (s *Store) Load(ctx context.Context, uri string) ([]byte, string, error) {
	id, ok := strings.CutPrefix(uri, uriScheme)
	if !ok || id == "" || strings.ContainsAny(id, "/\\.") {
		return nil, "", ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	for mediaType, ext := range mediaExt {
		data, err := os.ReadFile(filepath.Join(s.dir, id+ext))
		if err == nil {
			return data, mediaType, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("imagestore: read: %w", err)
		}
	}
	return nil, "", ErrNotFound
}
