package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore persists uploaded media and returns a public URL for it.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFor maps a URL returned by Put back to its key.
	KeyFor(url string) (string, bool)
}

// ErrInvalidImage marks uploads rejected for their type or size.
var ErrInvalidImage = errors.New("invalid image")

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// MaxImageSize caps banner and logo uploads.
const MaxImageSize = 5 * 1024 * 1024

// UploadImage stores a multipart image under prefix with a random name.
func UploadImage(ctx context.Context, store ObjectStore, fileHeader *multipart.FileHeader, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, ext)
	}
	if fileHeader.Size > MaxImageSize {
		return "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := strings.Trim(prefix, "/") + "/" + uuid.NewString() + ext
	return store.Put(ctx, key, contentType, file, fileHeader.Size)
}
