package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	ProductImageFolder   = "products"
	CategoryImageFolder  = "categories"
	HomepageImageFolder  = "homepage"
	DefaultMaxImageBytes = 5 * 1024 * 1024
)

var (
	ErrFileTooLarge       = errors.New("file exceeds the maximum allowed size")
	ErrContentTypeBlocked = errors.New("content type is not allowed")
	ErrPresignUnsupported = errors.New("storage provider does not support presigned uploads")
)

// AllowedImageTypes maps accepted image content types to the extension used for the stored key.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadResult is what callers keep about a stored blob.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

// BlobStorage stores product and site images.
type BlobStorage interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (*UploadResult, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by providers that let the browser upload directly.
type Presigner interface {
	PresignUpload(ctx context.Context, folder, filename, contentType string) (*PresignedURLResponse, error)
}

// ObjectKey builds <folder>/<uuid><ext>. The extension follows the content type when known.
func ObjectKey(folder, filename, contentType string) string {
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

func ValidateFileSize(size, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, maxSize)
	}
	return nil
}

func ValidateImageContentType(contentType string) error {
	if _, ok := AllowedImageTypes[contentType]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrContentTypeBlocked, contentType)
}
