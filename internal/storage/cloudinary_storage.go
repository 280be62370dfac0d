package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStorage keys blobs by their Cloudinary public id (folder/uuid).
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (*UploadResult, error) {
	folder = strings.Trim(folder, "/")
	publicID := uuid.New().String()

	res, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary rejected %s: %s", filename, res.Error.Message)
	}

	logger.Debug("Image uploaded to Cloudinary", map[string]interface{}{
		"public_id":    res.PublicID,
		"content_type": contentType,
		"size":         size,
	})
	return &UploadResult{URL: res.SecureURL, Key: res.PublicID}, nil
}

func (s *CloudinaryStorage) PublicURL(key string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s",
		s.cld.Config.Cloud.CloudName, path.Clean(key))
}

func (s *CloudinaryStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
