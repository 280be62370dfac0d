package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/storage"
	"github.com/ashascraft/storefront-backend/pkg/logger"
)

var (
	ErrUploadFolderNotAllowed = errors.New("upload folder is not allowed")
	ErrStorageUnavailable     = errors.New("image storage is not configured")
)

var uploadFolders = map[string]bool{
	storage.ProductImageFolder:  true,
	storage.CategoryImageFolder: true,
	storage.HomepageImageFolder: true,
}

type UploadService interface {
	UploadImage(ctx context.Context, folder string, file *multipart.FileHeader) (*storage.UploadResult, error)
	PresignImageUpload(ctx context.Context, folder, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type uploadService struct {
	blobs   storage.BlobStorage
	maxSize int64
}

func NewUploadService(blobs storage.BlobStorage, maxSize int64) UploadService {
	if maxSize <= 0 {
		maxSize = storage.DefaultMaxImageBytes
	}
	return &uploadService{blobs: blobs, maxSize: maxSize}
}

func resolveFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return storage.ProductImageFolder, nil
	}
	if !uploadFolders[folder] {
		return "", ErrUploadFolderNotAllowed
	}
	return folder, nil
}

func (s *uploadService) UploadImage(ctx context.Context, folder string, file *multipart.FileHeader) (*storage.UploadResult, error) {
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}
	folder, err := resolveFolder(folder)
	if err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	if err := storage.ValidateImageContentType(contentType); err != nil {
		return nil, err
	}
	if err := storage.ValidateFileSize(file.Size, s.maxSize); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	defer src.Close()

	result, err := s.blobs.Upload(ctx, folder, file.Filename, contentType, src, file.Size)
	if err != nil {
		logger.Error("Image upload failed", err, map[string]interface{}{
			"folder":   folder,
			"filename": file.Filename,
		})
		return nil, err
	}

	logger.Info("Image uploaded", map[string]interface{}{
		"key":  result.Key,
		"size": file.Size,
	})
	return result, nil
}

func (s *uploadService) PresignImageUpload(ctx context.Context, folder, filename, contentType string) (*storage.PresignedURLResponse, error) {
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}
	presigner, ok := s.blobs.(storage.Presigner)
	if !ok {
		return nil, storage.ErrPresignUnsupported
	}
	folder, err := resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	if err := storage.ValidateImageContentType(contentType); err != nil {
		return nil, err
	}
	return presigner.PresignUpload(ctx, folder, filename, contentType)
}
