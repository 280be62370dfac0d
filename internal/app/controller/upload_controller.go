package controller

import (
	"errors"
	"net/http"

	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/ashascraft/storefront-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	uploadService service.UploadService
}

func NewUploadController(uploadService service.UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

type PresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required,notblank"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"`
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrContentTypeBlocked):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Images must be 5MB or smaller")
	case errors.Is(err, service.ErrUploadFolderNotAllowed):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown upload folder")
	case errors.Is(err, storage.ErrPresignUnsupported):
		apperrors.BadRequest(c, apperrors.UploadFailed, "Direct uploads are not available with the current storage provider")
	case errors.Is(err, service.ErrStorageUnavailable):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "Image storage is not configured")
	default:
		middleware.GetLoggerFromContext(c).Error("Upload failed", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Upload failed. Please try again")
	}
}

// UploadImage stores an image and returns its public url and key
// POST /api/v1/admin/uploads/images
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("Upload without file", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Choose an image to upload")
		return
	}

	result, err := ctrl.uploadService.UploadImage(c.Request.Context(), c.PostForm("folder"), file)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GeneratePresignedURL returns a url the browser can PUT the image to
// POST /api/v1/admin/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	var req PresignedURLRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := ctrl.uploadService.PresignImageUpload(c.Request.Context(), req.Folder, req.Filename, req.ContentType)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
