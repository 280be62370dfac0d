package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const maxSettingsBody = 1 << 20

type SettingsController struct {
	settingsService service.SettingsService
}

func NewSettingsController(settingsService service.SettingsService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
	}
}

// GetPublic returns the site settings the storefront renders
// GET /api/v1/settings
func (ctrl *SettingsController) GetPublic(c *gin.Context) {
	ctrl.respondSettings(c)
}

// GetAll returns every settings section for the admin console
// GET /api/v1/admin/settings
func (ctrl *SettingsController) GetAll(c *gin.Context) {
	ctrl.respondSettings(c)
}

func (ctrl *SettingsController) respondSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	settings, err := ctrl.settingsService.Load()
	if err != nil {
		log.Error("Failed to load settings", err, nil)
		apperrors.InternalError(c, "Could not load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSection replaces one settings section
// PUT /api/v1/admin/settings/:section
func (ctrl *SettingsController) UpdateSection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	section := model.SettingsSection(c.Param("section"))

	if !section.Valid() {
		apperrors.NotFound(c, apperrors.SettingsUnknownSection, "Unknown settings section")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsBody))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Could not read request body")
		return
	}

	settings, err := ctrl.settingsService.UpdateSection(section, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSettingsSection):
			apperrors.NotFound(c, apperrors.SettingsUnknownSection, "Unknown settings section")
		case errors.Is(err, service.ErrInvalidSettings):
			log.Warn("Invalid settings update", map[string]interface{}{
				"section": section,
				"error":   err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		default:
			log.Error("Failed to update settings", err, map[string]interface{}{
				"section": section,
			})
			apperrors.ParseAndRespond(c, err, "update settings")
		}
		return
	}

	log.Info("Settings updated", map[string]interface{}{
		"section": section,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings saved",
		"settings": settings,
	})
}
