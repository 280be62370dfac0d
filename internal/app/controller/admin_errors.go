package controller

import (
	"errors"

	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondAdminError maps catalog and order sentinels to responses. Anything unknown
// is logged and parsed for a client-safe message.
func respondAdminError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
	case errors.Is(err, service.ErrSubcategoryNotFound):
		apperrors.NotFound(c, apperrors.SubcategoryNotFound, "Subcategory not found")
	case errors.Is(err, service.ErrTagNotFound):
		apperrors.NotFound(c, apperrors.TagNotFound, "Tag not found")
	case errors.Is(err, service.ErrImageNotFound):
		apperrors.NotFound(c, apperrors.ImageNotFound, "Image not found")
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrVersionConflict):
		apperrors.Conflict(c, apperrors.ProductStale, "This product was changed by someone else. Reload and try again")
	case errors.Is(err, service.ErrSlugTaken):
		apperrors.Conflict(c, apperrors.SlugAlreadyExists, "That slug is already in use")
	case errors.Is(err, service.ErrResourceInUse):
		apperrors.Conflict(c, apperrors.ResourceInUse, "It is still used by products or subcategories")
	case errors.Is(err, service.ErrSubcategoryMismatch):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Subcategory does not belong to the chosen category")
	case errors.Is(err, service.ErrInvalidProduct), errors.Is(err, service.ErrInvalidTaxonomy):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	case errors.Is(err, service.ErrInvalidOrderStatus):
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
	default:
		middleware.GetLoggerFromContext(c).Error("Admin request failed", err, map[string]interface{}{
			"operation": context,
		})
		apperrors.ParseAndRespond(c, err, context)
	}
}
