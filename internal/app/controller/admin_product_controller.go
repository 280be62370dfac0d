package controller

import (
	"net/http"

	"github.com/ashascraft/storefront-backend/internal/app/service"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AdminProductController manages products from the admin console.
type AdminProductController struct {
	productService service.ProductService
}

func NewAdminProductController(productService service.ProductService) *AdminProductController {
	return &AdminProductController{
		productService: productService,
	}
}

type SetPrimaryImageRequest struct {
	ImageID uint `json:"image_id" binding:"required"`
}

// ListProducts returns products with the storefront filters
// GET /api/v1/admin/products
func (ctrl *AdminProductController) ListProducts(c *gin.Context) {
	filter, ok := productFilterFromQuery(c)
	if !ok {
		return
	}

	products, total, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		respondAdminError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"total":    total,
	})
}

// GetProduct returns a product by id
// GET /api/v1/admin/products/:id
func (ctrl *AdminProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		respondAdminError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a product with its images and tags
// POST /api/v1/admin/products
func (ctrl *AdminProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.CreateProduct(req)
	if err != nil {
		respondAdminError(c, err, "create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created",
		"product": product,
	})
}

// UpdateProduct saves an edited draft. The draft must carry the version it was loaded at.
// PUT /api/v1/admin/products/:id
func (ctrl *AdminProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.ProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		log.Warn("Product update refused", map[string]interface{}{
			"product_id": id,
			"version":    req.Version,
			"error":      err.Error(),
		})
		respondAdminError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated",
		"product": product,
	})
}

// SetPrimaryImage marks one of the product's images as primary
// PUT /api/v1/admin/products/:id/primary-image
func (ctrl *AdminProductController) SetPrimaryImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetPrimaryImageRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.SetPrimaryImage(id, req.ImageID)
	if err != nil {
		respondAdminError(c, err, "set primary image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct removes a product, its images and tag links
// DELETE /api/v1/admin/products/:id
func (ctrl *AdminProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondAdminError(c, err, "delete product")
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted",
	})
}
