package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CatalogController serves the public storefront catalog.
type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListCategories returns all categories with their subcategories
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.catalogService.ListCategories()
	if err != nil {
		log.Error("Failed to fetch categories", err, nil)
		apperrors.ParseAndRespond(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategory returns a category, its subcategories and products
// GET /api/v1/categories/:slug
func (ctrl *CatalogController) GetCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	category, products, err := ctrl.catalogService.GetCategoryBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			log.Warn("Category not found", map[string]interface{}{
				"slug": slug,
			})
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to fetch category", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, err, "get category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"products": products,
	})
}

// ListSubcategories returns subcategories, optionally of one category
// GET /api/v1/subcategories?category_id=
func (ctrl *CatalogController) ListSubcategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categoryID, err := queryUint(c, "category_id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category_id")
		return
	}

	subcategories, err := ctrl.catalogService.ListSubcategories(categoryID)
	if err != nil {
		log.Error("Failed to fetch subcategories", err, nil)
		apperrors.ParseAndRespond(c, err, "list subcategories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subcategories": subcategories,
		"count":         len(subcategories),
	})
}

// ListTags returns every tag
// GET /api/v1/tags
func (ctrl *CatalogController) ListTags(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	tags, err := ctrl.catalogService.ListTags()
	if err != nil {
		log.Error("Failed to fetch tags", err, nil)
		apperrors.ParseAndRespond(c, err, "list tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// productFilterFromQuery reads the storefront product filters shared by public and admin listings.
func productFilterFromQuery(c *gin.Context) (repository.ProductFilter, bool) {
	filter := repository.ProductFilter{
		CategorySlug:    strings.TrimSpace(c.Query("category")),
		SubcategorySlug: strings.TrimSpace(c.Query("subcategory")),
		TagSlug:         strings.TrimSpace(c.Query("tag")),
		Search:          strings.TrimSpace(c.Query("search")),
		FeaturedOnly:    queryBool(c, "featured"),
		InStockOnly:     queryBool(c, "in_stock"),
		SortBy:          repository.ProductSort(c.DefaultQuery("sort", string(repository.ProductSortNewest))),
	}

	var err error
	if filter.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "min_price must be a number")
		return filter, false
	}
	if filter.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "max_price must be a number")
		return filter, false
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "min_price cannot exceed max_price")
		return filter, false
	}
	if !filter.SortBy.Valid() {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "sort must be one of newest, price-low, price-high, popular")
		return filter, false
	}

	if raw := c.Query("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "limit must be a positive number")
			return filter, false
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if filter.Offset, err = strconv.Atoi(raw); err != nil || filter.Offset < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "offset must be a positive number")
			return filter, false
		}
	}
	return filter, true
}

// ListProducts returns one page of products matching the filters
// GET /api/v1/products
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, ok := productFilterFromQuery(c)
	if !ok {
		return
	}

	products, total, err := ctrl.catalogService.ListProducts(filter)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.ParseAndRespond(c, err, "list products")
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
		"total": total,
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"total":    total,
		"offset":   filter.Offset,
	})
}

// ListFeatured returns featured products for the home page
// GET /api/v1/products/featured
func (ctrl *CatalogController) ListFeatured(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := ctrl.catalogService.GetFeaturedProducts(limit)
	if err != nil {
		log.Error("Failed to fetch featured products", err, nil)
		apperrors.ParseAndRespond(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a product by slug
// GET /api/v1/products/:slug
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	product, err := ctrl.catalogService.GetProductBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"slug": slug,
			})
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// ListRelated returns in-stock products from the same category
// GET /api/v1/products/:slug/related
func (ctrl *CatalogController) ListRelated(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	products, err := ctrl.catalogService.GetRelatedProducts(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch related products", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}
