package controller

import (
	"net/http"

	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AdminTaxonomyController manages categories, subcategories and tags.
type AdminTaxonomyController struct {
	taxonomyService service.TaxonomyService
	catalogService  service.CatalogService
}

func NewAdminTaxonomyController(taxonomyService service.TaxonomyService, catalogService service.CatalogService) *AdminTaxonomyController {
	return &AdminTaxonomyController{
		taxonomyService: taxonomyService,
		catalogService:  catalogService,
	}
}

// ListCategories GET /api/v1/admin/categories
func (ctrl *AdminTaxonomyController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories()
	if err != nil {
		respondAdminError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// CreateCategory POST /api/v1/admin/categories
func (ctrl *AdminTaxonomyController) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}

	category, err := ctrl.taxonomyService.CreateCategory(req)
	if err != nil {
		respondAdminError(c, err, "create category")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory PUT /api/v1/admin/categories/:id
func (ctrl *AdminTaxonomyController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}

	category, err := ctrl.taxonomyService.UpdateCategory(id, req)
	if err != nil {
		respondAdminError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory refuses while products or subcategories still reference it
// DELETE /api/v1/admin/categories/:id
func (ctrl *AdminTaxonomyController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.taxonomyService.DeleteCategory(id); err != nil {
		respondAdminError(c, err, "delete category")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// ListSubcategories GET /api/v1/admin/subcategories?category_id=
func (ctrl *AdminTaxonomyController) ListSubcategories(c *gin.Context) {
	categoryID, err := queryUint(c, "category_id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category_id")
		return
	}

	subcategories, err := ctrl.catalogService.ListSubcategories(categoryID)
	if err != nil {
		respondAdminError(c, err, "list subcategories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategories": subcategories, "count": len(subcategories)})
}

// CreateSubcategory POST /api/v1/admin/subcategories
func (ctrl *AdminTaxonomyController) CreateSubcategory(c *gin.Context) {
	var req service.SubcategoryInput
	if !bindJSON(c, &req) {
		return
	}

	sub, err := ctrl.taxonomyService.CreateSubcategory(req)
	if err != nil {
		respondAdminError(c, err, "create subcategory")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subcategory": sub})
}

// UpdateSubcategory PUT /api/v1/admin/subcategories/:id
func (ctrl *AdminTaxonomyController) UpdateSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.SubcategoryInput
	if !bindJSON(c, &req) {
		return
	}

	sub, err := ctrl.taxonomyService.UpdateSubcategory(id, req)
	if err != nil {
		respondAdminError(c, err, "update subcategory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategory": sub})
}

// DeleteSubcategory DELETE /api/v1/admin/subcategories/:id
func (ctrl *AdminTaxonomyController) DeleteSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.taxonomyService.DeleteSubcategory(id); err != nil {
		respondAdminError(c, err, "delete subcategory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted"})
}

// ListTags GET /api/v1/admin/tags
func (ctrl *AdminTaxonomyController) ListTags(c *gin.Context) {
	tags, err := ctrl.catalogService.ListTags()
	if err != nil {
		respondAdminError(c, err, "list tags")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags, "count": len(tags)})
}

// CreateTag POST /api/v1/admin/tags
func (ctrl *AdminTaxonomyController) CreateTag(c *gin.Context) {
	var req service.TagInput
	if !bindJSON(c, &req) {
		return
	}

	tag, err := ctrl.taxonomyService.CreateTag(req)
	if err != nil {
		respondAdminError(c, err, "create tag")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// UpdateTag PUT /api/v1/admin/tags/:id
func (ctrl *AdminTaxonomyController) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.TagInput
	if !bindJSON(c, &req) {
		return
	}

	tag, err := ctrl.taxonomyService.UpdateTag(id, req)
	if err != nil {
		respondAdminError(c, err, "update tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag also drops the tag from every product
// DELETE /api/v1/admin/tags/:id
func (ctrl *AdminTaxonomyController) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.taxonomyService.DeleteTag(id); err != nil {
		respondAdminError(c, err, "delete tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
