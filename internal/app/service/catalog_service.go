package service

import (
	"errors"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const (
	defaultProductPageSize = 24
	maxProductPageSize     = 100
	defaultFeaturedLimit   = 8
	relatedProductsLimit   = 4
)

type CatalogService interface {
	ListCategories() ([]model.Category, error)
	GetCategoryBySlug(slug string) (*model.Category, []model.Product, error)
	ListSubcategories(categoryID *uint) ([]model.Subcategory, error)
	ListTags() ([]model.Tag, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProductBySlug(slug string) (*model.Product, error)
	GetRelatedProducts(slug string) ([]model.Product, error)
	GetFeaturedProducts(limit int) ([]model.Product, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
	}
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *catalogService) GetCategoryBySlug(slug string) (*model.Category, []model.Product, error) {
	category, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}

	products, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		CategoryID: &category.ID,
		SortBy:     repository.ProductSortNewest,
		Limit:      maxProductPageSize,
	})
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}

func (s *catalogService) ListSubcategories(categoryID *uint) ([]model.Subcategory, error) {
	return s.categoryRepo.FindSubcategories(categoryID)
}

func (s *catalogService) ListTags() ([]model.Tag, error) {
	return s.tagRepo.FindAll()
}

// ListProducts returns one page and the total matching the filter.
// Unknown taxonomy slugs simply match nothing.
func (s *catalogService) ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultProductPageSize
	}
	if filter.Limit > maxProductPageSize {
		filter.Limit = maxProductPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if !filter.SortBy.Valid() {
		filter.SortBy = repository.ProductSortNewest
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(filter)
	if err != nil {
		return nil, 0, err
	}

	logger.Debug("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (s *catalogService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// GetRelatedProducts returns in-stock products from the same category, never the product itself.
func (s *catalogService) GetRelatedProducts(slug string) ([]model.Product, error) {
	product, err := s.GetProductBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []model.Product{}, nil
	}

	return s.productRepo.FindWithFilter(repository.ProductFilter{
		CategoryID:  product.CategoryID,
		ExcludeID:   product.ID,
		InStockOnly: true,
		SortBy:      repository.ProductSortNewest,
		Limit:       relatedProductsLimit,
	})
}

func (s *catalogService) GetFeaturedProducts(limit int) ([]model.Product, error) {
	if limit <= 0 || limit > maxProductPageSize {
		limit = defaultFeaturedLimit
	}
	return s.productRepo.FindWithFilter(repository.ProductFilter{
		FeaturedOnly: true,
		SortBy:       repository.ProductSortNewest,
		Limit:        limit,
	})
}
