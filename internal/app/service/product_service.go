package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/storage"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/ashascraft/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrVersionConflict     = errors.New("product was changed by someone else")
	ErrSlugTaken           = errors.New("slug already in use")
	ErrImageNotFound       = errors.New("image not found")
	ErrInvalidProduct      = errors.New("invalid product")
	ErrSubcategoryMismatch = errors.New("subcategory does not belong to category")
)

type ProductImageInput struct {
	ID         uint   `json:"id"`
	URL        string `json:"url" binding:"required"`
	StorageKey string `json:"storage_key"`
	IsPrimary  bool   `json:"is_primary"`
}

// ProductInput is an admin draft. Images are kept in the order given.
type ProductInput struct {
	Title            string              `json:"title" binding:"required,notblank"`
	Slug             string              `json:"slug"`
	Price            float64             `json:"price" binding:"gte=0"`
	ComparePrice     *float64            `json:"compare_price" binding:"omitempty,gte=0"`
	ShortDescription string              `json:"short_description"`
	LongDescription  string              `json:"long_description"`
	CategoryID       *uint               `json:"category_id"`
	SubcategoryID    *uint               `json:"subcategory_id"`
	StockQty         int                 `json:"stock_qty" binding:"gte=0"`
	InStock          *bool               `json:"in_stock"`
	Featured         bool                `json:"featured"`
	Images           []ProductImageInput `json:"images" binding:"dive"`
	TagIDs           []uint              `json:"tag_ids"`
	Version          int                 `json:"version"`
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProduct(id uint) (*model.Product, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	SetPrimaryImage(productID, imageID uint) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	blobs        storage.BlobStorage
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	blobs storage.BlobStorage,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		blobs:        blobs,
	}
}

func mapProductErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrStaleVersion):
		return ErrVersionConflict
	case repository.IsDuplicateKey(err):
		return ErrSlugTaken
	}
	return err
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error) {
	if filter.Limit <= 0 || filter.Limit > maxProductPageSize {
		filter.Limit = maxProductPageSize
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
	return products, total, nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	return product, nil
}

// validateTaxonomy checks that referenced category, subcategory and tags exist and agree.
func (s *productService) validateTaxonomy(input ProductInput) error {
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	if input.SubcategoryID != nil {
		sub, err := s.categoryRepo.FindSubcategoryByID(*input.SubcategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubcategoryNotFound
			}
			return err
		}
		if input.CategoryID == nil || sub.CategoryID != *input.CategoryID {
			return ErrSubcategoryMismatch
		}
	}
	if len(input.TagIDs) > 0 {
		tags, err := s.tagRepo.FindByIDs(input.TagIDs)
		if err != nil {
			return err
		}
		if len(tags) != len(uniqueIDs(input.TagIDs)) {
			return ErrTagNotFound
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func buildImages(inputs []ProductImageInput) []model.ProductImage {
	images := make([]model.ProductImage, 0, len(inputs))
	for i, in := range inputs {
		url := strings.TrimSpace(in.URL)
		if url == "" {
			continue
		}
		images = append(images, model.ProductImage{
			ID:         in.ID,
			URL:        url,
			StorageKey: in.StorageKey,
			IsPrimary:  in.IsPrimary,
			SortOrder:  i,
		})
	}
	model.NormalizePrimary(images)
	return images
}

func (input ProductInput) apply(p *model.Product) error {
	p.Title = strings.TrimSpace(input.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if input.Price < 0 || input.StockQty < 0 {
		return fmt.Errorf("%w: price and stock must not be negative", ErrInvalidProduct)
	}
	p.Price = input.Price
	p.ComparePrice = input.ComparePrice
	p.ShortDescription = strings.TrimSpace(input.ShortDescription)
	p.LongDescription = input.LongDescription
	p.CategoryID = input.CategoryID
	p.SubcategoryID = input.SubcategoryID
	p.StockQty = input.StockQty
	if input.InStock != nil {
		p.InStock = *input.InStock
	} else {
		p.InStock = input.StockQty > 0
	}
	p.Featured = input.Featured
	p.Images = buildImages(input.Images)
	return nil
}

// uniqueSlug appends -2, -3, ... to a derived slug until it is free.
func (s *productService) uniqueSlug(base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		taken, err := s.productRepo.SlugExists(slug, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	product := &model.Product{Version: 1}
	if err := input.apply(product); err != nil {
		return nil, err
	}
	if err := s.validateTaxonomy(input); err != nil {
		return nil, err
	}

	if explicit := util.Slugify(input.Slug); explicit != "" {
		taken, err := s.productRepo.SlugExists(explicit, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		product.Slug = explicit
	} else {
		base := util.Slugify(product.Title)
		if base == "" {
			return nil, fmt.Errorf("%w: title has no usable characters for a slug", ErrInvalidProduct)
		}
		slug, err := s.uniqueSlug(base)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}

	if err := s.productRepo.Create(product, uniqueIDs(input.TagIDs)); err != nil {
		return nil, mapProductErr(err)
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.GetProduct(product.ID)
}

// UpdateProduct saves the draft only when input.Version is still current.
// The slug changes only when the draft sends one.
func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	if input.Version < 1 {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidProduct)
	}

	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	if existing.Version != input.Version {
		return nil, ErrVersionConflict
	}

	product := &model.Product{ID: id, Slug: existing.Slug}
	if err := input.apply(product); err != nil {
		return nil, err
	}
	if err := s.validateTaxonomy(input); err != nil {
		return nil, err
	}
	if explicit := util.Slugify(input.Slug); explicit != "" && explicit != existing.Slug {
		taken, err := s.productRepo.SlugExists(explicit, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		product.Slug = explicit
	}

	if err := s.productRepo.Update(product, input.Version, uniqueIDs(input.TagIDs)); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			logger.Warn("Product update conflict", map[string]interface{}{
				"product_id": id,
				"version":    input.Version,
			})
		}
		return nil, mapProductErr(err)
	}

	s.deleteBlobs(ctx, droppedImages(existing.Images, product.Images))

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"version":    product.Version,
	})
	return s.GetProduct(id)
}

// droppedImages returns images of before whose storage key is not referenced by after.
func droppedImages(before, after []model.ProductImage) []model.ProductImage {
	kept := make(map[string]bool, len(after))
	for _, img := range after {
		if img.StorageKey != "" {
			kept[img.StorageKey] = true
		}
	}
	var dropped []model.ProductImage
	for _, img := range before {
		if img.StorageKey != "" && !kept[img.StorageKey] {
			dropped = append(dropped, img)
		}
	}
	return dropped
}

func (s *productService) deleteBlobs(ctx context.Context, images []model.ProductImage) {
	if s.blobs == nil {
		return
	}
	for _, img := range images {
		if img.StorageKey == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
			logger.Warn("Failed to delete image blob", map[string]interface{}{
				"key":   img.StorageKey,
				"error": err.Error(),
			})
		}
	}
}

func (s *productService) SetPrimaryImage(productID, imageID uint) (*model.Product, error) {
	if err := s.productRepo.SetPrimaryImage(productID, imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, findErr := s.productRepo.FindByID(productID); findErr != nil {
				return nil, mapProductErr(findErr)
			}
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return s.GetProduct(productID)
}

// DeleteProduct removes the product and then its blobs. Order snapshots keep their own copies.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	images, err := s.productRepo.Delete(id)
	if err != nil {
		return mapProductErr(err)
	}
	s.deleteBlobs(ctx, images)

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
		"images":     len(images),
	})
	return nil
}
