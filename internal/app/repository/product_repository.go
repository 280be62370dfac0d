package repository

import (
	"fmt"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortPopular   ProductSort = "popular"
)

func (s ProductSort) Valid() bool {
	switch s {
	case ProductSortNewest, ProductSortPriceLow, ProductSortPriceHigh, ProductSortPopular:
		return true
	}
	return false
}

type ProductFilter struct {
	CategorySlug    string
	SubcategorySlug string
	TagSlug         string
	CategoryID      *uint
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	FeaturedOnly    bool
	InStockOnly     bool
	ExcludeID       uint
	SortBy          ProductSort
	Limit           int
	Offset          int
}

type ProductRepository interface {
	Create(product *model.Product, tagIDs []uint) error
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	Count(filter ProductFilter) (int64, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	Update(product *model.Product, expectedVersion int, tagIDs []uint) error
	SetPrimaryImage(productID, imageID uint) error
	Delete(id uint) ([]model.ProductImage, error)
	CountAll() (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func withProductAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(q *gorm.DB) *gorm.DB {
			return q.Order("product_images.sort_order ASC, product_images.id ASC")
		}).
		Preload("Tags", func(q *gorm.DB) *gorm.DB {
			return q.Order("tags.name ASC")
		}).
		Preload("Category").
		Preload("Subcategory")
}

// Create inserts the product, its images and its tag links in one transaction.
func (r *productRepository) Create(product *model.Product, tagIDs []uint) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title":  product.Title,
		"slug":   product.Slug,
		"images": len(product.Images),
		"tags":   len(tagIDs),
	})

	images := product.Images
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images", "Tags", "Category", "Subcategory").Create(product).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ID = 0
			images[i].ProductID = product.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return linkTags(tx, product.ID, tagIDs)
	})
	if err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
			"slug":  product.Slug,
		})
		return err
	}

	product.Images = images
	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func linkTags(tx *gorm.DB, productID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]model.ProductTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, model.ProductTag{ProductID: productID, TagID: id})
	}
	return tx.Create(&links).Error
}

func (r *productRepository) applyFilter(query *gorm.DB, filter ProductFilter) *gorm.DB {
	if filter.CategorySlug != "" {
		query = query.Where("products.category_id IN (?)",
			r.db.Model(&model.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.SubcategorySlug != "" {
		query = query.Where("products.subcategory_id IN (?)",
			r.db.Model(&model.Subcategory{}).Select("id").Where("slug = ?", filter.SubcategorySlug))
	}
	if filter.TagSlug != "" {
		query = query.Where("products.id IN (?)",
			r.db.Table("product_tags").
				Select("product_tags.product_id").
				Joins("JOIN tags ON tags.id = product_tags.tag_id").
				Where("tags.slug = ?", filter.TagSlug))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(search))
		query = query.Where("LOWER(products.title) LIKE ? OR LOWER(products.short_description) LIKE ?", like, like)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.FeaturedOnly {
		query = query.Where("products.featured = ?", true)
	}
	if filter.InStockOnly {
		query = query.Where("products.in_stock = ? AND products.stock_qty > 0", true)
	}
	if filter.ExcludeID != 0 {
		query = query.Where("products.id <> ?", filter.ExcludeID)
	}
	return query
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":    filter.CategorySlug,
		"subcategory": filter.SubcategorySlug,
		"tag":         filter.TagSlug,
		"search":      filter.Search,
		"featured":    filter.FeaturedOnly,
		"in_stock":    filter.InStockOnly,
		"sort_by":     filter.SortBy,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	query := r.applyFilter(withProductAssociations(r.db.Model(&model.Product{})), filter)

	switch filter.SortBy {
	case ProductSortPriceLow:
		query = query.Order("products.price ASC").Order("products.id ASC")
	case ProductSortPriceHigh:
		query = query.Order("products.price DESC").Order("products.id ASC")
	case ProductSortPopular:
		query = query.Order("products.featured DESC").Order("products.created_at DESC").Order("products.id DESC")
	default:
		query = query.Order("products.created_at DESC").Order("products.id DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, nil)
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) Count(filter ProductFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.Model(&model.Product{}), filter).Count(&count).Error
	if err != nil {
		logger.Error("Failed to count products", err, nil)
		return 0, err
	}
	return count, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := withProductAssociations(r.db).First(&product, id).Error; err != nil {
		logger.Debug("Product not loaded by ID", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := withProductAssociations(r.db).Where("slug = ?", slug).First(&product).Error; err != nil {
		logger.Debug("Product not loaded by slug", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var products []model.Product
	err := r.db.
		Preload("Images", func(q *gorm.DB) *gorm.DB {
			return q.Order("product_images.sort_order ASC, product_images.id ASC")
		}).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find products by IDs", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the scalar fields when the stored version matches expectedVersion,
// then reconciles images and tag links against product.Images and tagIDs.
// The version is bumped in the same transaction.
func (r *productRepository) Update(product *model.Product, expectedVersion int, tagIDs []uint) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id":       product.ID,
		"expected_version": expectedVersion,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).
			Where("id = ? AND version = ?", product.ID, expectedVersion).
			Updates(map[string]interface{}{
				"title":             product.Title,
				"slug":              product.Slug,
				"price":             product.Price,
				"compare_price":     product.ComparePrice,
				"short_description": product.ShortDescription,
				"long_description":  product.LongDescription,
				"category_id":       product.CategoryID,
				"subcategory_id":    product.SubcategoryID,
				"stock_qty":         product.StockQty,
				"in_stock":          product.InStock,
				"featured":          product.Featured,
				"version":           gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrStaleVersion
		}

		if err := reconcileImages(tx, product.ID, product.Images); err != nil {
			return err
		}
		return reconcileTags(tx, product.ID, tagIDs)
	})
	if err != nil {
		logger.Warn("Product update rolled back", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return err
	}

	product.Version = expectedVersion + 1
	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
		"version":    product.Version,
	})
	return nil
}

func reconcileImages(tx *gorm.DB, productID uint, desired []model.ProductImage) error {
	var current []model.ProductImage
	if err := tx.Where("product_id = ?", productID).Find(&current).Error; err != nil {
		return err
	}

	d := diffImages(current, desired)
	if len(d.remove) > 0 {
		if err := tx.Where("product_id = ? AND id IN ?", productID, d.remove).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
	}
	for _, img := range d.update {
		err := tx.Model(&model.ProductImage{}).
			Where("id = ? AND product_id = ?", img.ID, productID).
			Updates(map[string]interface{}{
				"url":         img.URL,
				"storage_key": img.StorageKey,
				"is_primary":  img.IsPrimary,
				"sort_order":  img.SortOrder,
			}).Error
		if err != nil {
			return err
		}
	}
	for i := range d.create {
		d.create[i].ProductID = productID
	}
	if len(d.create) > 0 {
		if err := tx.Create(&d.create).Error; err != nil {
			return err
		}
	}
	return nil
}

func reconcileTags(tx *gorm.DB, productID uint, desired []uint) error {
	var current []uint
	if err := tx.Model(&model.ProductTag{}).Where("product_id = ?", productID).Pluck("tag_id", &current).Error; err != nil {
		return err
	}

	add, remove := diffIDs(current, desired)
	if len(remove) > 0 {
		if err := tx.Where("product_id = ? AND tag_id IN ?", productID, remove).Delete(&model.ProductTag{}).Error; err != nil {
			return err
		}
	}
	return linkTags(tx, productID, add)
}

// SetPrimaryImage flags imageID as the only primary image of the product.
func (r *productRepository) SetPrimaryImage(productID, imageID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var img model.ProductImage
		if err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ProductImage{}).
			Where("product_id = ?", productID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ProductImage{}).
			Where("id = ?", imageID).
			Update("is_primary", true).Error; err != nil {
			return err
		}
		return tx.Model(&model.Product{}).
			Where("id = ?", productID).
			Update("version", gorm.Expr("version + 1")).Error
	})
}

// Delete removes tag links, images and the product together and returns the
// removed images so their blobs can be cleaned up.
func (r *productRepository) Delete(id uint) ([]model.ProductImage, error) {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	var images []model.ProductImage
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Warn("Product delete rolled back", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
		"images":     len(images),
	})
	return images, nil
}

func (r *productRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}
