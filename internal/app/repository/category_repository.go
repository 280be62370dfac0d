package repository

import (
	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	Create(category *model.Category) error
	Update(category *model.Category) error
	Delete(id uint) error

	FindSubcategories(categoryID *uint) ([]model.Subcategory, error)
	FindSubcategoryByID(id uint) (*model.Subcategory, error)
	CreateSubcategory(sub *model.Subcategory) error
	UpdateSubcategory(sub *model.Subcategory) error
	DeleteSubcategory(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func orderedSubcategories(q *gorm.DB) *gorm.DB {
	return q.Order("subcategories.sort_order ASC, subcategories.id ASC")
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.
		Preload("Subcategories", orderedSubcategories).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.Preload("Subcategories", orderedSubcategories).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.
		Preload("Subcategories", orderedSubcategories).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(category *model.Category) error {
	if err := r.db.Omit("Subcategories").Create(category).Error; err != nil {
		logger.Error("Failed to create category", err, map[string]interface{}{
			"slug": category.Slug,
		})
		return err
	}
	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	res := r.db.Model(&model.Category{}).Where("id = ?", category.ID).Updates(map[string]interface{}{
		"name":        category.Name,
		"slug":        category.Slug,
		"description": category.Description,
		"image_url":   category.ImageURL,
		"sort_order":  category.SortOrder,
	})
	if res.Error != nil {
		logger.Error("Failed to update category", res.Error, map[string]interface{}{
			"category_id": category.ID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete refuses to remove a category that products or subcategories still point at.
func (r *categoryRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var products, subs int64
		if err := tx.Model(&model.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Subcategory{}).Where("category_id = ?", id).Count(&subs).Error; err != nil {
			return err
		}
		if products > 0 || subs > 0 {
			logger.Warn("Category still referenced", map[string]interface{}{
				"category_id":   id,
				"products":      products,
				"subcategories": subs,
			})
			return ErrInUse
		}

		res := tx.Delete(&model.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Debug("Category deleted from database", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (r *categoryRepository) FindSubcategories(categoryID *uint) ([]model.Subcategory, error) {
	query := orderedSubcategories(r.db.Model(&model.Subcategory{}))
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var subs []model.Subcategory
	if err := query.Find(&subs).Error; err != nil {
		logger.Error("Failed to list subcategories", err)
		return nil, err
	}
	return subs, nil
}

func (r *categoryRepository) FindSubcategoryByID(id uint) (*model.Subcategory, error) {
	var sub model.Subcategory
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *categoryRepository) CreateSubcategory(sub *model.Subcategory) error {
	if err := r.db.Create(sub).Error; err != nil {
		logger.Error("Failed to create subcategory", err, map[string]interface{}{
			"slug":        sub.Slug,
			"category_id": sub.CategoryID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) UpdateSubcategory(sub *model.Subcategory) error {
	res := r.db.Model(&model.Subcategory{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
		"category_id": sub.CategoryID,
		"name":        sub.Name,
		"slug":        sub.Slug,
		"description": sub.Description,
		"sort_order":  sub.SortOrder,
	})
	if res.Error != nil {
		logger.Error("Failed to update subcategory", res.Error, map[string]interface{}{
			"subcategory_id": sub.ID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSubcategory refuses to remove a subcategory that products still point at.
func (r *categoryRepository) DeleteSubcategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&model.Product{}).Where("subcategory_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			logger.Warn("Subcategory still referenced", map[string]interface{}{
				"subcategory_id": id,
				"products":       products,
			})
			return ErrInUse
		}

		res := tx.Delete(&model.Subcategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
