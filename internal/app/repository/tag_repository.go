package repository

import (
	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type TagRepository interface {
	FindAll() ([]model.Tag, error)
	FindByID(id uint) (*model.Tag, error)
	FindByIDs(ids []uint) ([]model.Tag, error)
	Create(tag *model.Tag) error
	Update(tag *model.Tag) error
	Delete(id uint) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindAll() ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.Order("name ASC, id ASC").Find(&tags).Error; err != nil {
		logger.Error("Failed to list tags", err)
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) FindByID(id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByIDs(ids []uint) ([]model.Tag, error) {
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	var tags []model.Tag
	if err := r.db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) Create(tag *model.Tag) error {
	if err := r.db.Create(tag).Error; err != nil {
		logger.Error("Failed to create tag", err, map[string]interface{}{
			"slug": tag.Slug,
		})
		return err
	}
	return nil
}

func (r *tagRepository) Update(tag *model.Tag) error {
	res := r.db.Model(&model.Tag{}).Where("id = ?", tag.ID).Updates(map[string]interface{}{
		"name": tag.Name,
		"slug": tag.Slug,
	})
	if res.Error != nil {
		logger.Error("Failed to update tag", res.Error, map[string]interface{}{
			"tag_id": tag.ID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the tag together with every product link to it.
func (r *tagRepository) Delete(id uint) error {
	var unlinked int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		links := tx.Where("tag_id = ?", id).Delete(&model.ProductTag{})
		if links.Error != nil {
			return links.Error
		}
		unlinked = links.RowsAffected

		res := tx.Delete(&model.Tag{}, id)
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
	logger.Debug("Tag deleted from database", map[string]interface{}{
		"tag_id":            id,
		"unlinked_products": unlinked,
	})
	return nil
}
