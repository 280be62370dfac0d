package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/ashascraft/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrResourceInUse       = errors.New("resource is still in use")
	ErrInvalidTaxonomy     = errors.New("name is required")
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required,notblank"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
}

type SubcategoryInput struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	Name        string `json:"name" binding:"required,notblank"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type TagInput struct {
	Name string `json:"name" binding:"required,notblank"`
	Slug string `json:"slug"`
}

// TaxonomyService manages categories, subcategories and tags from the admin console.
type TaxonomyService interface {
	CreateCategory(input CategoryInput) (*model.Category, error)
	UpdateCategory(id uint, input CategoryInput) (*model.Category, error)
	DeleteCategory(id uint) error

	CreateSubcategory(input SubcategoryInput) (*model.Subcategory, error)
	UpdateSubcategory(id uint, input SubcategoryInput) (*model.Subcategory, error)
	DeleteSubcategory(id uint) error

	CreateTag(input TagInput) (*model.Tag, error)
	UpdateTag(id uint, input TagInput) (*model.Tag, error)
	DeleteTag(id uint) error
}

type taxonomyService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) TaxonomyService {
	return &taxonomyService{
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
	}
}

// slugFor prefers an explicit slug and falls back to the name.
func slugFor(name, explicit string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrInvalidTaxonomy
	}
	slug := util.Slugify(explicit)
	if slug == "" {
		slug = util.Slugify(name)
	}
	if slug == "" {
		return "", "", fmt.Errorf("%w: name has no usable characters for a slug", ErrInvalidTaxonomy)
	}
	return name, slug, nil
}

func mapTaxonomyErr(err error, notFound error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, repository.ErrInUse):
		return ErrResourceInUse
	case repository.IsDuplicateKey(err):
		return ErrSlugTaken
	}
	return err
}

func (s *taxonomyService) CreateCategory(input CategoryInput) (*model.Category, error) {
	name, slug, err := slugFor(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	category := &model.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		SortOrder:   input.SortOrder,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, mapTaxonomyErr(err, ErrCategoryNotFound)
	}
	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return category, nil
}

func (s *taxonomyService) UpdateCategory(id uint, input CategoryInput) (*model.Category, error) {
	name, slug, err := slugFor(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	category := &model.Category{
		ID:          id,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		SortOrder:   input.SortOrder,
	}
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, mapTaxonomyErr(err, ErrCategoryNotFound)
	}
	found, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, mapTaxonomyErr(err, ErrCategoryNotFound)
	}
	return found, nil
}

// DeleteCategory refuses while products or subcategories still reference the category.
func (s *taxonomyService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		return mapTaxonomyErr(err, ErrCategoryNotFound)
	}
	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *taxonomyService) checkParent(categoryID uint) error {
	if _, err := s.categoryRepo.FindByID(categoryID); err != nil {
		return mapTaxonomyErr(err, ErrCategoryNotFound)
	}
	return nil
}

func (s *taxonomyService) CreateSubcategory(input SubcategoryInput) (*model.Subcategory, error) {
	name, slug, err := slugFor(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(input.CategoryID); err != nil {
		return nil, err
	}
	sub := &model.Subcategory{
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		SortOrder:   input.SortOrder,
	}
	if err := s.categoryRepo.CreateSubcategory(sub); err != nil {
		return nil, mapTaxonomyErr(err, ErrSubcategoryNotFound)
	}
	return sub, nil
}

func (s *taxonomyService) UpdateSubcategory(id uint, input SubcategoryInput) (*model.Subcategory, error) {
	name, slug, err := slugFor(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(input.CategoryID); err != nil {
		return nil, err
	}
	sub := &model.Subcategory{
		ID:          id,
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		SortOrder:   input.SortOrder,
	}
	if err := s.categoryRepo.UpdateSubcategory(sub); err != nil {
		return nil, mapTaxonomyErr(err, ErrSubcategoryNotFound)
	}
	found, err := s.categoryRepo.FindSubcategoryByID(id)
	if err != nil {
		return nil, mapTaxonomyErr(err, ErrSubcategoryNotFound)
	}
	return found, nil
}

func (s *taxonomyService) DeleteSubcategory(id uint) error {
	if err := s.categoryRepo.DeleteSubcategory(id); err != nil {
		return mapTaxonomyErr(err, ErrSubcategoryNotFound)
	}
	return nil
}

func (s *taxonomyService) CreateTag(input TagInput) (*model.Tag, error) {
	name, slug, err := slugFor(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	tag := &model.Tag{Name: name, Slug: slug}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, mapTaxonomyErr(err, ErrTagNotFound)
	}
	return tag, nil
}

func (s *taxonomyService) UpdateTag(id uint, input TagInput) (*model.Tag, error) {
	name, slug, err := slugFor(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.tagRepo.Update(&model.Tag{ID: id, Name: name, Slug: slug}); err != nil {
		return nil, mapTaxonomyErr(err, ErrTagNotFound)
	}
	found, err := s.tagRepo.FindByID(id)
	if err != nil {
		return nil, mapTaxonomyErr(err, ErrTagNotFound)
	}
	return found, nil
}

// DeleteTag also drops the tag from every product.
func (s *taxonomyService) DeleteTag(id uint) error {
	if err := s.tagRepo.Delete(id); err != nil {
		return mapTaxonomyErr(err, ErrTagNotFound)
	}
	logger.Info("Tag deleted", map[string]interface{}{
		"tag_id": id,
	})
	return nil
}
