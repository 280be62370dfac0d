package repository

import (
	"testing"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createCategory(t *testing.T, testDB *gorm.DB, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, testDB.Create(category).Error)
	return category
}

func createTag(t *testing.T, testDB *gorm.DB, name, slug string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Slug: slug}
	require.NoError(t, testDB.Create(tag).Error)
	return tag
}

func createProduct(t *testing.T, testDB *gorm.DB, p model.Product) *model.Product {
	t.Helper()
	if p.Version == 0 {
		p.Version = 1
	}
	require.NoError(t, testDB.Omit("Images", "Tags", "Category", "Subcategory").Create(&p).Error)
	return &p
}

func uintPtr(v uint) *uint {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
