package repository

import (
	"testing"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTagRepository_CRUD(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewTagRepository(testDB)

	eco := &model.Tag{Name: "Eco Friendly", Slug: "eco-friendly"}
	gift := &model.Tag{Name: "Gift", Slug: "gift"}
	require.NoError(t, repo.Create(eco))
	require.NoError(t, repo.Create(gift))
	assert.Error(t, repo.Create(&model.Tag{Name: "Gift again", Slug: "gift"}))

	tags, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Eco Friendly", tags[0].Name)

	byIDs, err := repo.FindByIDs([]uint{gift.ID, 404})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	gift.Name = "Gift Ideas"
	require.NoError(t, repo.Update(gift))
	found, err := repo.FindByID(gift.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gift Ideas", found.Name)

	assert.ErrorIs(t, repo.Update(&model.Tag{ID: 404, Name: "x", Slug: "x"}), gorm.ErrRecordNotFound)
}

func TestTagRepository_DeleteUnlinksProducts(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewTagRepository(testDB)

	tag := createTag(t, testDB, "Sale", "sale")
	other := createTag(t, testDB, "New", "new")
	product := createProduct(t, testDB, model.Product{Title: "Clay Diya", Slug: "clay-diya", Price: 80})
	require.NoError(t, testDB.Create(&model.ProductTag{ProductID: product.ID, TagID: tag.ID}).Error)
	require.NoError(t, testDB.Create(&model.ProductTag{ProductID: product.ID, TagID: other.ID}).Error)

	require.NoError(t, repo.Delete(tag.ID))

	var links []model.ProductTag
	require.NoError(t, testDB.Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, other.ID, links[0].TagID)

	var products int64
	testDB.Model(&model.Product{}).Count(&products)
	assert.Equal(t, int64(1), products)

	assert.ErrorIs(t, repo.Delete(tag.ID), gorm.ErrRecordNotFound)
}
