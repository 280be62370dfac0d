package main

import (
	"path/filepath"
	"testing"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", ref, &row))
	}
	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var header = []interface{}{"Title", "Price", "Compare Price", "Category", "Stock", "Featured", "Short Description", "Images"}

func TestReadProductsFromXLSX(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		header,
		{"Nakshi Kantha Throw", "1850", "2200", "Home Decor", "4", "yes", "Hand-stitched", "https://cdn.test/a.jpg, https://cdn.test/b.jpg"},
		{"Clay Lamp", "200"},
		{"", "300"},
		{"Free Sample", "abc"},
		{"Bad Stock", "100", "", "", "-1"},
		{"Discount Ignored", "500", "400"},
	})

	rows, skipped, err := readProductsFromXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, rows, 3)

	kantha := rows[0]
	assert.Equal(t, 2, kantha.Line)
	assert.Equal(t, 1850.0, kantha.Price)
	require.NotNil(t, kantha.ComparePrice)
	assert.Equal(t, 2200.0, *kantha.ComparePrice)
	assert.True(t, kantha.Featured)
	assert.Equal(t, 4, kantha.Stock)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, kantha.ImageURLs)

	assert.Equal(t, "Clay Lamp", rows[1].Title)
	assert.Empty(t, rows[1].Category)
	assert.Nil(t, rows[2].ComparePrice)
}

func TestImportProducts(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	rows := []productRow{
		{Line: 2, Title: "Jute Basket", Price: 650, Category: "Home Decor", Stock: 3, ImageURLs: []string{"https://cdn.test/j.jpg"}},
		{Line: 3, Title: "Jute Basket", Price: 700, Category: "home decor"},
		{Line: 4, Title: "Brass Bangle", Price: 450},
	}

	imported, failed := importProducts(testDB, rows)
	assert.Equal(t, 3, imported)
	assert.Zero(t, failed)

	var categories []model.Category
	require.NoError(t, testDB.Find(&categories).Error)
	require.Len(t, categories, 1)
	assert.Equal(t, "home-decor", categories[0].Slug)

	var products []model.Product
	require.NoError(t, testDB.Preload("Images").Order("id").Find(&products).Error)
	require.Len(t, products, 3)
	assert.Equal(t, "jute-basket", products[0].Slug)
	assert.Equal(t, "jute-basket-2", products[1].Slug)
	require.Len(t, products[0].Images, 1)
	assert.True(t, products[0].Images[0].IsPrimary)
	assert.Nil(t, products[2].CategoryID)
}
