package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ashascraft/storefront-backend/config"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/ashascraft/storefront-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Columns of the product sheet, in order. Only title and price are required.
const (
	colTitle = iota
	colPrice
	colComparePrice
	colCategory
	colStock
	colFeatured
	colShortDescription
	colImageURLs
	minColumns = colPrice + 1
)

type productRow struct {
	Line         int
	Title        string
	Price        float64
	ComparePrice *float64
	Category     string
	Stock        int
	Featured     bool
	Short        string
	ImageURLs    []string
}

func main() {
	yes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("Usage: go run ./cmd/seed [-yes] <products.xlsx>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Products to import: %d (skipped rows: %d)\n", len(rows), skipped)

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	imported, failed := importProducts(db.GetDB(), rows)
	fmt.Println("Import completed.")
	fmt.Printf("  Imported: %d\n", imported)
	fmt.Printf("  Failed:   %d\n", failed)
}

func readProductsFromXLSX(filePath string) ([]productRow, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(raw) < 2 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var rows []productRow
	skipped := 0
	// first row is the header
	for i, cells := range raw[1:] {
		row, ok := parseProductRow(i+2, cells)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func cell(cells []string, idx int) string {
	if idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

func parseProductRow(line int, cells []string) (productRow, bool) {
	if len(cells) < minColumns {
		return productRow{}, false
	}

	row := productRow{
		Line:     line,
		Title:    cell(cells, colTitle),
		Category: cell(cells, colCategory),
		Short:    cell(cells, colShortDescription),
	}
	if row.Title == "" {
		return productRow{}, false
	}

	price, err := strconv.ParseFloat(cell(cells, colPrice), 64)
	if err != nil || price < 0 {
		return productRow{}, false
	}
	row.Price = price

	if v := cell(cells, colComparePrice); v != "" {
		compare, err := strconv.ParseFloat(v, 64)
		if err == nil && compare > price {
			row.ComparePrice = &compare
		}
	}
	if v := cell(cells, colStock); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return productRow{}, false
		}
		row.Stock = stock
	}

	switch strings.ToLower(cell(cells, colFeatured)) {
	case "yes", "y", "true", "1":
		row.Featured = true
	}

	for _, u := range strings.Split(cell(cells, colImageURLs), ",") {
		if u = strings.TrimSpace(u); u != "" {
			row.ImageURLs = append(row.ImageURLs, u)
		}
	}
	return row, true
}

func (r productRow) input(categoryID *uint) service.ProductInput {
	input := service.ProductInput{
		Title:            r.Title,
		Price:            r.Price,
		ComparePrice:     r.ComparePrice,
		ShortDescription: r.Short,
		CategoryID:       categoryID,
		StockQty:         r.Stock,
		Featured:         r.Featured,
	}
	for _, u := range r.ImageURLs {
		input.Images = append(input.Images, service.ProductImageInput{URL: u})
	}
	return input
}

// importProducts creates missing categories by name, then each product through ProductService.
func importProducts(conn *gorm.DB, rows []productRow) (int, int) {
	categoryRepo := repository.NewCategoryRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	taxonomy := service.NewTaxonomyService(categoryRepo, tagRepo)
	products := service.NewProductService(repository.NewProductRepository(conn), categoryRepo, tagRepo, nil)

	categories := make(map[string]uint)
	imported, failed := 0, 0

	for _, row := range rows {
		var categoryID *uint
		if row.Category != "" {
			id, err := resolveCategory(categoryRepo, taxonomy, categories, row.Category)
			if err != nil {
				fmt.Printf("  line %d: category %q: %v\n", row.Line, row.Category, err)
				failed++
				continue
			}
			categoryID = &id
		}

		if _, err := products.CreateProduct(row.input(categoryID)); err != nil {
			fmt.Printf("  line %d: %s: %v\n", row.Line, row.Title, err)
			failed++
			continue
		}
		imported++
	}
	return imported, failed
}

func resolveCategory(repo repository.CategoryRepository, taxonomy service.TaxonomyService, cache map[string]uint, name string) (uint, error) {
	slug := util.Slugify(name)
	if id, ok := cache[slug]; ok {
		return id, nil
	}

	existing, err := repo.FindBySlug(slug)
	switch {
	case err == nil:
		cache[slug] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, err
	}

	created, err := taxonomy.CreateCategory(service.CategoryInput{Name: name, Slug: slug})
	if err != nil {
		return 0, err
	}
	cache[slug] = created.ID
	return created.ID, nil
}
