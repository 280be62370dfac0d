package model

import (
	"sort"
	"time"
)

type Product struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	Title            string    `gorm:"not null" json:"title"`
	Slug             string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Price            float64   `gorm:"not null" json:"price"`
	ComparePrice     *float64  `json:"compare_price,omitempty"` // strike-through price
	ShortDescription string    `gorm:"type:text" json:"short_description"`
	LongDescription  string    `gorm:"type:text" json:"long_description"`
	CategoryID       *uint     `gorm:"index" json:"category_id,omitempty"`
	SubcategoryID    *uint     `gorm:"index" json:"subcategory_id,omitempty"`
	StockQty         int       `gorm:"not null;default:0" json:"stock_qty"`
	InStock          bool      `gorm:"not null;index" json:"in_stock"`
	Featured         bool      `gorm:"not null;default:false;index" json:"featured"`
	Version          int       `gorm:"not null;default:1" json:"version"` // bumped on every admin update
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subcategory *Subcategory   `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	Images      []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
	Tags        []Tag          `gorm:"many2many:product_tags;" json:"tags"`
}

func (Product) TableName() string {
	return "products"
}

// Purchasable reports whether the storefront should allow adding it to a cart.
func (p *Product) Purchasable() bool {
	return p.InStock && p.StockQty > 0
}

// PrimaryImage returns the flagged primary image, falling back to the lowest sort order.
func (p *Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	first := 0
	for i := range p.Images {
		if p.Images[i].SortOrder < p.Images[first].SortOrder {
			first = i
		}
	}
	return &p.Images[first]
}

func (p *Product) PrimaryImageURL() string {
	if img := p.PrimaryImage(); img != nil {
		return img.URL
	}
	return ""
}

// SortImages orders images by sort_order then id.
func (p *Product) SortImages() {
	sort.SliceStable(p.Images, func(i, j int) bool {
		if p.Images[i].SortOrder != p.Images[j].SortOrder {
			return p.Images[i].SortOrder < p.Images[j].SortOrder
		}
		return p.Images[i].ID < p.Images[j].ID
	})
}

type ProductImage struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	URL        string    `gorm:"not null" json:"url"`
	StorageKey string    `json:"storage_key,omitempty"`
	IsPrimary  bool      `gorm:"not null;default:false" json:"is_primary"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// NormalizePrimary leaves exactly one primary image in a non-empty set.
// The first flagged image wins; with none flagged the first image is promoted.
func NormalizePrimary(images []ProductImage) {
	if len(images) == 0 {
		return
	}
	primary := -1
	for i := range images {
		if images[i].IsPrimary && primary < 0 {
			primary = i
		}
		images[i].IsPrimary = false
	}
	if primary < 0 {
		primary = 0
	}
	images[primary].IsPrimary = true
}
