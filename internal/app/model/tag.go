package model

import (
	"time"
)

type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// ProductTag is the join row behind Product.Tags
type ProductTag struct {
	ProductID uint `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	TagID     uint `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
}

func (ProductTag) TableName() string {
	return "product_tags"
}
