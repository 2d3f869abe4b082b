package models

import "time"

type Product struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Name         string           `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description  string           `gorm:"type:text" json:"description"`
	Price        int64            `gorm:"not null" json:"price"`
	CategoryID   uint             `gorm:"index;not null" json:"categoryId"`
	Material     *string          `gorm:"type:varchar(255)" json:"material"`
	Color        *string          `gorm:"type:varchar(255)" json:"color"`
	Style        *string          `gorm:"type:varchar(255)" json:"style"`
	Dimensions   *string          `gorm:"type:varchar(255)" json:"dimensions"`
	Weight       *string          `gorm:"type:varchar(255)" json:"weight"`
	Stock        int64            `gorm:"not null;default:0" json:"stock"`
	SKU          *string          `gorm:"type:varchar(255);uniqueIndex" json:"sku"`
	IsBestseller bool             `gorm:"not null;default:false" json:"isBestseller"`
	IsNew        bool             `gorm:"not null;default:false" json:"isNew"`
	Discount     int              `gorm:"not null;default:0" json:"discount"`
	ViewCount    int64            `gorm:"not null;default:0" json:"viewCount"`
	Images       []ProductImage   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type ProductImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"index;not null" json:"productId"`
	ImageURL     string    `gorm:"type:varchar(512);not null" json:"imageUrl"`
	AltText      *string   `gorm:"type:varchar(255)" json:"altText"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductVariant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	Color     string    `gorm:"type:varchar(255);not null" json:"color"`
	ColorCode *string   `gorm:"type:varchar(7)" json:"colorCode"`
	Stock     int64     `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}
