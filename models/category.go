package models

import "time"

// Category 商品分類，ParentID 為空代表主分類。
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description  *string   `gorm:"type:text" json:"description"`
	ImageURL     *string   `gorm:"type:varchar(512)" json:"imageUrl"`
	ParentID     *uint     `gorm:"index" json:"parentId"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}
