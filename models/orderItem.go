package models

import "time"

// OrderItem 下單當下的商品快照，建立後不再變更。
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"index;not null" json:"orderId"`
	ProductID    *uint     `json:"productId"`
	ProductName  string    `gorm:"type:varchar(255);not null" json:"productName"`
	Price        int64     `gorm:"not null" json:"price"`
	Quantity     int64     `gorm:"not null" json:"quantity"`
	VariantColor *string   `gorm:"type:varchar(255)" json:"variantColor"`
	CreatedAt    time.Time `json:"createdAt"`
}
