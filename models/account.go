package models

import "time"

type AddressType string

const (
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

type UserAddress struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"index;not null" json:"userId"`
	Type       AddressType `gorm:"type:varchar(16);not null;default:shipping" json:"type"`
	FirstName  string      `gorm:"type:varchar(255);not null" json:"firstName"`
	LastName   string      `gorm:"type:varchar(255);not null" json:"lastName"`
	Street     string      `gorm:"type:varchar(255);not null" json:"street"`
	PostalCode string      `gorm:"type:varchar(20);not null" json:"postalCode"`
	City       string      `gorm:"type:varchar(255);not null" json:"city"`
	Country    string      `gorm:"type:varchar(255);not null;default:AT" json:"country"`
	Phone      *string     `gorm:"type:varchar(32)" json:"phone"`
	IsDefault  bool        `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	ProductID uint      `gorm:"not null" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	UserID    *uint     `json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Title     *string   `gorm:"type:varchar(255)" json:"title"`
	Content   *string   `gorm:"type:text" json:"content"`
	ImageURL  *string   `gorm:"type:varchar(512)" json:"imageUrl"`
	Helpful   int       `gorm:"not null;default:0" json:"helpful"`
	Verified  bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoyaltyPoints struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Points        int64     `gorm:"not null;default:0" json:"points"`
	TotalEarned   int64     `gorm:"not null;default:0" json:"totalEarned"`
	TotalRedeemed int64     `gorm:"not null;default:0" json:"totalRedeemed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AuditLog 後台操作紀錄，Changes 為 JSON。
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	Action     string    `gorm:"type:varchar(255);not null" json:"action"`
	EntityType *string   `gorm:"type:varchar(255)" json:"entityType"`
	EntityID   *uint     `json:"entityId"`
	Changes    *string   `gorm:"type:text" json:"changes"`
	IPAddress  *string   `gorm:"type:varchar(45)" json:"ipAddress"`
	CreatedAt  time.Time `json:"createdAt"`
}

// All 回傳需要 AutoMigrate 的所有模型。
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&ProductVariant{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&UserAddress{},
		&WishlistItem{},
		&Review{},
		&LoyaltyPoints{},
		&AuditLog{},
	}
}
