package repository

import (
	"context"
	"errors"

	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

type AuditEntry struct {
	UserID     uint
	Action     string
	EntityType string
	EntityID   uint
	Changes    string
	IPAddress  string
}

func (s *Store) ListWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var items []models.WishlistItem
	if err := db.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, wrapErr(err, "list wishlist", "")
	}
	return items, nil
}

func (s *Store) ListAddresses(ctx context.Context, userID uint) ([]models.UserAddress, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var addresses []models.UserAddress
	err = db.Where("user_id = ?", userID).Order("is_default DESC").Order("id").Find(&addresses).Error
	if err != nil {
		return nil, wrapErr(err, "list addresses", "")
	}
	return addresses, nil
}

func (s *Store) ListReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	err = db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, wrapErr(err, "list reviews", "")
	}
	return reviews, nil
}

// 尚未累積點數的使用者回傳 0 點
func (s *Store) GetLoyaltyPoints(ctx context.Context, userID uint) (*models.LoyaltyPoints, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var points models.LoyaltyPoints
	err = db.Where("user_id = ?", userID).First(&points).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.LoyaltyPoints{UserID: userID}, nil
	}
	if err != nil {
		return nil, wrapErr(err, "get loyalty points", "")
	}
	return &points, nil
}

func (s *Store) RecordAudit(ctx context.Context, entry AuditEntry) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	log := models.AuditLog{
		UserID: entry.UserID,
		Action: entry.Action,
	}
	if entry.EntityType != "" {
		log.EntityType = &entry.EntityType
	}
	if entry.EntityID != 0 {
		log.EntityID = &entry.EntityID
	}
	if entry.Changes != "" {
		log.Changes = &entry.Changes
	}
	if entry.IPAddress != "" {
		log.IPAddress = &entry.IPAddress
	}
	return wrapErr(db.Create(&log).Error, "record audit", "")
}

func (s *Store) ListAuditLogs(ctx context.Context, entityType string, entityID uint) ([]models.AuditLog, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var logs []models.AuditLog
	err = db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).Order("id").Find(&logs).Error
	if err != nil {
		return nil, wrapErr(err, "list audit logs", "")
	}
	return logs, nil
}
