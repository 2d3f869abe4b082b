package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

// ErrUnavailable 表示沒有可用的資料庫連線，與「查無資料」區分
var ErrUnavailable = &apperr.Error{Kind: apperr.KindUnavailable, Message: "資料庫無法使用"}

// Store 所有資料存取的入口，由 serve 指令建立後注入各元件
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	return s.db.WithContext(ctx), nil
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.AutoMigrate(models.All()...)
}

func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// 已分類的錯誤直接回傳，gorm 的查無資料轉為 NotFound，其餘錯誤附上操作名稱
func wrapErr(err error, op string, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", notFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
