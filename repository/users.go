package repository

import (
	"context"
	"errors"
	"time"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

// Identity 外部登入服務提供的使用者資料，nil 欄位不覆蓋既有值
type Identity struct {
	OpenID      string
	Name        *string
	Email       *string
	LoginMethod *string
}

// 以 OpenID 新增或更新使用者，ownerOpenID 對應的帳號一律為 admin
func (s *Store) UpsertUser(ctx context.Context, identity Identity, ownerOpenID string) (*models.User, error) {
	if identity.OpenID == "" {
		return nil, apperr.Validation("缺少 openId")
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isOwner := ownerOpenID != "" && identity.OpenID == ownerOpenID

	var user models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("open_id = ?", identity.OpenID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				OpenID:       identity.OpenID,
				Name:         identity.Name,
				Email:        identity.Email,
				LoginMethod:  identity.LoginMethod,
				Role:         models.RoleUser,
				LastSignedIn: now,
			}
			if isOwner {
				user.Role = models.RoleAdmin
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"last_signed_in": now}
		if identity.Name != nil {
			updates["name"] = *identity.Name
		}
		if identity.Email != nil {
			updates["email"] = *identity.Email
		}
		if identity.LoginMethod != nil {
			updates["login_method"] = *identity.LoginMethod
		}
		if isOwner {
			updates["role"] = models.RoleAdmin
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, user.ID).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 同一使用者同時登入，另一個請求已建立資料
		return s.GetUserByOpenID(ctx, identity.OpenID)
	}
	if err != nil {
		return nil, wrapErr(err, "upsert user", "使用者不存在")
	}
	return &user, nil
}

func (s *Store) GetUserByOpenID(ctx context.Context, openID string) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var user models.User
	err = db.Where("open_id = ?", openID).First(&user).Error
	if err != nil {
		return nil, wrapErr(err, "get user by openId", "使用者不存在")
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, wrapErr(err, "get user", "使用者不存在")
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, wrapErr(err, "list users", "")
	}
	return users, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Validation("無效的角色 %q", role)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	result := db.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return nil, wrapErr(result.Error, "update user role", "")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("使用者不存在")
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	err = db.Model(&models.User{}).Where("id = ?", userID).Update("stripe_customer_id", customerID).Error
	return wrapErr(err, "set stripe customer id", "")
}

func (s *Store) SetPreferredLanguage(ctx context.Context, userID uint, language string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Model(&models.User{}).Where("id = ?", userID).Update("preferred_language", language)
	if result.Error != nil {
		return wrapErr(result.Error, "set preferred language", "")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("使用者不存在")
	}
	return nil
}
