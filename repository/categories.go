package repository

import (
	"context"
	"errors"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name         string
	Slug         string
	Description  *string
	ImageURL     *string
	ParentID     *uint
	DisplayOrder int
	IsActive     *bool
}

// CategoryUpdate 只更新非 nil 欄位；ClearParent 將分類改為主分類
type CategoryUpdate struct {
	Name         *string
	Slug         *string
	Description  *string
	ImageURL     *string
	ParentID     *uint
	ClearParent  bool
	DisplayOrder *int
	IsActive     *bool
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	err = db.Order("display_order").Order("id").Find(&categories).Error
	if err != nil {
		return nil, wrapErr(err, "list categories", "")
	}
	return categories, nil
}

// 只回傳啟用中的主分類
func (s *Store) ListMainCategories(ctx context.Context) ([]models.Category, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	err = db.Where("parent_id IS NULL AND is_active = ?", true).
		Order("display_order").Order("id").
		Find(&categories).Error
	if err != nil {
		return nil, wrapErr(err, "list main categories", "")
	}
	return categories, nil
}

func (s *Store) ListSubcategories(ctx context.Context, parentID uint) ([]models.Category, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	err = db.Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("display_order").Order("id").
		Find(&categories).Error
	if err != nil {
		return nil, wrapErr(err, "list subcategories", "")
	}
	return categories, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		return nil, wrapErr(err, "get category", "分類不存在")
	}
	return &category, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var category models.Category
	if err := db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, wrapErr(err, "get category by slug", "分類不存在")
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, apperr.Validation("分類名稱不可為空")
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Name)
	}
	category := models.Category{
		Name:         input.Name,
		Slug:         slug,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		ParentID:     input.ParentID,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if category.ParentID != nil {
			if err := checkParent(tx, *category.ParentID, 0); err != nil {
				return err
			}
		}
		return tx.Create(&category).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("slug %q 已被使用", slug)
	}
	if err != nil {
		return nil, wrapErr(err, "create category", "")
	}
	return &category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id uint, update CategoryUpdate) (*models.Category, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		if *update.Name == "" {
			return nil, apperr.Validation("分類名稱不可為空")
		}
		updates["name"] = *update.Name
	}
	if update.Slug != nil {
		updates["slug"] = *update.Slug
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.ImageURL != nil {
		updates["image_url"] = *update.ImageURL
	}
	if update.ClearParent {
		updates["parent_id"] = nil
	} else if update.ParentID != nil {
		updates["parent_id"] = *update.ParentID
	}
	if update.DisplayOrder != nil {
		updates["display_order"] = *update.DisplayOrder
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	var category models.Category
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if !update.ClearParent && update.ParentID != nil {
			if err := checkParent(tx, *update.ParentID, id); err != nil {
				return err
			}
		}
		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&category, id).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("slug 已被使用")
	}
	if err != nil {
		return nil, wrapErr(err, "update category", "分類不存在")
	}
	return &category, nil
}

// 分類只有一層巢狀：父分類必須存在且本身是主分類
func checkParent(tx *gorm.DB, parentID uint, selfID uint) error {
	if parentID == selfID {
		return apperr.Validation("分類不能是自己的父分類")
	}
	var parent models.Category
	err := tx.First(&parent, parentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("父分類不存在")
	}
	if err != nil {
		return err
	}
	if parent.ParentID != nil {
		return apperr.Validation("父分類必須是主分類")
	}
	return nil
}

// 刪除分類前檢查是否仍有子分類或商品
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}

		var subcategories int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Count(&subcategories).Error; err != nil {
			return err
		}
		if subcategories > 0 {
			return apperr.Conflict("無法刪除分類：仍有 %d 個子分類", subcategories)
		}

		var products int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return apperr.Conflict("無法刪除分類：仍有 %d 個商品", products)
		}

		return tx.Delete(&category).Error
	})
	return wrapErr(err, "delete category", "分類不存在")
}
