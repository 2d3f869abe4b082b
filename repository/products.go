package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name         string
	Description  string
	CategoryID   uint
	Price        int64
	Discount     int
	Material     *string
	Color        *string
	Style        *string
	Dimensions   *string
	Weight       *string
	Stock        int64
	SKU          *string
	IsBestseller bool
	IsNew        bool
	Images       []string
}

type ProductUpdate struct {
	Name         *string
	Description  *string
	CategoryID   *uint
	Price        *int64
	Discount     *int
	Material     *string
	Color        *string
	Style        *string
	Dimensions   *string
	Weight       *string
	Stock        *int64
	IsBestseller *bool
	IsNew        *bool
}

func validateProductNumbers(price *int64, discount *int, stock *int64) error {
	if price != nil && *price < 0 {
		return apperr.Validation("價格不可為負數")
	}
	if discount != nil && (*discount < 0 || *discount > 100) {
		return apperr.Validation("折扣必須介於 0 到 100")
	}
	if stock != nil && *stock < 0 {
		return apperr.Validation("庫存不可為負數")
	}
	return nil
}

// 管理後台使用，包含所有分類的商品
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := db.Order("id").Find(&products).Error; err != nil {
		return nil, wrapErr(err, "list products", "")
	}
	return products, nil
}

// 分頁查詢分類下的商品，total 為分類內商品總數
func (s *Store) ListProductsByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]models.Product, int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	query := db.Model(&models.Product{}).Where("category_id = ?", categoryID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err, "count products", "")
	}

	var products []models.Product
	err = db.Where("category_id = ?", categoryID).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, wrapErr(err, "list products by category", "")
	}
	return products, total, nil
}

func (s *Store) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		return nil, wrapErr(err, "get product", "商品不存在")
	}
	return &product, nil
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, wrapErr(err, "get product by slug", "商品不存在")
	}
	return &product, nil
}

func (s *Store) ProductImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var images []models.ProductImage
	err = db.Where("product_id = ?", productID).Order("display_order").Order("id").Find(&images).Error
	if err != nil {
		return nil, wrapErr(err, "list product images", "")
	}
	return images, nil
}

func (s *Store) ProductVariants(ctx context.Context, productID uint) ([]models.ProductVariant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var variants []models.ProductVariant
	if err := db.Where("product_id = ?", productID).Order("id").Find(&variants).Error; err != nil {
		return nil, wrapErr(err, "list product variants", "")
	}
	return variants, nil
}

// 找出尚未使用的 slug，重複時加上 -2、-3…
func uniqueProductSlug(tx *gorm.DB, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "produkt"
	}
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func categoryExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.Validation("分類 %d 不存在", id)
	}
	return nil
}

// 新增商品與圖片，在同一個交易內完成
func (s *Store) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, apperr.Validation("商品名稱不可為空")
	}
	if err := validateProductNumbers(&input.Price, &input.Discount, &input.Stock); err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, input.CategoryID); err != nil {
			return err
		}
		slug, err := uniqueProductSlug(tx, input.Name)
		if err != nil {
			return err
		}

		product = models.Product{
			Name:         input.Name,
			Slug:         slug,
			Description:  input.Description,
			Price:        input.Price,
			CategoryID:   input.CategoryID,
			Material:     input.Material,
			Color:        input.Color,
			Style:        input.Style,
			Dimensions:   input.Dimensions,
			Weight:       input.Weight,
			Stock:        input.Stock,
			SKU:          input.SKU,
			IsBestseller: input.IsBestseller,
			IsNew:        input.IsNew,
			Discount:     input.Discount,
		}
		for i, url := range input.Images {
			product.Images = append(product.Images, models.ProductImage{
				ImageURL:     url,
				DisplayOrder: i,
			})
		}
		return tx.Create(&product).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("商品 slug 或 SKU 已存在")
	}
	if err != nil {
		return nil, wrapErr(err, "create product", "")
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, update ProductUpdate) (*models.Product, error) {
	if err := validateProductNumbers(update.Price, update.Discount, update.Stock); err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		if *update.Name == "" {
			return nil, apperr.Validation("商品名稱不可為空")
		}
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.CategoryID != nil {
		updates["category_id"] = *update.CategoryID
	}
	if update.Price != nil {
		updates["price"] = *update.Price
	}
	if update.Discount != nil {
		updates["discount"] = *update.Discount
	}
	if update.Material != nil {
		updates["material"] = *update.Material
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Style != nil {
		updates["style"] = *update.Style
	}
	if update.Dimensions != nil {
		updates["dimensions"] = *update.Dimensions
	}
	if update.Weight != nil {
		updates["weight"] = *update.Weight
	}
	if update.Stock != nil {
		updates["stock"] = *update.Stock
	}
	if update.IsBestseller != nil {
		updates["is_bestseller"] = *update.IsBestseller
	}
	if update.IsNew != nil {
		updates["is_new"] = *update.IsNew
	}

	var product models.Product
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if update.CategoryID != nil {
			if err := categoryExists(tx, *update.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&product, id).Error
	})
	if err != nil {
		return nil, wrapErr(err, "update product", "商品不存在")
	}
	return &product, nil
}

// 刪除商品及其圖片、款式
func (s *Store) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return nil, wrapErr(err, "delete product", "商品不存在")
	}
	return &product, nil
}

func (s *Store) IncrementViewCount(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	err = db.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	return wrapErr(err, "increment view count", "")
}
