package repository

import (
	"context"
	"errors"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

// CartLine 購物車項目與對應的商品資料，結帳時用來建立付款明細
type CartLine struct {
	Item    models.CartItem
	Product models.Product
	Variant *models.ProductVariant
}

func (s *Store) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := db.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, wrapErr(err, "get cart", "")
	}
	return items, nil
}

// 讀取購物車並帶出商品，已下架的商品會被略過
func (s *Store) CartLines(ctx context.Context, userID uint) ([]CartLine, error) {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(items))
	var variantIDs []uint
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
		if item.VariantID != nil {
			variantIDs = append(variantIDs, *item.VariantID)
		}
	}

	var products []models.Product
	if err := db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, wrapErr(err, "load cart products", "")
	}
	productMap := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	variantMap := map[uint]models.ProductVariant{}
	if len(variantIDs) > 0 {
		var variants []models.ProductVariant
		if err := db.Where("id IN ?", variantIDs).Find(&variants).Error; err != nil {
			return nil, wrapErr(err, "load cart variants", "")
		}
		for _, v := range variants {
			variantMap[v.ID] = v
		}
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok {
			continue
		}
		line := CartLine{Item: item, Product: product}
		if item.VariantID != nil {
			if v, ok := variantMap[*item.VariantID]; ok {
				line.Variant = &v
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// 加入購物車，同商品同款式則累加數量
func (s *Store) AddToCart(ctx context.Context, userID, productID uint, variantID *uint, quantity int64) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperr.Validation("數量至少為 1")
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			return err
		}
		if variantID != nil {
			var variant models.ProductVariant
			err := tx.Where("id = ? AND product_id = ?", *variantID, productID).First(&variant).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("款式不屬於此商品")
			}
			if err != nil {
				return err
			}
		}

		query := tx.Where("user_id = ? AND product_id = ?", userID, productID)
		if variantID != nil {
			query = query.Where("variant_id = ?", *variantID)
		} else {
			query = query.Where("variant_id IS NULL")
		}
		err := query.First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = models.CartItem{
				UserID:    userID,
				ProductID: productID,
				VariantID: variantID,
				Quantity:  quantity,
			}
			return tx.Create(&item).Error
		}
		if err != nil {
			return err
		}
		item.Quantity += quantity
		return tx.Model(&item).Update("quantity", item.Quantity).Error
	})
	if err != nil {
		return nil, wrapErr(err, "add to cart", "商品不存在")
	}
	return &item, nil
}

// 只能刪除自己購物車內的項目
func (s *Store) RemoveFromCart(ctx context.Context, userID, itemID uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return wrapErr(result.Error, "remove from cart", "")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("購物車項目不存在")
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	err = db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	return wrapErr(err, "clear cart", "")
}
