package repository

import (
	"context"
	"errors"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"gorm.io/gorm"
)

type Shipment struct {
	TrackingNumber    string
	Carrier           models.Carrier
	EstimatedDelivery *string
}

// 建立訂單與明細，同一個結帳 session 只會建立一筆訂單。
// created 為 false 表示訂單先前已建立，回傳的是既有訂單。
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, bool, error) {
	if order.OrderNumber == "" {
		return nil, false, apperr.Validation("缺少訂單編號")
	}
	if order.TotalAmount < 0 || order.ShippingCost < 0 || order.DiscountAmount < 0 {
		return nil, false, apperr.Validation("金額不可為負數")
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var existing *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		if order.StripeCheckoutSessionID != nil {
			var found models.Order
			err := tx.Where("stripe_checkout_session_id = ?", *order.StripeCheckoutSessionID).First(&found).Error
			if err == nil {
				existing = &found
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		order.OrderItems = nil
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.OrderItems = items
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && order.StripeCheckoutSessionID != nil {
		// 另一個相同事件的請求搶先建立了訂單
		found, findErr := s.getOrderBySession(ctx, *order.StripeCheckoutSessionID)
		if findErr != nil {
			return nil, false, findErr
		}
		return found, false, nil
	}
	if err != nil {
		return nil, false, wrapErr(err, "create order", "")
	}
	if existing != nil {
		return existing, false, nil
	}
	return order, true, nil
}

func (s *Store) getOrderBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := db.Where("stripe_checkout_session_id = ?", sessionID).First(&order).Error; err != nil {
		return nil, wrapErr(err, "get order by session", "訂單不存在")
	}
	return &order, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		return nil, wrapErr(err, "get order", "訂單不存在")
	}
	return &order, nil
}

func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := db.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, wrapErr(err, "get order by number", "訂單不存在")
	}
	return &order, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	err = db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, wrapErr(err, "list user orders", "")
	}
	return orders, nil
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := db.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, wrapErr(err, "list orders", "")
	}
	return orders, nil
}

// 匯出用，一併載入訂單明細
func (s *Store) ListOrdersWithItems(ctx context.Context) ([]models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	err = db.Preload("OrderItems").Order("created_at").Order("id").Find(&orders).Error
	if err != nil {
		return nil, wrapErr(err, "list orders with items", "")
	}
	return orders, nil
}

func (s *Store) OrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var items []models.OrderItem
	if err := db.Where("order_id = ?", orderID).Order("id").Find(&items).Error; err != nil {
		return nil, wrapErr(err, "list order items", "")
	}
	return items, nil
}

// 依付款 intent 更新付款狀態，回傳更新筆數
func (s *Store) UpdatePaymentStatusByIntent(ctx context.Context, intentID string, status models.PaymentStatus) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Model(&models.Order{}).
		Where("stripe_payment_intent_id = ?", intentID).
		Update("payment_status", status)
	if result.Error != nil {
		return 0, wrapErr(result.Error, "update payment status", "")
	}
	return result.RowsAffected, nil
}

// 以條件更新避免在讀取與寫入之間狀態被其他請求改變
func (s *Store) MarkShipped(ctx context.Context, orderID uint, shipment Shipment) (*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	result := db.Model(&models.Order{}).
		Where("id = ? AND status IN ? AND payment_status = ?",
			orderID, models.StatusesLeadingTo(models.OrderStatusShipped), models.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"status":             models.OrderStatusShipped,
			"tracking_number":    shipment.TrackingNumber,
			"carrier":            shipment.Carrier,
			"estimated_delivery": shipment.EstimatedDelivery,
		})
	if result.Error != nil {
		return nil, wrapErr(result.Error, "mark shipped", "")
	}
	if result.RowsAffected == 0 {
		return nil, s.transitionFailure(ctx, orderID)
	}
	return s.GetOrderByID(ctx, orderID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("無效的訂單狀態 %q", status)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	query := db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, models.StatusesLeadingTo(status))
	if status.RequiresPayment() {
		query = query.Where("payment_status = ?", models.PaymentStatusCompleted)
	}
	result := query.Update("status", status)
	if result.Error != nil {
		return nil, wrapErr(result.Error, "update order status", "")
	}
	if result.RowsAffected == 0 {
		return nil, s.transitionFailure(ctx, orderID)
	}
	return s.GetOrderByID(ctx, orderID)
}

// 條件更新沒有影響任何資料時，判斷是訂單不存在還是狀態不允許
func (s *Store) transitionFailure(ctx context.Context, orderID uint) error {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	return apperr.Conflict("訂單狀態 %s（付款 %s）不允許此操作", order.Status, order.PaymentStatus)
}
