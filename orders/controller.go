// Package orders 處理訂單從付款完成到出貨的流程。
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/email"
	"github.com/moebelhaus/shop-backend/feed"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/notify"
	"github.com/moebelhaus/shop-backend/payments"
	"github.com/moebelhaus/shop-backend/repository"
	"go.uber.org/zap"
)

type Store interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, bool, error)
	GetOrderByID(ctx context.Context, id uint) (*models.Order, error)
	OrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	UpdatePaymentStatusByIntent(ctx context.Context, intentID string, status models.PaymentStatus) (int64, error)
	MarkShipped(ctx context.Context, orderID uint, shipment repository.Shipment) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error)
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
	CartLines(ctx context.Context, userID uint) ([]repository.CartLine, error)
	ClearCart(ctx context.Context, userID uint) error
	RecordAudit(ctx context.Context, entry repository.AuditEntry) error
}

// EventLog 記錄已處理的 webhook 事件
type EventLog interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeTest      Outcome = "test"
)

type Controller struct {
	store   Store
	gateway payments.Gateway
	mail    notify.Dispatcher
	// confirm 寄送付款完成的確認信，預設與 mail 相同
	confirm notify.Dispatcher
	events  EventLog
	feed    feed.Publisher
	log     *zap.Logger
	now     func() time.Time
}

type nopEventLog struct{}

func (nopEventLog) Seen(context.Context, string) (bool, error) { return false, nil }
func (nopEventLog) Remember(context.Context, string) error     { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(feed.OrderEvent) {}

func NewController(store Store, gateway payments.Gateway, mail notify.Dispatcher, events EventLog, publisher feed.Publisher, log *zap.Logger) *Controller {
	if events == nil {
		events = nopEventLog{}
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if mail == nil {
		mail = notify.Disabled{Log: log}
	}
	return &Controller{
		store:   store,
		gateway: gateway,
		mail:    mail,
		confirm: mail,
		events:  events,
		feed:    publisher,
		log:     log.Named("orders"),
		now:     time.Now,
	}
}

// SendConfirmationsVia 改用 d 寄送確認信，出貨通知仍使用原本的寄送方式
func (c *Controller) SendConfirmationsVia(d notify.Dispatcher) {
	if d != nil {
		c.confirm = d
	}
}

// HandleEvent 處理已驗證的 Stripe 事件。
// 回傳錯誤時 Stripe 會重送，因此只有暫時性的失敗才回傳錯誤。
func (c *Controller) HandleEvent(ctx context.Context, evt payments.Event) (Outcome, error) {
	if evt.IsTest() {
		return OutcomeTest, nil
	}

	seen, err := c.events.Seen(ctx, evt.ID)
	if err != nil {
		c.log.Warn("無法查詢事件紀錄", zap.String("eventId", evt.ID), zap.Error(err))
	}
	if seen {
		c.log.Info("重複的事件", zap.String("eventId", evt.ID), zap.String("type", evt.Type))
		return OutcomeDuplicate, nil
	}

	c.log.Info("收到事件", zap.String("eventId", evt.ID), zap.String("type", evt.Type))

	var outcome Outcome
	switch evt.Type {
	case payments.EventCheckoutCompleted:
		outcome, err = c.checkoutCompleted(ctx, evt)
	case payments.EventPaymentSucceeded:
		outcome, err = c.paymentIntentUpdated(ctx, evt, models.PaymentStatusCompleted)
	case payments.EventPaymentFailed:
		outcome, err = c.paymentIntentUpdated(ctx, evt, models.PaymentStatusFailed)
	default:
		c.log.Info("未處理的事件類型", zap.String("type", evt.Type))
		return OutcomeIgnored, nil
	}
	if err != nil {
		return outcome, err
	}

	if err := c.events.Remember(ctx, evt.ID); err != nil {
		c.log.Warn("無法記錄事件", zap.String("eventId", evt.ID), zap.Error(err))
	}
	return outcome, nil
}

func (c *Controller) checkoutCompleted(ctx context.Context, evt payments.Event) (Outcome, error) {
	session, err := evt.CheckoutSession()
	if err != nil {
		return "", err
	}
	if !session.Paid() {
		c.log.Info("結帳尚未付款，略過",
			zap.String("sessionId", session.ID),
			zap.String("paymentStatus", session.PaymentStatus))
		return OutcomeIgnored, nil
	}
	userID, err := session.UserID()
	if err != nil {
		return "", err
	}

	if session.Customer != "" {
		if err := c.store.SetStripeCustomerID(ctx, userID, session.Customer); err != nil {
			c.log.Warn("無法更新 Stripe customer", zap.Uint("userId", userID), zap.Error(err))
		}
	}

	method := models.ShippingMethod(session.Metadata["shipping_method"])
	items, shippingCost := c.fetchLineItems(ctx, session.ID, method)
	if shippingCost == 0 && session.TotalDetails != nil {
		shippingCost = session.TotalDetails.AmountShipping
	}
	if !method.Valid() {
		method = models.ShippingStandard
	}

	lang, err := email.ParseLanguage(session.Metadata["language"])
	if err != nil {
		lang = email.DefaultLanguage
	}
	billing := session.BillingAddress()
	sessionID := session.ID

	order := &models.Order{
		UserID:                  &userID,
		OrderNumber:             c.newOrderNumber(),
		Status:                  models.OrderStatusProcessing,
		TotalAmount:             session.AmountTotal,
		ShippingCost:            shippingCost,
		DiscountAmount:          session.DiscountAmount(),
		ShippingMethod:          method,
		PaymentMethod:           "card",
		PaymentStatus:           models.PaymentStatusCompleted,
		CustomerEmail:           session.Email(),
		ShippingAddress:         session.ShippingAddress(),
		BillingAddress:          &billing,
		Language:                string(lang),
		StripeCheckoutSessionID: &sessionID,
	}
	if promo := session.Metadata["promo_code"]; promo != "" {
		order.PromoCode = &promo
	}
	if session.PaymentIntent != "" {
		intent := session.PaymentIntent
		order.StripePaymentIntentID = &intent
	}

	saved, created, err := c.store.CreateOrder(ctx, order, items)
	if err != nil {
		c.log.Error("無法建立訂單", zap.String("sessionId", session.ID), zap.Error(err))
		return "", err
	}
	if !created {
		c.log.Info("訂單已存在", zap.String("sessionId", session.ID), zap.String("orderNumber", saved.OrderNumber))
		return OutcomeDuplicate, nil
	}
	c.log.Info("已建立訂單", zap.String("orderNumber", saved.OrderNumber), zap.Uint("userId", userID))

	if err := c.store.ClearCart(ctx, userID); err != nil {
		c.log.Warn("無法清空購物車", zap.Uint("userId", userID), zap.Error(err))
	}

	c.sendOrderConfirmation(ctx, saved, items, session.Metadata["customer_name"])
	c.feed.Publish(feed.NewOrderEvent(feed.EventOrderCreated, saved))
	return OutcomeProcessed, nil
}

var shippingKeywords = []string{
	"versand", "shipping", "selbstabholung", "pickup",
	"montage", "assembly", "lieferung", "delivery",
}

func isShippingLine(description string) bool {
	lower := strings.ToLower(description)
	for _, keyword := range shippingKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// 已知配送方式時只比對該方式的運費名稱，未知時才用關鍵字判斷
func isShippingLineFor(method models.ShippingMethod, description string) bool {
	if !method.Valid() {
		return isShippingLine(description)
	}
	shipping, ok := payments.ShippingLineItem(method)
	return ok && strings.EqualFold(strings.TrimSpace(description), shipping.ProductName)
}

// SplitLineItems 將最後一筆運費明細與商品明細分開
func SplitLineItems(lines []payments.LineItem, method models.ShippingMethod) ([]models.OrderItem, int64) {
	var shippingCost int64
	if n := len(lines); n > 0 && isShippingLineFor(method, lines[n-1].Description) {
		shippingCost = lines[n-1].AmountTotal
		lines = lines[:n-1]
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		price := line.UnitAmount
		if price == 0 && line.Quantity > 0 {
			price = line.AmountTotal / line.Quantity
		}
		items = append(items, models.OrderItem{
			ProductName: line.Description,
			Price:       price,
			Quantity:    line.Quantity,
		})
	}
	return items, shippingCost
}

// 讀取明細失敗時仍建立沒有明細的訂單
func (c *Controller) fetchLineItems(ctx context.Context, sessionID string, method models.ShippingMethod) ([]models.OrderItem, int64) {
	if c.gateway == nil {
		return nil, 0
	}
	lines, err := c.gateway.ListLineItems(ctx, sessionID)
	if err != nil {
		c.log.Warn("無法讀取付款明細", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, 0
	}
	return SplitLineItems(lines, method)
}

func (c *Controller) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("ORD-%d-%s", c.now().UnixMilli(), suffix)
}

func (c *Controller) paymentIntentUpdated(ctx context.Context, evt payments.Event, status models.PaymentStatus) (Outcome, error) {
	intent, err := evt.PaymentIntent()
	if err != nil {
		return "", err
	}
	n, err := c.store.UpdatePaymentStatusByIntent(ctx, intent.ID, status)
	if err != nil {
		return "", err
	}
	if n == 0 {
		c.log.Info("沒有對應的訂單", zap.String("paymentIntent", intent.ID), zap.String("status", string(status)))
		return OutcomeIgnored, nil
	}
	c.log.Info("已更新付款狀態", zap.String("paymentIntent", intent.ID), zap.String("status", string(status)))
	return OutcomeProcessed, nil
}

type ShipmentInput struct {
	OrderID           uint
	TrackingNumber    string
	Carrier           models.Carrier
	EstimatedDelivery string
	IPAddress         string
}

type ShipResult struct {
	Order     *models.Order
	EmailSent bool
}

func (in ShipmentInput) validate() error {
	if in.OrderID == 0 {
		return apperr.Validation("缺少訂單 ID")
	}
	tracking := strings.TrimSpace(in.TrackingNumber)
	if tracking == "" {
		return apperr.Validation("追蹤號碼不可為空")
	}
	if len(tracking) > 255 {
		return apperr.Validation("追蹤號碼過長")
	}
	if !in.Carrier.Valid() {
		return apperr.Validation("無效的物流業者 %q", in.Carrier)
	}
	if len(in.EstimatedDelivery) > 64 {
		return apperr.Validation("預計送達時間過長")
	}
	return nil
}

// MarkShipped 標記出貨並寄送出貨通知，通知失敗不影響出貨結果
func (c *Controller) MarkShipped(ctx context.Context, actor *models.User, in ShipmentInput) (*ShipResult, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("需要管理員權限")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	shipment := repository.Shipment{
		TrackingNumber: strings.TrimSpace(in.TrackingNumber),
		Carrier:        in.Carrier,
	}
	if eta := strings.TrimSpace(in.EstimatedDelivery); eta != "" {
		shipment.EstimatedDelivery = &eta
	}

	order, err := c.store.MarkShipped(ctx, in.OrderID, shipment)
	if err != nil {
		return nil, err
	}
	c.log.Info("訂單已出貨",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("carrier", string(in.Carrier)),
		zap.Uint("by", actor.ID))

	c.audit(ctx, actor, in.IPAddress, "order.ship", order.ID, map[string]interface{}{
		"status":            order.Status,
		"trackingNumber":    shipment.TrackingNumber,
		"carrier":           shipment.Carrier,
		"estimatedDelivery": shipment.EstimatedDelivery,
	})

	sent := c.sendShippingNotification(ctx, order)
	c.feed.Publish(feed.NewOrderEvent(feed.EventOrderShipped, order))
	return &ShipResult{Order: order, EmailSent: sent}, nil
}

// UpdateStatus 管理員手動將訂單標記為已送達或取消
func (c *Controller) UpdateStatus(ctx context.Context, actor *models.User, orderID uint, status models.OrderStatus, ip string) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("需要管理員權限")
	}
	switch status {
	case models.OrderStatusDelivered, models.OrderStatusCancelled:
	case models.OrderStatusShipped:
		return nil, apperr.Validation("出貨請提供追蹤號碼")
	default:
		return nil, apperr.Validation("無法手動設定狀態 %q", status)
	}

	order, err := c.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	c.log.Info("訂單狀態已更新",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("status", string(status)),
		zap.Uint("by", actor.ID))

	c.audit(ctx, actor, ip, "order.status", order.ID, map[string]interface{}{"status": status})
	c.feed.Publish(feed.NewOrderEvent(feed.EventOrderStatus, order))
	return order, nil
}

func (c *Controller) audit(ctx context.Context, actor *models.User, ip, action string, orderID uint, changes map[string]interface{}) {
	data, err := json.Marshal(changes)
	if err != nil {
		c.log.Warn("無法序列化稽核資料", zap.Error(err))
		return
	}
	err = c.store.RecordAudit(ctx, repository.AuditEntry{
		UserID:     actor.ID,
		Action:     action,
		EntityType: "order",
		EntityID:   orderID,
		Changes:    string(data),
		IPAddress:  ip,
	})
	if err != nil {
		c.log.Warn("無法寫入稽核紀錄", zap.String("action", action), zap.Uint("orderId", orderID), zap.Error(err))
	}
}
