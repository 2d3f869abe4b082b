package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 訂單狀態只能前進，cancelled 只能從 pending 或 processing 進入。
// shipped -> shipped 用於修正追蹤號碼。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusShipped, OrderStatusDelivered},
}

// 檢查訂單狀態是否可以轉換
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// 回傳可以轉換到 next 的所有狀態，用於條件更新
func StatusesLeadingTo(next OrderStatus) []OrderStatus {
	var from []OrderStatus
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

// shipped 與 delivered 需要付款已完成
func (s OrderStatus) RequiresPayment() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingPickup   ShippingMethod = "pickup"
	ShippingAssembly ShippingMethod = "assembly"
)

var ShippingMethods = []ShippingMethod{ShippingStandard, ShippingExpress, ShippingPickup, ShippingAssembly}

func (m ShippingMethod) Valid() bool {
	for _, v := range ShippingMethods {
		if v == m {
			return true
		}
	}
	return false
}

type Carrier string

const (
	CarrierDHL          Carrier = "DHL"
	CarrierDPD          Carrier = "DPD"
	CarrierAustrianPost Carrier = "Austrian Post"
	CarrierPost         Carrier = "Post"
	CarrierGLS          Carrier = "GLS"
	CarrierOther        Carrier = "Other"
)

var Carriers = []Carrier{CarrierDHL, CarrierDPD, CarrierAustrianPost, CarrierPost, CarrierGLS, CarrierOther}

func (c Carrier) Valid() bool {
	for _, v := range Carriers {
		if v == c {
			return true
		}
	}
	return false
}

// Order 一筆已付款的結帳。金額欄位皆為歐分。
type Order struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	UserID                  *uint          `gorm:"index" json:"userId"`
	OrderNumber             string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"orderNumber"`
	Status                  OrderStatus    `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	TotalAmount             int64          `gorm:"not null" json:"totalAmount"`
	ShippingCost            int64          `gorm:"not null;default:0" json:"shippingCost"`
	DiscountAmount          int64          `gorm:"not null;default:0" json:"discountAmount"`
	PromoCode               *string        `gorm:"type:varchar(255)" json:"promoCode"`
	ShippingMethod          ShippingMethod `gorm:"type:varchar(20);not null;default:standard" json:"shippingMethod"`
	PaymentMethod           string         `gorm:"type:varchar(32)" json:"paymentMethod"`
	PaymentStatus           PaymentStatus  `gorm:"type:varchar(20);not null;default:pending" json:"paymentStatus"`
	CustomerEmail           string         `gorm:"type:varchar(320);not null" json:"customerEmail"`
	CustomerPhone           *string        `gorm:"type:varchar(32)" json:"customerPhone"`
	ShippingAddress         string         `gorm:"type:text;not null" json:"shippingAddress"`
	BillingAddress          *string        `gorm:"type:text" json:"billingAddress"`
	TrackingNumber          *string        `gorm:"type:varchar(255)" json:"trackingNumber"`
	Carrier                 *Carrier       `gorm:"type:varchar(32)" json:"carrier"`
	EstimatedDelivery       *string        `gorm:"type:varchar(64)" json:"estimatedDelivery"`
	Language                string         `gorm:"type:varchar(8);not null;default:de" json:"language"`
	Notes                   *string        `gorm:"type:text" json:"notes"`
	StripePaymentIntentID   *string        `gorm:"type:varchar(255);index" json:"-"`
	StripeCheckoutSessionID *string        `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	OrderItems              []OrderItem    `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt               time.Time      `json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`
}
