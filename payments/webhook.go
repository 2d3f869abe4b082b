package payments

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

type Event struct {
	ID   string
	Type string
	Data json.RawMessage
}

// Stripe 後台送出的測試事件
func (e Event) IsTest() bool {
	return strings.HasPrefix(e.ID, "evt_test_")
}

type Verifier interface {
	Verify(payload []byte, signature string) (Event, error)
}

type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

// Verify 驗證簽章，失敗時回傳 validation 錯誤
func (v *StripeVerifier) Verify(payload []byte, signature string) (Event, error) {
	if signature == "" {
		return Event{}, apperr.Validation("缺少 Stripe 簽章")
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, apperr.Wrap(apperr.KindValidation, err, "Stripe 簽章驗證失敗")
	}
	out := Event{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data != nil {
		out.Data = evt.Data.Raw
	}
	return out, nil
}

type TotalDetails struct {
	AmountDiscount int64 `json:"amount_discount"`
	AmountShipping int64 `json:"amount_shipping"`
}

type CheckoutSessionPayload struct {
	ID              string            `json:"id"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	AmountSubtotal  int64             `json:"amount_subtotal"`
	Currency        string            `json:"currency"`
	Customer        string            `json:"customer"`
	CustomerEmail   string            `json:"customer_email"`
	PaymentIntent   string            `json:"payment_intent"`
	Metadata        map[string]string `json:"metadata"`
	TotalDetails    *TotalDetails     `json:"total_details"`
	CustomerDetails json.RawMessage   `json:"customer_details"`
	ShippingDetails json.RawMessage   `json:"shipping_details"`
	// 新版 API 把 shipping_details 移到這裡
	CollectedInformation *struct {
		ShippingDetails json.RawMessage `json:"shipping_details"`
	} `json:"collected_information"`
}

func (p *CheckoutSessionPayload) Paid() bool {
	return p.PaymentStatus == "paid"
}

func (p *CheckoutSessionPayload) UserID() (uint, error) {
	raw := p.Metadata["user_id"]
	if raw == "" {
		return 0, apperr.Validation("metadata 缺少 user_id")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("metadata user_id 無效")
	}
	return uint(id), nil
}

// 折扣優先取 Stripe 實際套用的金額
func (p *CheckoutSessionPayload) DiscountAmount() int64 {
	if p.TotalDetails != nil && p.TotalDetails.AmountDiscount > 0 {
		return p.TotalDetails.AmountDiscount
	}
	n, _ := strconv.ParseInt(p.Metadata["discount_amount"], 10, 64)
	return n
}

// 以建立付款頁面時記下的 email 為主
func (p *CheckoutSessionPayload) Email() string {
	if email := p.Metadata["customer_email"]; email != "" {
		return email
	}
	if p.CustomerEmail != "" {
		return p.CustomerEmail
	}
	var details struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(p.CustomerDetails, &details) == nil {
		return details.Email
	}
	return ""
}

func (p *CheckoutSessionPayload) ShippingAddress() string {
	if !isEmptyJSON(p.ShippingDetails) {
		return string(p.ShippingDetails)
	}
	if p.CollectedInformation != nil && !isEmptyJSON(p.CollectedInformation.ShippingDetails) {
		return string(p.CollectedInformation.ShippingDetails)
	}
	return "{}"
}

func (p *CheckoutSessionPayload) BillingAddress() string {
	if isEmptyJSON(p.CustomerDetails) {
		return "{}"
	}
	return string(p.CustomerDetails)
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

type PaymentIntentPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (e Event) CheckoutSession() (*CheckoutSessionPayload, error) {
	var p CheckoutSessionPayload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "無法解析 checkout session")
	}
	if p.ID == "" {
		return nil, apperr.Validation("checkout session 缺少 id")
	}
	return &p, nil
}

func (e Event) PaymentIntent() (*PaymentIntentPayload, error) {
	var p PaymentIntentPayload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "無法解析 payment intent")
	}
	if p.ID == "" {
		return nil, apperr.Validation("payment intent 缺少 id")
	}
	return &p, nil
}
