package payments

import (
	"strconv"
	"strings"

	"github.com/moebelhaus/shop-backend/models"
)

const Currency = "eur"

type ShippingRate struct {
	Name   string
	Amount int64
}

// 奧地利境內運費，金額為歐分
var ShippingRates = map[models.ShippingMethod]ShippingRate{
	models.ShippingStandard: {Name: "Standard Versand (3-5 Werktage)", Amount: 990},
	models.ShippingExpress:  {Name: "Express Versand (1-2 Werktage)", Amount: 1990},
	models.ShippingPickup:   {Name: "Selbstabholung", Amount: 0},
	models.ShippingAssembly: {Name: "Lieferung mit Montage", Amount: 4990},
}

type CartItem struct {
	ProductName        string
	ProductDescription string
	ProductImage       string
	Price              int64
	Quantity           int64
}

type CheckoutRequest struct {
	Items          []CartItem
	ShippingMethod models.ShippingMethod
	PromoCode      string
	DiscountAmount int64
	UserID         uint
	CustomerEmail  string
	CustomerName   string
	Language       string
	// Origin 前端網址，付款完成後導回
	Origin string
}

type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	AmountTotal   int64  `json:"amountTotal"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customerEmail"`
	UserID        string `json:"-"`
}

type LineItem struct {
	Description string
	UnitAmount  int64
	Quantity    int64
	AmountTotal int64
}

// 免運的配送方式不產生運費明細
func ShippingLineItem(method models.ShippingMethod) (CartItem, bool) {
	rate, ok := ShippingRates[method]
	if !ok || rate.Amount == 0 {
		return CartItem{}, false
	}
	return CartItem{ProductName: rate.Name, Price: rate.Amount, Quantity: 1}, true
}

// 商品明細加上運費明細
func LineItemsFor(req CheckoutRequest) []CartItem {
	items := make([]CartItem, 0, len(req.Items)+1)
	items = append(items, req.Items...)
	if shipping, ok := ShippingLineItem(req.ShippingMethod); ok {
		items = append(items, shipping)
	}
	return items
}

// 付款完成的 webhook 依這些 metadata 建立訂單
func Metadata(req CheckoutRequest) map[string]string {
	return map[string]string{
		"user_id":         strconv.FormatUint(uint64(req.UserID), 10),
		"customer_email":  req.CustomerEmail,
		"customer_name":   req.CustomerName,
		"shipping_method": string(req.ShippingMethod),
		"promo_code":      req.PromoCode,
		"discount_amount": strconv.FormatInt(req.DiscountAmount, 10),
		"language":        req.Language,
	}
}

func SuccessURL(origin string) string {
	return strings.TrimRight(origin, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
}

func CancelURL(origin string) string {
	return strings.TrimRight(origin, "/") + "/checkout"
}
