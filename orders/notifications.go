package orders

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/moebelhaus/shop-backend/email"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/notify"
	"go.uber.org/zap"
)

type stripeAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

type shippingDetails struct {
	Name    string         `json:"name"`
	Address *stripeAddress `json:"address"`
}

func parseShippingDetails(raw string) (shippingDetails, bool) {
	var details shippingDetails
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return details, false
	}
	if err := json.Unmarshal([]byte(trimmed), &details); err != nil {
		return details, false
	}
	return details, true
}

func firstLine(s string) string {
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// CustomerName 從收件地址取出稱呼，找不到時使用通用稱呼
func CustomerName(shippingAddress string, lang email.Language) string {
	if details, ok := parseShippingDetails(shippingAddress); ok {
		if name := strings.TrimSpace(details.Name); name != "" {
			return name
		}
		if details.Address != nil {
			if line := firstLine(details.Address.Line1); line != "" {
				return line
			}
		}
	} else if line := firstLine(shippingAddress); line != "" {
		return line
	}

	if lang == email.English {
		return "Customer"
	}
	return "Kunde"
}

// FormatAddress 將 Stripe 的地址 JSON 轉成郵件中顯示的多行文字
func FormatAddress(shippingAddress string) string {
	details, ok := parseShippingDetails(shippingAddress)
	if !ok {
		return strings.TrimSpace(shippingAddress)
	}
	var lines []string
	if details.Name != "" {
		lines = append(lines, details.Name)
	}
	if a := details.Address; a != nil {
		for _, line := range []string{a.Line1, a.Line2, strings.TrimSpace(a.PostalCode + " " + a.City), a.Country} {
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func orderLanguage(order *models.Order) email.Language {
	lang, err := email.ParseLanguage(order.Language)
	if err != nil {
		return email.DefaultLanguage
	}
	return lang
}

func (c *Controller) sendOrderConfirmation(ctx context.Context, order *models.Order, items []models.OrderItem, customerName string) bool {
	if order.CustomerEmail == "" {
		c.log.Warn("訂單沒有 email，略過確認信", zap.String("orderNumber", order.OrderNumber))
		return false
	}
	lang := orderLanguage(order)
	if strings.TrimSpace(customerName) == "" {
		customerName = CustomerName(order.ShippingAddress, lang)
	}

	emailItems := make([]email.Item, 0, len(items))
	var subtotal int64
	for _, item := range items {
		emailItem := email.Item{ProductName: item.ProductName, Price: item.Price, Quantity: item.Quantity}
		if item.VariantColor != nil {
			emailItem.VariantColor = *item.VariantColor
		}
		emailItems = append(emailItems, emailItem)
		subtotal += item.Price * item.Quantity
	}
	if len(items) == 0 {
		subtotal = order.TotalAmount - order.ShippingCost + order.DiscountAmount
	}

	html, err := email.RenderOrderConfirmation(email.OrderConfirmation{
		OrderNumber:     order.OrderNumber,
		CustomerName:    customerName,
		CustomerEmail:   order.CustomerEmail,
		Items:           emailItems,
		Subtotal:        subtotal,
		DiscountAmount:  order.DiscountAmount,
		ShippingCost:    order.ShippingCost,
		Total:           order.TotalAmount,
		ShippingMethod:  string(order.ShippingMethod),
		ShippingAddress: FormatAddress(order.ShippingAddress),
		Language:        lang,
	})
	if err != nil {
		c.log.Error("無法產生確認信", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return false
	}
	return c.confirm.Dispatch(ctx, notify.Message{
		To:      order.CustomerEmail,
		Subject: email.OrderConfirmationSubject(lang, order.OrderNumber),
		HTML:    html,
	})
}

func (c *Controller) sendShippingNotification(ctx context.Context, order *models.Order) bool {
	if order.CustomerEmail == "" || order.TrackingNumber == nil || order.Carrier == nil {
		c.log.Warn("訂單資料不足，略過出貨通知", zap.String("orderNumber", order.OrderNumber))
		return false
	}
	lang := orderLanguage(order)
	data := email.ShippingNotification{
		OrderNumber:    order.OrderNumber,
		CustomerName:   CustomerName(order.ShippingAddress, lang),
		CustomerEmail:  order.CustomerEmail,
		TrackingNumber: *order.TrackingNumber,
		Carrier:        string(*order.Carrier),
		ShippingMethod: string(order.ShippingMethod),
		Language:       lang,
	}
	if order.EstimatedDelivery != nil {
		data.EstimatedDelivery = *order.EstimatedDelivery
	}

	html, err := email.RenderShippingNotification(data)
	if err != nil {
		c.log.Error("無法產生出貨通知", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return false
	}
	return c.mail.Dispatch(ctx, notify.Message{
		To:      order.CustomerEmail,
		Subject: email.ShippingNotificationSubject(lang, order.OrderNumber),
		HTML:    html,
	})
}
