// Package email 產生訂單確認與出貨通知的 HTML 郵件內容。
// 相同的輸入與語言一定產生完全相同的輸出。
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"money": FormatMoney,
	"lines": func(s string) []string {
		return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	},
}

var (
	orderConfirmationTemplate    = mustParse("templates/order_confirmation.html")
	shippingNotificationTemplate = mustParse("templates/shipping_notification.html")
)

func mustParse(page string) *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", page))
}

type Item struct {
	ProductName  string
	Price        int64
	Quantity     int64
	VariantColor string
}

type OrderConfirmation struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	Items           []Item
	Subtotal        int64
	DiscountAmount  int64
	ShippingCost    int64
	Total           int64
	ShippingMethod  string
	ShippingAddress string
	Language        Language
}

type ShippingNotification struct {
	OrderNumber       string
	CustomerName      string
	CustomerEmail     string
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery string
	ShippingMethod    string
	Language          Language
}

type page struct {
	Lang      Language
	Title     string
	Greeting  string
	Questions string
	Contact   string
	Footer    string
	Rights    string
}

type orderConfirmationPage struct {
	page
	OrderConfirmation
	T                   orderConfirmationText
	ShippingMethodLabel string
}

type shippingNotificationPage struct {
	ShippingNotification
	page
	T                   shippingNotificationText
	ShippingMethodLabel string
	TrackingURL         string
}

func RenderOrderConfirmation(data OrderConfirmation) (string, error) {
	lang, err := ParseLanguage(string(data.Language))
	if err != nil {
		return "", err
	}
	t := orderConfirmationTexts[lang]
	return render(orderConfirmationTemplate, orderConfirmationPage{
		page: page{
			Lang:      lang,
			Title:     t.Title,
			Greeting:  t.Greeting,
			Questions: t.Questions,
			Contact:   t.Contact,
			Footer:    t.Footer,
			Rights:    t.Rights,
		},
		OrderConfirmation:   data,
		T:                   t,
		ShippingMethodLabel: ShippingMethodLabel(lang, data.ShippingMethod),
	})
}

func RenderShippingNotification(data ShippingNotification) (string, error) {
	lang, err := ParseLanguage(string(data.Language))
	if err != nil {
		return "", err
	}
	t := shippingNotificationTexts[lang]
	return render(shippingNotificationTemplate, shippingNotificationPage{
		ShippingNotification: data,
		page: page{
			Lang:      lang,
			Title:     t.Title,
			Greeting:  t.Greeting,
			Questions: t.Questions,
			Contact:   t.Contact,
			Footer:    t.Footer,
			Rights:    t.Rights,
		},
		T:                   t,
		ShippingMethodLabel: ShippingMethodLabel(lang, data.ShippingMethod),
		TrackingURL:         TrackingURL(data.Carrier, data.TrackingNumber),
	})
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
