package email

import (
	"strings"
	"testing"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func germanConfirmation() OrderConfirmation {
	return OrderConfirmation{
		OrderNumber:   "ORD-TEST-123",
		CustomerName:  "Max Mustermann",
		CustomerEmail: "max@example.com",
		Items: []Item{
			{ProductName: "Eiche Esstisch", Price: 89900, Quantity: 1, VariantColor: "Natur"},
			{ProductName: "Stuhl Set (4 Stück)", Price: 39900, Quantity: 1},
		},
		Subtotal:        129800,
		ShippingCost:    990,
		Total:           130790,
		ShippingMethod:  "standard",
		ShippingAddress: "Max Mustermann\nMusterstraße 123\n1010 Wien\nÖsterreich",
		Language:        German,
	}
}

func shipment(lang Language) ShippingNotification {
	return ShippingNotification{
		OrderNumber:    "ORD-TEST-456",
		CustomerName:   "Max Mustermann",
		CustomerEmail:  "max@example.com",
		TrackingNumber: "DHL123456789",
		Carrier:        "DHL",
		ShippingMethod: "express",
		Language:       lang,
	}
}

func TestOrderConfirmationHappyPath(t *testing.T) {
	html, err := RenderOrderConfirmation(germanConfirmation())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<html lang="de">`)
	assert.Contains(t, html, "Bestellbestätigung")
	assert.Contains(t, html, "ORD-TEST-123")
	assert.Contains(t, html, "Max Mustermann")
	assert.Contains(t, html, "Eiche Esstisch")
	assert.Contains(t, html, "Natur")
	assert.Contains(t, html, "€899.00")
	assert.Contains(t, html, "€399.00")
	assert.Contains(t, html, "€1298.00")
	assert.Contains(t, html, "€9.90")
	assert.Contains(t, html, "€1307.90")
	assert.Contains(t, html, "Vielen Dank")
	assert.Contains(t, html, "Möbelhaus")
	assert.Contains(t, html, "Musterstraße 123<br>1010 Wien")
	assert.NotContains(t, html, "Rabatt")
}

func TestOrderConfirmationEnglish(t *testing.T) {
	data := germanConfirmation()
	data.Language = English
	data.ShippingMethod = "express"
	data.DiscountAmount = 1000

	html, err := RenderOrderConfirmation(data)
	require.NoError(t, err)

	assert.Contains(t, html, "Order Confirmation")
	assert.Contains(t, html, "Thank you")
	assert.Contains(t, html, "Express Shipping")
	assert.Contains(t, html, "-€10.00")
	assert.NotContains(t, html, "Vielen Dank")
}

func TestOrderConfirmationEscapesPayload(t *testing.T) {
	data := germanConfirmation()
	data.CustomerName = `<script>alert("x")</script>`

	html, err := RenderOrderConfirmation(data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderingIsDeterministic(t *testing.T) {
	for _, lang := range []Language{German, English} {
		data := germanConfirmation()
		data.Language = lang
		first, err := RenderOrderConfirmation(data)
		require.NoError(t, err)
		second, err := RenderOrderConfirmation(data)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		note := shipment(lang)
		note.EstimatedDelivery = "15.01.2026"
		first, err = RenderShippingNotification(note)
		require.NoError(t, err)
		second, err = RenderShippingNotification(note)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestUnknownLanguageFailsFast(t *testing.T) {
	data := germanConfirmation()
	data.Language = "fr"
	_, err := RenderOrderConfirmation(data)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = RenderShippingNotification(shipment(""))
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{
		0:        "€0.00",
		5:        "€0.05",
		990:      "€9.90",
		12345:    "€123.45",
		89900:    "€899.00",
		130790:   "€1307.90",
		10000000: "€100000.00",
	}
	for cents, want := range cases {
		assert.Equal(t, want, FormatMoney(cents))
	}
	assert.Equal(t, "-€1.50", FormatMoney(-150))
}

func TestShippingNotificationGerman(t *testing.T) {
	note := shipment(German)
	note.EstimatedDelivery = "15.01.2026"

	html, err := RenderShippingNotification(note)
	require.NoError(t, err)

	assert.Contains(t, html, "Versandbestätigung")
	assert.Contains(t, html, "ORD-TEST-456")
	assert.Contains(t, html, "Max Mustermann")
	assert.Contains(t, html, "DHL123456789")
	assert.Contains(t, html, "15.01.2026")
	assert.Contains(t, html, "Voraussichtliche Lieferung")
	assert.Contains(t, html, "Gute Nachrichten")
	assert.Contains(t, html, "Sendung verfolgen")
	assert.Contains(t, html, `href="https://www.dhl.at/`)
	assert.Contains(t, html, "Informationen zur Zustellung")
	assert.Contains(t, html, "jemand zu Hause ist")
	assert.Contains(t, html, "Benachrichtigung hinterlassen")
	assert.Contains(t, html, "Bordsteinkante")
}

func TestShippingNotificationEnglish(t *testing.T) {
	note := shipment(English)
	note.Carrier = "DPD"
	note.TrackingNumber = "DPD987654321"

	html, err := RenderShippingNotification(note)
	require.NoError(t, err)

	assert.Contains(t, html, "Shipping Confirmation")
	assert.Contains(t, html, "DPD987654321")
	assert.Contains(t, html, "Good news")
	assert.Contains(t, html, "Track Shipment")
	assert.Contains(t, html, "tracking.dpd.de")
}

func TestEstimatedDeliveryOmitted(t *testing.T) {
	for _, lang := range []Language{German, English} {
		html, err := RenderShippingNotification(shipment(lang))
		require.NoError(t, err)
		assert.NotContains(t, html, "Voraussichtliche Lieferung")
		assert.NotContains(t, html, "Estimated Delivery")
	}
}

func TestShippingMethodLabelsInBothTemplates(t *testing.T) {
	expected := map[Language]map[string]string{
		German: {
			"standard": "Standard Versand",
			"express":  "Express Versand",
			"pickup":   "Selbstabholung",
			"assembly": "Lieferung mit Montage",
		},
		English: {
			"standard": "Standard Shipping",
			"express":  "Express Shipping",
			"pickup":   "Self Pickup",
			"assembly": "Delivery with Assembly",
		},
	}

	for lang, methods := range expected {
		for method, label := range methods {
			confirmation := germanConfirmation()
			confirmation.Language = lang
			confirmation.ShippingMethod = method
			html, err := RenderOrderConfirmation(confirmation)
			require.NoError(t, err)
			assert.Contains(t, html, label, "%s/%s", lang, method)

			note := shipment(lang)
			note.ShippingMethod = method
			html, err = RenderShippingNotification(note)
			require.NoError(t, err)
			assert.Contains(t, html, label, "%s/%s", lang, method)
		}
	}

	assert.Equal(t, "drone", ShippingMethodLabel(German, "drone"))
}

func TestTrackingURLCoverage(t *testing.T) {
	hosts := map[string]string{
		"DHL":           "dhl.at",
		"DPD":           "tracking.dpd.de",
		"Austrian Post": "post.at",
		"Post":          "deutschepost.de",
		"GLS":           "gls-group.eu",
	}
	for carrier, host := range hosts {
		url := TrackingURL(carrier, "ABC123XYZ")
		assert.Contains(t, url, host, carrier)
		assert.Contains(t, url, "ABC123XYZ", carrier)
	}

	fallback := TrackingURL("Other", "TRACK123")
	assert.Contains(t, fallback, "google.com/search")
	assert.Contains(t, fallback, "TRACK123")

	unknown := TrackingURL("Unknown Carrier", "TRACK456")
	assert.Contains(t, unknown, "google.com/search")
	assert.Contains(t, unknown, "TRACK456")
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "Bestellbestätigung - ORD-1", OrderConfirmationSubject(German, "ORD-1"))
	assert.Equal(t, "Order Confirmation - ORD-1", OrderConfirmationSubject(English, "ORD-1"))
	assert.Contains(t, ShippingNotificationSubject(German, "ORD-1"), "versandt")
	assert.Contains(t, ShippingNotificationSubject(English, "ORD-1"), "shipped")
}

func TestLanguageSelection(t *testing.T) {
	lang, err := ParseLanguage("EN")
	require.NoError(t, err)
	assert.Equal(t, English, lang)

	_, err = ParseLanguage("fr")
	assert.Error(t, err)

	assert.Equal(t, German, NegotiateLanguage(""))
	assert.Equal(t, English, NegotiateLanguage("en-US,en;q=0.9"))
	assert.Equal(t, German, NegotiateLanguage("de-AT,de;q=0.9,en;q=0.8"))
	assert.Equal(t, English, NegotiateLanguage("fr-FR,en;q=0.5"))
	assert.Equal(t, German, NegotiateLanguage("fr-FR"))
}
