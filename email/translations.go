package email

type orderConfirmationText struct {
	Title           string
	Greeting        string
	ThankYou        string
	OrderDetails    string
	OrderNumber     string
	Product         string
	Quantity        string
	Price           string
	Subtotal        string
	Discount        string
	Shipping        string
	Total           string
	ShippingAddress string
	ShippingMethod  string
	NextSteps       string
	Steps           []string
	Questions       string
	Contact         string
	Footer          string
	Rights          string
}

type shippingNotificationText struct {
	Title             string
	Greeting          string
	GoodNews          string
	OrderNumber       string
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery string
	ShippingMethod    string
	TrackShipment     string
	TrackingHint      string
	DeliveryInfo      string
	Tips              []string
	Questions         string
	Contact           string
	Footer            string
	Rights            string
}

var orderConfirmationTexts = map[Language]orderConfirmationText{
	German: {
		Title:           "Bestellbestätigung",
		Greeting:        "Sehr geehrte/r",
		ThankYou:        "Vielen Dank für Ihre Bestellung bei Möbelhaus! Wir haben Ihre Zahlung erhalten und werden Ihre Bestellung schnellstmöglich bearbeiten.",
		OrderDetails:    "Bestelldetails",
		OrderNumber:     "Bestellnummer",
		Product:         "Produkt",
		Quantity:        "Menge",
		Price:           "Preis",
		Subtotal:        "Zwischensumme",
		Discount:        "Rabatt",
		Shipping:        "Versand",
		Total:           "Gesamtsumme",
		ShippingAddress: "Lieferadresse",
		ShippingMethod:  "Versandart",
		NextSteps:       "Nächste Schritte",
		Steps: []string{
			"Wir bereiten Ihre Bestellung für den Versand vor",
			"Sie erhalten eine Versandbenachrichtigung mit Tracking-Nummer",
			"Ihre Möbel werden in 3-5 Werktagen geliefert",
		},
		Questions: "Fragen?",
		Contact:   "Bei Fragen zu Ihrer Bestellung kontaktieren Sie uns gerne unter",
		Footer:    "Dies ist eine automatische E-Mail. Bitte antworten Sie nicht auf diese Nachricht.",
		Rights:    "Alle Rechte vorbehalten.",
	},
	English: {
		Title:           "Order Confirmation",
		Greeting:        "Dear",
		ThankYou:        "Thank you for your order at Möbelhaus! We have received your payment and will process your order as soon as possible.",
		OrderDetails:    "Order Details",
		OrderNumber:     "Order Number",
		Product:         "Product",
		Quantity:        "Quantity",
		Price:           "Price",
		Subtotal:        "Subtotal",
		Discount:        "Discount",
		Shipping:        "Shipping",
		Total:           "Total",
		ShippingAddress: "Shipping Address",
		ShippingMethod:  "Shipping Method",
		NextSteps:       "Next Steps",
		Steps: []string{
			"We prepare your order for shipping",
			"You will receive a shipping notification with tracking number",
			"Your furniture will be delivered in 3-5 business days",
		},
		Questions: "Questions?",
		Contact:   "If you have any questions about your order, please contact us at",
		Footer:    "This is an automated email. Please do not reply to this message.",
		Rights:    "All rights reserved.",
	},
}

var shippingNotificationTexts = map[Language]shippingNotificationText{
	German: {
		Title:             "Versandbestätigung",
		Greeting:          "Sehr geehrte/r",
		GoodNews:          "Gute Nachrichten! Ihre Bestellung wurde versandt und ist auf dem Weg zu Ihnen.",
		OrderNumber:       "Bestellnummer",
		TrackingNumber:    "Sendungsnummer",
		Carrier:           "Versanddienstleister",
		EstimatedDelivery: "Voraussichtliche Lieferung",
		ShippingMethod:    "Versandart",
		TrackShipment:     "Sendung verfolgen",
		TrackingHint:      "Es kann bis zu 24 Stunden dauern, bis die Sendungsverfolgung aktiv ist.",
		DeliveryInfo:      "Informationen zur Zustellung",
		Tips: []string{
			"Bitte stellen Sie sicher, dass am Liefertag jemand zu Hause ist",
			"Falls Sie nicht angetroffen werden, wird eine Benachrichtigung hinterlassen",
			"Große Möbelstücke werden bis zur Bordsteinkante geliefert, sofern keine Montage gebucht wurde",
		},
		Questions: "Fragen?",
		Contact:   "Bei Fragen zu Ihrer Lieferung kontaktieren Sie uns gerne unter",
		Footer:    "Dies ist eine automatische E-Mail. Bitte antworten Sie nicht auf diese Nachricht.",
		Rights:    "Alle Rechte vorbehalten.",
	},
	English: {
		Title:             "Shipping Confirmation",
		Greeting:          "Dear",
		GoodNews:          "Good news! Your order has been shipped and is on its way to you.",
		OrderNumber:       "Order Number",
		TrackingNumber:    "Tracking Number",
		Carrier:           "Carrier",
		EstimatedDelivery: "Estimated Delivery",
		ShippingMethod:    "Shipping Method",
		TrackShipment:     "Track Shipment",
		TrackingHint:      "It may take up to 24 hours before tracking information becomes available.",
		DeliveryInfo:      "Delivery Information",
		Tips: []string{
			"Please make sure someone is at home on the day of delivery",
			"If nobody is at home, a notification will be left for you",
			"Large furniture is delivered to the curbside unless assembly was booked",
		},
		Questions: "Questions?",
		Contact:   "If you have any questions about your delivery, please contact us at",
		Footer:    "This is an automated email. Please do not reply to this message.",
		Rights:    "All rights reserved.",
	},
}

var shippingMethodLabels = map[Language]map[string]string{
	German: {
		"standard": "Standard Versand (3-5 Werktage)",
		"express":  "Express Versand (1-2 Werktage)",
		"pickup":   "Selbstabholung",
		"assembly": "Lieferung mit Montage",
	},
	English: {
		"standard": "Standard Shipping (3-5 business days)",
		"express":  "Express Shipping (1-2 business days)",
		"pickup":   "Self Pickup",
		"assembly": "Delivery with Assembly",
	},
}

// 未知的配送方式原樣顯示
func ShippingMethodLabel(lang Language, method string) string {
	if label, ok := shippingMethodLabels[lang][method]; ok {
		return label
	}
	return method
}

func OrderConfirmationSubject(lang Language, orderNumber string) string {
	if lang == English {
		return "Order Confirmation - " + orderNumber
	}
	return "Bestellbestätigung - " + orderNumber
}

func ShippingNotificationSubject(lang Language, orderNumber string) string {
	if lang == English {
		return "Your order has been shipped - " + orderNumber
	}
	return "Ihre Bestellung wurde versandt - " + orderNumber
}
