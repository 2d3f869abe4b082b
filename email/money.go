package email

import "github.com/shopspring/decimal"

// FormatMoney 將歐分格式化為 €123.45
func FormatMoney(cents int64) string {
	amount := decimal.New(cents, -2)
	if amount.IsNegative() {
		return "-€" + amount.Abs().StringFixed(2)
	}
	return "€" + amount.StringFixed(2)
}
