package orders

import (
	"context"
	"strconv"
	"strings"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/email"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/payments"
	"github.com/moebelhaus/shop-backend/repository"
	"go.uber.org/zap"
)

type CheckoutInput struct {
	ShippingMethod models.ShippingMethod
	PromoCode      string
	Language       email.Language
	Origin         string
}

// 折扣後的單價，金額以伺服器端商品資料為準
func unitPrice(p models.Product) int64 {
	if p.Discount <= 0 || p.Discount > 100 {
		return p.Price
	}
	return p.Price - p.Price*int64(p.Discount)/100
}

func checkoutItems(lines []repository.CartLine) []payments.CartItem {
	items := make([]payments.CartItem, 0, len(lines))
	for _, line := range lines {
		name := line.Product.Name
		if line.Variant != nil && line.Variant.Color != "" {
			name += " (" + line.Variant.Color + ")"
		}
		items = append(items, payments.CartItem{
			ProductName:        name,
			ProductDescription: truncate(line.Product.Description, 500),
			Price:              unitPrice(line.Product),
			Quantity:           line.Item.Quantity,
		})
	}
	return items
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

// StartCheckout 以使用者的購物車建立付款頁面
func (c *Controller) StartCheckout(ctx context.Context, user *models.User, in CheckoutInput) (*payments.CheckoutSession, error) {
	if user == nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "請先登入")
	}
	if !in.ShippingMethod.Valid() {
		return nil, apperr.Validation("無效的配送方式 %q", in.ShippingMethod)
	}
	if strings.TrimSpace(in.Origin) == "" {
		return nil, apperr.Validation("缺少來源網址")
	}
	if c.gateway == nil {
		return nil, apperr.New(apperr.KindUnavailable, "付款服務未設定")
	}

	lines, err := c.store.CartLines(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.Validation("購物車是空的")
	}

	lang := in.Language
	if lang == "" {
		lang = email.DefaultLanguage
		if user.PreferredLanguage != nil {
			if preferred, err := email.ParseLanguage(*user.PreferredLanguage); err == nil {
				lang = preferred
			}
		}
	}

	session, err := c.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Items:          checkoutItems(lines),
		ShippingMethod: in.ShippingMethod,
		PromoCode:      strings.TrimSpace(in.PromoCode),
		UserID:         user.ID,
		CustomerEmail:  user.EmailAddress(),
		CustomerName:   user.DisplayName(),
		Language:       string(lang),
		Origin:         in.Origin,
	})
	if err != nil {
		c.log.Error("無法建立付款頁面", zap.Uint("userId", user.ID), zap.Error(err))
		return nil, err
	}
	c.log.Info("已建立付款頁面", zap.Uint("userId", user.ID), zap.String("sessionId", session.ID))
	return session, nil
}

// CheckoutSession 只有建立該 session 的使用者或管理員可以查詢
func (c *Controller) CheckoutSession(ctx context.Context, user *models.User, sessionID string) (*payments.CheckoutSession, error) {
	if user == nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "請先登入")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.Validation("缺少 session ID")
	}
	if c.gateway == nil {
		return nil, apperr.New(apperr.KindUnavailable, "付款服務未設定")
	}
	session, err := c.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && session.UserID != strconv.FormatUint(uint64(user.ID), 10) {
		return nil, apperr.NotFound("付款 session 不存在")
	}
	return session, nil
}
