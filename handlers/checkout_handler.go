package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/email"
	"github.com/moebelhaus/shop-backend/middleware"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/orders"
	"go.uber.org/zap"
)

// 付款完成後導回的網址，以 Origin 為主
func (h *Handler) checkoutOrigin(c *gin.Context) string {
	if origin := strings.TrimSpace(c.GetHeader("Origin")); origin != "" {
		return strings.TrimRight(origin, "/")
	}
	return strings.TrimRight(h.Server.PublicBaseURL, "/")
}

// 建立 Stripe 付款頁面
func (h *Handler) CreateCheckoutSessionHandler(c *gin.Context) {
	var req struct {
		ShippingMethod models.ShippingMethod `json:"shippingMethod" binding:"required"`
		PromoCode      string                `json:"promoCode" binding:"max=64"`
		Language       string                `json:"language"`
	}
	if !h.bindJSON(c, "結帳資料格式錯誤", &req) {
		return
	}

	var lang email.Language
	if req.Language != "" {
		parsed, err := email.ParseLanguage(req.Language)
		if err != nil {
			h.respondError(c, "結帳資料格式錯誤", err)
			return
		}
		lang = parsed
	} else if accept := c.GetHeader("Accept-Language"); accept != "" {
		lang = email.NegotiateLanguage(accept)
	}

	session, err := h.Orders.StartCheckout(c.Request.Context(), middleware.CurrentUser(c), orders.CheckoutInput{
		ShippingMethod: req.ShippingMethod,
		PromoCode:      req.PromoCode,
		Language:       lang,
		Origin:         h.checkoutOrigin(c),
	})
	if err != nil {
		h.respondError(c, "建立付款頁面失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功建立付款頁面",
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// 查詢付款頁面狀態
func (h *Handler) GetCheckoutSessionHandler(c *gin.Context) {
	session, err := h.Orders.CheckoutSession(c.Request.Context(), middleware.CurrentUser(c), c.Param("sessionID"))
	if err != nil {
		h.respondError(c, "查詢付款狀態失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢付款狀態",
		"session": session,
	})
}

// Stripe webhook，簽章驗證需要原始 body
func (h *Handler) StripeWebhookHandler(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無法讀取請求內容"})
		return
	}

	evt, err := h.Verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.Log.Warn("webhook 簽章驗證失敗", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: " + err.Error()})
		return
	}

	outcome, err := h.Orders.HandleEvent(c.Request.Context(), evt)
	if err != nil {
		h.respondError(c, "處理 webhook 失敗", err)
		return
	}
	if outcome == orders.OutcomeTest {
		c.JSON(http.StatusOK, gin.H{"verified": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
