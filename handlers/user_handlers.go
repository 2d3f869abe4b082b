package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/email"
	"github.com/moebelhaus/shop-backend/middleware"
	"go.uber.org/zap"
)

// 查詢目前登入的使用者，未登入時 user 為 null
func (h *Handler) GetUserProfileHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢使用者資料",
		"user":    middleware.CurrentUser(c),
	})
}

// 登出：將 token 加入黑名單並清除 cookie
func (h *Handler) LogOutHandler(c *gin.Context) {
	if claims := middleware.CurrentClaims(c); claims != nil {
		ttl := claims.RemainingTTL(time.Now())
		if err := h.Blacklist.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
			h.Log.Warn("無法撤銷 token", zap.String("jti", claims.ID), zap.Error(err))
		}
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.Auth.CookieName, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功登出",
		"success": true,
	})
}

// 變更偏好語言
func (h *Handler) UpdateLanguageHandler(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if !h.bindJSON(c, "語言格式錯誤", &req) {
		return
	}
	lang, err := email.ParseLanguage(req.Language)
	if err != nil {
		h.respondError(c, "語言格式錯誤", err)
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.Store.SetPreferredLanguage(c.Request.Context(), user.ID, string(lang)); err != nil {
		h.respondError(c, "變更語言失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功變更語言",
		"language": lang,
	})
}

func (h *Handler) GetWishlistHandler(c *gin.Context) {
	items, err := h.Store.ListWishlist(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, "查詢收藏清單失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功查詢收藏清單",
		"wishlist": items,
	})
}

func (h *Handler) GetAddressesHandler(c *gin.Context) {
	addresses, err := h.Store.ListAddresses(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, "查詢地址失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢地址",
		"addresses": addresses,
	})
}

// 查詢紅利點數，沒有紀錄時回傳 0 點
func (h *Handler) GetLoyaltyHandler(c *gin.Context) {
	points, err := h.Store.GetLoyaltyPoints(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, "查詢紅利點數失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢紅利點數",
		"loyalty": points,
	})
}
