package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/cache"
	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/feed"
	"github.com/moebelhaus/shop-backend/orders"
	"github.com/moebelhaus/shop-backend/payments"
	"github.com/moebelhaus/shop-backend/repository"
	"go.uber.org/zap"
)

// Handler 所有 API handler 共用的依賴
type Handler struct {
	Store     *repository.Store
	Orders    *orders.Controller
	Verifier  payments.Verifier
	Products  *cache.ProductCache
	Blacklist *cache.TokenBlacklist
	Hub       *feed.Hub
	Server    config.ServerConfig
	Auth      config.AuthConfig
	Log       *zap.Logger
}

// 依錯誤分類回傳對應的狀態碼，內部錯誤不回傳細節
func (h *Handler) respondError(c *gin.Context, message string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(message,
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"message": message,
		"error":   apperr.Message(err),
		"code":    apperr.KindOf(err),
	})
}

var validationMessages = map[string]string{
	"required": "為必填欄位",
	"min":      "低於最小值",
	"max":      "超過最大值",
	"oneof":    "不是允許的值",
	"email":    "不是有效的 email",
	"gt":       "必須大於 %s",
	"gte":      "不可小於 %s",
	"lte":      "不可大於 %s",
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// 將綁定錯誤轉成欄位訊息
func validationDetails(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "格式錯誤"
		}
		if strings.Contains(msg, "%s") {
			msg = fmt.Sprintf(msg, fe.Param())
		}
		details[fieldName(fe)] = msg
	}
	return details
}

func (h *Handler) bindJSON(c *gin.Context, message string, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		body := gin.H{
			"message": message,
			"error":   "請求格式錯誤",
			"code":    apperr.KindValidation,
		}
		if details := validationDetails(err); details != nil {
			body["fields"] = details
		}
		c.JSON(http.StatusBadRequest, body)
		return false
	}
	return true
}

func (h *Handler) paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "ID輸入錯誤",
			"error":   fmt.Sprintf("無效的 %s", name),
			"code":    apperr.KindValidation,
		})
		return 0, false
	}
	return uint(id), true
}

// HealthHandler 檢查資料庫連線
func (h *Handler) HealthHandler(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.respondError(c, "資料庫無法使用", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
