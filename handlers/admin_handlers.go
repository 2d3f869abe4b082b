package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/middleware"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

func isValidImageExtensions(file *multipart.FileHeader) bool {
	allowExtensions := []string{".jpg", ".jpeg", ".png", ".webp"}
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

func makeUniqueFileName(file *multipart.FileHeader) string {
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	fileBase := repository.Slugify(strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)))
	if fileBase == "" {
		fileBase = "image"
	}
	return fmt.Sprintf("%s_%d%s", fileBase, time.Now().UnixNano(), fileExt)
}

// 寫入稽核紀錄，失敗只記錄不影響回應
func (h *Handler) audit(c *gin.Context, action, entityType string, entityID uint, changes interface{}) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return
	}
	var data string
	if changes != nil {
		if b, err := json.Marshal(changes); err == nil {
			data = string(b)
		}
	}
	err := h.Store.RecordAudit(c.Request.Context(), repository.AuditEntry{
		UserID:     user.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    data,
		IPAddress:  c.ClientIP(),
	})
	if err != nil {
		h.Log.Warn("無法寫入稽核紀錄", zap.String("action", action), zap.Error(err))
	}
}

// 查詢使用者列表
func (h *Handler) GetUserListHandler(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, "無法獲取使用者列表", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功獲取使用者列表",
		"userList": users,
	})
}

// 修改使用者角色
func (h *Handler) UpdateUserRoleHandler(c *gin.Context) {
	userID, ok := h.paramID(c, "userID")
	if !ok {
		return
	}
	var req struct {
		Role models.Role `json:"role" binding:"required,oneof=user admin"`
	}
	if !h.bindJSON(c, "角色格式錯誤", &req) {
		return
	}
	if current := middleware.CurrentUser(c); current != nil && current.ID == userID && req.Role != models.RoleAdmin {
		h.respondError(c, "修改角色失敗", apperr.Validation("不能移除自己的管理員權限"))
		return
	}

	user, err := h.Store.UpdateUserRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		h.respondError(c, "修改角色失敗", err)
		return
	}
	h.audit(c, "user.role", "user", user.ID, req)

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改角色",
		"user":    user,
	})
}

// 上傳商品圖片
func (h *Handler) UploadImageHandler(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.respondError(c, "綁定圖片失敗", apperr.Wrap(apperr.KindValidation, err, "缺少圖片檔案"))
		return
	}
	if !isValidImageExtensions(file) {
		h.respondError(c, "圖片檔案格式錯誤", apperr.Validation("只接受 jpg、png 或 webp"))
		return
	}
	if file.Size > maxImageSize {
		h.respondError(c, "圖片檔案過大", apperr.Validation("圖片不可超過 10MB"))
		return
	}

	uploadsDir := h.Server.UploadsDir
	if uploadsDir == "" {
		uploadsDir = "./uploads"
	}
	//檢查uploads資料夾是否存在，如不存在則創建
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		h.respondError(c, "建立uploads資料夾失敗", err)
		return
	}

	imageName := makeUniqueFileName(file)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadsDir, imageName)); err != nil {
		h.respondError(c, "儲存圖片失敗", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "成功上傳圖片",
		"imageName": imageName,
		"imageUrl":  strings.TrimRight(h.Server.PublicBaseURL, "/") + "/uploads/" + imageName,
	})
}

// 價格以歐元輸入，尺寸以公分輸入
type productRequest struct {
	Name         string           `json:"name" binding:"required,max=255"`
	Description  string           `json:"description"`
	CategoryID   uint             `json:"categoryId" binding:"required"`
	Price        decimal.Decimal  `json:"price"`
	Discount     int              `json:"discount" binding:"gte=0,lte=100"`
	Material     *string          `json:"material"`
	Color        *string          `json:"color"`
	Style        *string          `json:"style"`
	Width        *decimal.Decimal `json:"width"`
	Height       *decimal.Decimal `json:"height"`
	Depth        *decimal.Decimal `json:"depth"`
	Weight       *decimal.Decimal `json:"weight"`
	Stock        int64            `json:"stock" binding:"gte=0"`
	SKU          *string          `json:"sku" binding:"omitempty,max=255"`
	IsBestseller bool             `json:"isBestseller"`
	IsNew        bool             `json:"isNew"`
	Images       []string         `json:"images" binding:"omitempty,dive,max=512"`
}

type productUpdateRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=255"`
	Description  *string          `json:"description"`
	CategoryID   *uint            `json:"categoryId"`
	Price        *decimal.Decimal `json:"price"`
	Discount     *int             `json:"discount" binding:"omitempty,gte=0,lte=100"`
	Material     *string          `json:"material"`
	Color        *string          `json:"color"`
	Style        *string          `json:"style"`
	Dimensions   *string          `json:"dimensions" binding:"omitempty,max=255"`
	Weight       *string          `json:"weight" binding:"omitempty,max=255"`
	Stock        *int64           `json:"stock" binding:"omitempty,gte=0"`
	IsBestseller *bool            `json:"isBestseller"`
	IsNew        *bool            `json:"isNew"`
}

func toCents(price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, apperr.Validation("價格必須大於 0")
	}
	return price.Shift(2).Round(0).IntPart(), nil
}

// 寬 x 高 x 深，三個都有才產生
func formatDimensions(width, height, depth *decimal.Decimal) *string {
	if width == nil || height == nil || depth == nil {
		return nil
	}
	s := fmt.Sprintf("%s x %s x %s cm", width.String(), height.String(), depth.String())
	return &s
}

func formatWeight(weight *decimal.Decimal) *string {
	if weight == nil || !weight.IsPositive() {
		return nil
	}
	s := weight.String() + "kg"
	return &s
}

// 查詢所有商品（管理後台）
func (h *Handler) GetAllProductsHandler(c *gin.Context) {
	products, err := h.Store.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, "無法讀取商品列表", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功查詢商品列表",
		"products": products,
	})
}

// 新增商品
func (h *Handler) CreateProductHandler(c *gin.Context) {
	var req productRequest
	if !h.bindJSON(c, "商品資料格式錯誤", &req) {
		return
	}
	price, err := toCents(req.Price)
	if err != nil {
		h.respondError(c, "商品資料格式錯誤", err)
		return
	}

	product, err := h.Store.CreateProduct(c.Request.Context(), repository.ProductInput{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Price:        price,
		Discount:     req.Discount,
		Material:     req.Material,
		Color:        req.Color,
		Style:        req.Style,
		Dimensions:   formatDimensions(req.Width, req.Height, req.Depth),
		Weight:       formatWeight(req.Weight),
		Stock:        req.Stock,
		SKU:          req.SKU,
		IsBestseller: req.IsBestseller,
		IsNew:        req.IsNew,
		Images:       req.Images,
	})
	if err != nil {
		h.respondError(c, "新增商品失敗", err)
		return
	}
	h.Products.Invalidate(c.Request.Context())
	h.audit(c, "product.create", "product", product.ID, gin.H{"name": product.Name, "price": product.Price})

	c.JSON(http.StatusCreated, gin.H{
		"message": "成功新增商品",
		"product": product,
	})
}

// 修改商品
func (h *Handler) UpdateProductHandler(c *gin.Context) {
	productID, ok := h.paramID(c, "productID")
	if !ok {
		return
	}
	var req productUpdateRequest
	if !h.bindJSON(c, "商品資料格式錯誤", &req) {
		return
	}

	update := repository.ProductUpdate{
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Discount:     req.Discount,
		Material:     req.Material,
		Color:        req.Color,
		Style:        req.Style,
		Dimensions:   req.Dimensions,
		Weight:       req.Weight,
		Stock:        req.Stock,
		IsBestseller: req.IsBestseller,
		IsNew:        req.IsNew,
	}
	if req.Price != nil {
		price, err := toCents(*req.Price)
		if err != nil {
			h.respondError(c, "商品資料格式錯誤", err)
			return
		}
		update.Price = &price
	}

	product, err := h.Store.UpdateProduct(c.Request.Context(), productID, update)
	if err != nil {
		h.respondError(c, "修改商品失敗", err)
		return
	}
	h.Products.Invalidate(c.Request.Context())
	h.audit(c, "product.update", "product", product.ID, req)

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改商品",
		"product": product,
	})
}

// 刪除商品
func (h *Handler) DeleteProductHandler(c *gin.Context) {
	productID, ok := h.paramID(c, "productID")
	if !ok {
		return
	}
	product, err := h.Store.DeleteProduct(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, "刪除商品失敗", err)
		return
	}
	h.Products.Invalidate(c.Request.Context())
	h.audit(c, "product.delete", "product", product.ID, gin.H{"name": product.Name})

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除商品",
	})
}

// 查詢單一資料的稽核紀錄
func (h *Handler) GetAuditLogsHandler(c *gin.Context) {
	entityID, ok := h.paramID(c, "entityID")
	if !ok {
		return
	}
	logs, err := h.Store.ListAuditLogs(c.Request.Context(), c.Param("entityType"), entityID)
	if err != nil {
		h.respondError(c, "查詢稽核紀錄失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢稽核紀錄",
		"auditLogs": logs,
	})
}
