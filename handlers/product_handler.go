package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s輸入錯誤", name)
	}
	return n, nil
}

// 查詢商品列表，先讀 Redis 快取，未命中再從資料庫讀取並寫回快取
func (h *Handler) GetProductListHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil {
		h.respondError(c, "查詢數量輸入錯誤", err)
		return
	}
	//限制最高查詢數量為50
	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		h.respondError(c, "offset輸入錯誤", err)
		return
	}
	categoryID, err := queryInt(c, "categoryId", 0)
	if err != nil {
		h.respondError(c, "分類輸入錯誤", err)
		return
	}

	ctx := c.Request.Context()
	products, total, hit := h.Products.Page(ctx, uint(categoryID), limit, offset)
	if !hit {
		var all []models.Product
		if categoryID == 0 {
			all, err = h.Store.ListProducts(ctx)
		} else {
			all, _, err = h.Store.ListProductsByCategory(ctx, uint(categoryID), -1, -1)
		}
		if err != nil {
			h.respondError(c, "無法讀取商品列表", err)
			return
		}
		h.Products.Fill(ctx, uint(categoryID), all)

		total = int64(len(all))
		products = page(all, limit, offset)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢商品列表",
		"products":   products,
		"totalCount": total,
	})
}

func page(products []models.Product, limit, offset int) []models.Product {
	if offset >= len(products) {
		return []models.Product{}
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end]
}

func (h *Handler) productDetail(c *gin.Context, product *models.Product) {
	ctx := c.Request.Context()
	images, err := h.Store.ProductImages(ctx, product.ID)
	if err != nil {
		h.respondError(c, "查詢商品圖片失敗", err)
		return
	}
	variants, err := h.Store.ProductVariants(ctx, product.ID)
	if err != nil {
		h.respondError(c, "查詢商品款式失敗", err)
		return
	}
	reviews, err := h.Store.ListReviews(ctx, product.ID)
	if err != nil {
		h.respondError(c, "查詢商品評論失敗", err)
		return
	}
	if err := h.Store.IncrementViewCount(ctx, product.ID); err != nil {
		h.Log.Warn("無法更新瀏覽次數", zap.Uint("productId", product.ID), zap.Error(err))
	}

	product.Images = images
	product.Variants = variants
	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢商品資料",
		"product": product,
		"reviews": reviews,
	})
}

// 查詢商品詳細資料
func (h *Handler) GetProductDataHandler(c *gin.Context) {
	productID, ok := h.paramID(c, "productID")
	if !ok {
		return
	}
	product, err := h.Store.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, "查詢商品資料失敗", err)
		return
	}
	h.productDetail(c, product)
}

func (h *Handler) GetProductBySlugHandler(c *gin.Context) {
	product, err := h.Store.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, "查詢商品資料失敗", err)
		return
	}
	h.productDetail(c, product)
}
