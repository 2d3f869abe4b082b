package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/middleware"
)

type cartLineResponse struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"productId"`
	VariantID *uint  `json:"variantId"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Price     int64  `json:"price"`
	Discount  int    `json:"discount"`
	Quantity  int64  `json:"quantity"`
}

// 查詢購物車
func (h *Handler) GetCartHandler(c *gin.Context) {
	user := middleware.CurrentUser(c)
	lines, err := h.Store.CartLines(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, "查詢購物車失敗", err)
		return
	}

	items := make([]cartLineResponse, 0, len(lines))
	var total int64
	for _, line := range lines {
		item := cartLineResponse{
			ID:        line.Item.ID,
			ProductID: line.Product.ID,
			VariantID: line.Item.VariantID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Discount:  line.Product.Discount,
			Quantity:  line.Item.Quantity,
		}
		if line.Variant != nil {
			item.Color = line.Variant.Color
		}
		total += (line.Product.Price - line.Product.Price*int64(line.Product.Discount)/100) * line.Item.Quantity
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢購物車",
		"items":   items,
		"total":   total,
	})
}

// 加入購物車
func (h *Handler) AddToCartHandler(c *gin.Context) {
	var req struct {
		ProductID uint  `json:"productId" binding:"required"`
		VariantID *uint `json:"variantId"`
		Quantity  int64 `json:"quantity" binding:"required,gte=1,lte=99"`
	}
	if !h.bindJSON(c, "綁定請求資料錯誤", &req) {
		return
	}

	user := middleware.CurrentUser(c)
	item, err := h.Store.AddToCart(c.Request.Context(), user.ID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		h.respondError(c, "加入購物車失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功加入購物車",
		"cartItem": item,
	})
}

// 刪除購物車項目
func (h *Handler) DeleteCartItemHandler(c *gin.Context) {
	itemID, ok := h.paramID(c, "itemID")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.Store.RemoveFromCart(c.Request.Context(), user.ID, itemID); err != nil {
		h.respondError(c, "刪除購物車項目失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除購物車項目",
	})
}
