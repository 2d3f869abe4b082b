package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/middleware"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/orders"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// 查詢自己的訂單列表
func (h *Handler) GetOrderListHandler(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orderList, err := h.Store.ListOrdersByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, "無法查詢訂單列表", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢訂單列表",
		"orderList": orderList,
	})
}

// 查詢訂單詳細資料，非本人且非管理員一律回傳找不到
func (h *Handler) GetOrderDataHandler(c *gin.Context) {
	orderID, ok := h.paramID(c, "orderID")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	order, err := h.Store.GetOrderByID(ctx, orderID)
	if err != nil {
		h.respondError(c, "查詢訂單失敗", err)
		return
	}
	if !user.IsAdmin() && (order.UserID == nil || *order.UserID != user.ID) {
		h.respondError(c, "查詢訂單失敗", apperr.NotFound("訂單不存在"))
		return
	}

	items, err := h.Store.OrderItems(ctx, order.ID)
	if err != nil {
		h.respondError(c, "查詢訂單明細失敗", err)
		return
	}
	order.OrderItems = items

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢訂單",
		"order":   order,
	})
}

// 查詢所有訂單（管理後台）
func (h *Handler) GetAllOrdersHandler(c *gin.Context) {
	orderList, err := h.Store.ListAllOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, "無法查詢訂單列表", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢訂單列表",
		"orderList": orderList,
	})
}

// 標記出貨
func (h *Handler) ShipOrderHandler(c *gin.Context) {
	orderID, ok := h.paramID(c, "orderID")
	if !ok {
		return
	}
	var req struct {
		TrackingNumber    string         `json:"trackingNumber" binding:"required,max=255"`
		Carrier           models.Carrier `json:"carrier" binding:"required"`
		EstimatedDelivery string         `json:"estimatedDelivery" binding:"max=64"`
	}
	if !h.bindJSON(c, "出貨資料格式錯誤", &req) {
		return
	}

	result, err := h.Orders.MarkShipped(c.Request.Context(), middleware.CurrentUser(c), orders.ShipmentInput{
		OrderID:           orderID,
		TrackingNumber:    req.TrackingNumber,
		Carrier:           req.Carrier,
		EstimatedDelivery: req.EstimatedDelivery,
		IPAddress:         c.ClientIP(),
	})
	if err != nil {
		h.respondError(c, "標記出貨失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功標記出貨",
		"order":     result.Order,
		"emailSent": result.EmailSent,
	})
}

// 修改訂單狀態（已送達或取消）
func (h *Handler) UpdateOrderStatusHandler(c *gin.Context) {
	orderID, ok := h.paramID(c, "orderID")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if !h.bindJSON(c, "訂單狀態格式錯誤", &req) {
		return
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), orderID, req.Status, c.ClientIP())
	if err != nil {
		h.respondError(c, "修改訂單狀態失敗", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改訂單狀態",
		"order":   order,
	})
}

func euros(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// 產生訂單報表，每個訂單明細一列
func buildOrdersWorkbook(orderList []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"OrderNumber", "CreatedAt", "Status", "PaymentStatus", "CustomerEmail",
		"ShippingMethod", "ShippingCost", "Discount", "Total",
		"Carrier", "TrackingNumber", "Product", "Color", "Quantity", "UnitPrice",
	}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		headerRow.AddCell().SetString(header)
	}

	for _, order := range orderList {
		items := order.OrderItems
		if len(items) == 0 {
			items = []models.OrderItem{{}}
		}
		for _, item := range items {
			row := sheet.AddRow()
			row.AddCell().SetString(order.OrderNumber)
			row.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetString(string(order.Status))
			row.AddCell().SetString(string(order.PaymentStatus))
			row.AddCell().SetString(order.CustomerEmail)
			row.AddCell().SetString(string(order.ShippingMethod))
			row.AddCell().SetString(euros(order.ShippingCost))
			row.AddCell().SetString(euros(order.DiscountAmount))
			row.AddCell().SetString(euros(order.TotalAmount))
			carrier := ""
			if order.Carrier != nil {
				carrier = string(*order.Carrier)
			}
			row.AddCell().SetString(carrier)
			row.AddCell().SetString(optional(order.TrackingNumber))
			row.AddCell().SetString(item.ProductName)
			row.AddCell().SetString(optional(item.VariantColor))
			row.AddCell().SetInt64(item.Quantity)
			row.AddCell().SetString(euros(item.Price))
		}
	}
	return file, nil
}

// 匯出訂單 Excel
func (h *Handler) ExportOrdersHandler(c *gin.Context) {
	orderList, err := h.Store.ListOrdersWithItems(c.Request.Context())
	if err != nil {
		h.respondError(c, "無法查詢訂單列表", err)
		return
	}

	file, err := buildOrdersWorkbook(orderList)
	if err != nil {
		h.respondError(c, "無法建立 Excel 檔案", err)
		return
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		h.respondError(c, "無法建立 Excel 檔案", err)
		return
	}

	filename := "orders-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Expires", "0")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// 訂單即時通知（WebSocket）
func (h *Handler) OrderFeedHandler(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request)
}
