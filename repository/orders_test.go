package repository

import (
	"context"
	"testing"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidOrder(number, session, intent string) *models.Order {
	userID := uint(1)
	return &models.Order{
		UserID:                  &userID,
		OrderNumber:             number,
		Status:                  models.OrderStatusProcessing,
		TotalAmount:             130790,
		ShippingCost:            990,
		ShippingMethod:          models.ShippingStandard,
		PaymentMethod:           "card",
		PaymentStatus:           models.PaymentStatusCompleted,
		CustomerEmail:           "max@example.com",
		ShippingAddress:         `{"name":"Max Mustermann"}`,
		Language:                "de",
		StripeCheckoutSessionID: &session,
		StripePaymentIntentID:   &intent,
	}
}

func sampleItems() []models.OrderItem {
	return []models.OrderItem{
		{ProductName: "Eiche Esstisch", Price: 89900, Quantity: 1},
		{ProductName: "Stuhl Set (4 Stück)", Price: 39900, Quantity: 1},
	}
}

func TestCreateOrderWithItems(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order, created, err := store.CreateOrder(ctx, paidOrder("ORD-1", "cs_1", "pi_1"), sampleItems())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, order.ID)

	items, err := store.OrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Eiche Esstisch", items[0].ProductName)
	assert.Equal(t, order.ID, items[1].OrderID)

	byNumber, err := store.GetOrderByNumber(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)
}

func TestCreateOrderReplayIsIdempotent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	first, created, err := store.CreateOrder(ctx, paidOrder("ORD-A", "cs_same", "pi_a"), sampleItems())
	require.NoError(t, err)
	require.True(t, created)

	// 同一個 session 的第二次事件使用不同的訂單編號
	second, created, err := store.CreateOrder(ctx, paidOrder("ORD-B", "cs_same", "pi_a"), sampleItems())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ORD-A", second.OrderNumber)

	orders, err := store.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	items, err := store.OrderItems(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCreateOrderRejectsNegativeAmounts(t *testing.T) {
	store := createTestStore(t)
	order := paidOrder("ORD-NEG", "cs_neg", "pi_neg")
	order.DiscountAmount = -1

	_, _, err := store.CreateOrder(context.Background(), order, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdatePaymentStatusByIntent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order, _, err := store.CreateOrder(ctx, paidOrder("ORD-2", "cs_2", "pi_2"), nil)
	require.NoError(t, err)

	rows, err := store.UpdatePaymentStatusByIntent(ctx, "pi_2", models.PaymentStatusFailed)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = store.UpdatePaymentStatusByIntent(ctx, "pi_unknown", models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Zero(t, rows)

	reloaded, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, reloaded.PaymentStatus)
}

func TestMarkShippedTransitions(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order, _, err := store.CreateOrder(ctx, paidOrder("ORD-3", "cs_3", "pi_3"), nil)
	require.NoError(t, err)

	eta := "15.01.2026"
	shipped, err := store.MarkShipped(ctx, order.ID, Shipment{
		TrackingNumber:    "DHL123",
		Carrier:           models.CarrierDHL,
		EstimatedDelivery: &eta,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.TrackingNumber)
	assert.Equal(t, "DHL123", *shipped.TrackingNumber)
	assert.Equal(t, models.CarrierDHL, *shipped.Carrier)

	// 修正追蹤號碼
	corrected, err := store.MarkShipped(ctx, order.ID, Shipment{TrackingNumber: "DHL456", Carrier: models.CarrierDHL})
	require.NoError(t, err)
	assert.Equal(t, "DHL456", *corrected.TrackingNumber)
	assert.Nil(t, corrected.EstimatedDelivery)

	delivered, err := store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)

	_, err = store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = store.MarkShipped(ctx, 999, Shipment{TrackingNumber: "X", Carrier: models.CarrierGLS})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestMarkShippedRequiresCompletedPayment(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order, _, err := store.CreateOrder(ctx, paidOrder("ORD-4", "cs_4", "pi_4"), nil)
	require.NoError(t, err)
	_, err = store.UpdatePaymentStatusByIntent(ctx, "pi_4", models.PaymentStatusFailed)
	require.NoError(t, err)

	_, err = store.MarkShipped(ctx, order.ID, Shipment{TrackingNumber: "T1", Carrier: models.CarrierPost})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	reloaded, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, reloaded.Status)
	assert.Nil(t, reloaded.TrackingNumber)

	cancelled, err := store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}

func TestListOrdersByUser(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, _, err := store.CreateOrder(ctx, paidOrder("ORD-5", "cs_5", "pi_5"), sampleItems())
	require.NoError(t, err)
	other := paidOrder("ORD-6", "cs_6", "pi_6")
	otherUser := uint(2)
	other.UserID = &otherUser
	_, _, err = store.CreateOrder(ctx, other, nil)
	require.NoError(t, err)

	orders, err := store.ListOrdersByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-5", orders[0].OrderNumber)

	withItems, err := store.ListOrdersWithItems(ctx)
	require.NoError(t, err)
	require.Len(t, withItems, 2)
	assert.Len(t, withItems[0].OrderItems, 2)
}

func TestRecordAudit(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordAudit(ctx, AuditEntry{
		UserID:     1,
		Action:     "order.mark_shipped",
		EntityType: "order",
		EntityID:   42,
		Changes:    `{"trackingNumber":"DHL1"}`,
	}))

	logs, err := store.ListAuditLogs(ctx, "order", 42)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "order.mark_shipped", logs[0].Action)
}
