package orders

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/email"
	"github.com/moebelhaus/shop-backend/feed"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/notify"
	"github.com/moebelhaus/shop-backend/payments"
	"github.com/moebelhaus/shop-backend/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeGateway struct {
	lines    []payments.LineItem
	linesErr error
	sessions map[string]*payments.CheckoutSession
	requests []payments.CheckoutRequest
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	return &payments.CheckoutSession{ID: "cs_new", URL: "https://checkout.stripe.com/c/pay/cs_new"}, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, id string) (*payments.CheckoutSession, error) {
	if s, ok := g.sessions[id]; ok {
		return s, nil
	}
	return nil, apperr.NotFound("付款 session 不存在")
}

func (g *fakeGateway) ListLineItems(context.Context, string) ([]payments.LineItem, error) {
	return g.lines, g.linesErr
}

type mailbox struct {
	sent []notify.Message
	fail bool
}

func (m *mailbox) Dispatch(_ context.Context, msg notify.Message) bool {
	if m.fail {
		return false
	}
	m.sent = append(m.sent, msg)
	return true
}

type feedRecorder struct {
	events []feed.OrderEvent
}

func (f *feedRecorder) Publish(event feed.OrderEvent) {
	f.events = append(f.events, event)
}

type memoryEventLog map[string]bool

func (m memoryEventLog) Seen(_ context.Context, id string) (bool, error) { return m[id], nil }
func (m memoryEventLog) Remember(_ context.Context, id string) error {
	m[id] = true
	return nil
}

type testEnv struct {
	store   *repository.Store
	gateway *fakeGateway
	mail    *mailbox
	feed    *feedRecorder
	events  memoryEventLog
	ctrl    *Controller
	admin   *models.User
	user    *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := repository.NewStore(db)
	ctx := context.Background()
	require.NoError(t, store.AutoMigrate(ctx))

	name, mail := "Max Mustermann", "max@example.com"
	user, err := store.UpsertUser(ctx, repository.Identity{OpenID: "user-1", Name: &name, Email: &mail}, "owner-1")
	require.NoError(t, err)
	admin, err := store.UpsertUser(ctx, repository.Identity{OpenID: "owner-1"}, "owner-1")
	require.NoError(t, err)

	env := &testEnv{
		store:   store,
		gateway: &fakeGateway{sessions: map[string]*payments.CheckoutSession{}},
		mail:    &mailbox{},
		feed:    &feedRecorder{},
		events:  memoryEventLog{},
		admin:   admin,
		user:    user,
	}
	env.ctrl = NewController(store, env.gateway, env.mail, env.events, env.feed, zap.NewNop())
	env.ctrl.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return env
}

func completedEvent(eventID, sessionID string, userID uint, lang string) payments.Event {
	return payments.Event{
		ID:   eventID,
		Type: payments.EventCheckoutCompleted,
		Data: []byte(fmt.Sprintf(`{
			"id": %q,
			"payment_status": "paid",
			"amount_total": 50890,
			"customer": "cus_42",
			"payment_intent": "pi_%s",
			"metadata": {"user_id": "%d", "shipping_method": "standard", "language": %q, "customer_name": "Max Mustermann"},
			"customer_details": {"email": "max@example.com"},
			"shipping_details": {"name": "Max Mustermann", "address": {"line1": "Hauptstraße 1", "postal_code": "1010", "city": "Wien", "country": "AT"}}
		}`, sessionID, sessionID, userID, lang)),
	}
}

func (env *testEnv) paidOrder(t *testing.T, lang string) *models.Order {
	t.Helper()
	env.gateway.lines = []payments.LineItem{
		{Description: "Sofa Oslo", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
		{Description: "Standard Versand (3-5 Werktage)", UnitAmount: 990, Quantity: 1, AmountTotal: 990},
	}
	outcome, err := env.ctrl.HandleEvent(context.Background(), completedEvent("evt_setup", "cs_setup", env.user.ID, lang))
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	orders, err := env.store.ListOrdersByUser(context.Background(), env.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	env.mail.sent = nil
	env.feed.events = nil
	return &orders[0]
}

func TestCheckoutCompletedCreatesOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category, err := env.store.CreateCategory(ctx, repository.CategoryInput{Name: "Sofas"})
	require.NoError(t, err)
	product, err := env.store.CreateProduct(ctx, repository.ProductInput{Name: "Sofa Oslo", CategoryID: category.ID, Price: 49900, Stock: 3})
	require.NoError(t, err)
	_, err = env.store.AddToCart(ctx, env.user.ID, product.ID, nil, 1)
	require.NoError(t, err)

	env.gateway.lines = []payments.LineItem{
		{Description: "Sofa Oslo", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
		{Description: "Standard Versand (3-5 Werktage)", UnitAmount: 990, Quantity: 1, AmountTotal: 990},
	}

	outcome, err := env.ctrl.HandleEvent(ctx, completedEvent("evt_1", "cs_1", env.user.ID, "en"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)

	orders, err := env.store.ListOrdersByUser(ctx, env.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.EqualValues(t, 50890, order.TotalAmount)
	assert.EqualValues(t, 990, order.ShippingCost)
	assert.Equal(t, "en", order.Language)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.Equal(t, "max@example.com", order.CustomerEmail)
	assert.Regexp(t, regexp.MustCompile(`^ORD-1700000000000-[0-9A-F]{9}$`), order.OrderNumber)
	assert.Contains(t, order.ShippingAddress, "Hauptstraße 1")

	items, err := env.store.OrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sofa Oslo", items[0].ProductName)

	cart, err := env.store.GetCart(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	user, err := env.store.GetUserByID(ctx, env.user.ID)
	require.NoError(t, err)
	require.NotNil(t, user.StripeCustomerID)
	assert.Equal(t, "cus_42", *user.StripeCustomerID)

	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "max@example.com", env.mail.sent[0].To)
	assert.Equal(t, "Order Confirmation - "+order.OrderNumber, env.mail.sent[0].Subject)
	assert.Contains(t, env.mail.sent[0].HTML, "Sofa Oslo")

	require.Len(t, env.feed.events, 1)
	assert.Equal(t, feed.EventOrderCreated, env.feed.events[0].Type)
	assert.True(t, env.events["evt_1"])
}

func TestCheckoutReplayCreatesOneOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ctrl.HandleEvent(ctx, completedEvent("evt_1", "cs_1", env.user.ID, "de"))
	require.NoError(t, err)

	// 相同事件重送
	outcome, err := env.ctrl.HandleEvent(ctx, completedEvent("evt_1", "cs_1", env.user.ID, "de"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	// 事件紀錄遺失時由唯一索引擋下
	outcome, err = env.ctrl.HandleEvent(ctx, completedEvent("evt_2", "cs_1", env.user.ID, "de"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	orders, err := env.store.ListOrdersByUser(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, env.mail.sent, 1)
	assert.Equal(t, "Bestellbestätigung - "+orders[0].OrderNumber, env.mail.sent[0].Subject)
}

func TestCheckoutUnpaidIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	evt := payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted,
		Data: []byte(`{"id":"cs_1","payment_status":"unpaid","metadata":{"user_id":"1"}}`)}

	outcome, err := env.ctrl.HandleEvent(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)

	orders, err := env.store.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, env.mail.sent)
}

func TestCheckoutMissingUserIsValidationError(t *testing.T) {
	env := newTestEnv(t)
	evt := payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted,
		Data: []byte(`{"id":"cs_1","payment_status":"paid","metadata":{}}`)}

	_, err := env.ctrl.HandleEvent(context.Background(), evt)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.False(t, env.events["evt_1"])
}

func TestCheckoutWithoutLineItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.gateway.linesErr = errors.New("stripe down")

	evt := payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted, Data: []byte(fmt.Sprintf(
		`{"id":"cs_1","payment_status":"paid","amount_total":20890,"metadata":{"user_id":"%d","language":"xx"},"total_details":{"amount_shipping":1990,"amount_discount":0},"customer_email":"max@example.com"}`,
		env.user.ID))}

	outcome, err := env.ctrl.HandleEvent(ctx, evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)

	orders, err := env.store.ListOrdersByUser(ctx, env.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.EqualValues(t, 1990, orders[0].ShippingCost)
	assert.Equal(t, "de", orders[0].Language)
	assert.Equal(t, models.ShippingStandard, orders[0].ShippingMethod)
	assert.Equal(t, "{}", orders[0].ShippingAddress)

	items, err := env.store.OrderItems(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	require.Len(t, env.mail.sent, 1)
	assert.Contains(t, env.mail.sent[0].HTML, "Kunde")
}

func TestCheckoutPickupKeepsAllProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.gateway.lines = []payments.LineItem{
		{Description: "Sofa Oslo", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
		{Description: "Montageset Wandregal", UnitAmount: 990, Quantity: 1, AmountTotal: 990},
	}

	evt := payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted, Data: []byte(fmt.Sprintf(
		`{"id":"cs_1","payment_status":"paid","amount_total":50890,"metadata":{"user_id":"%d","shipping_method":"pickup","language":"de"},"customer_email":"max@example.com"}`,
		env.user.ID))}

	outcome, err := env.ctrl.HandleEvent(ctx, evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)

	orders, err := env.store.ListOrdersByUser(ctx, env.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.ShippingPickup, orders[0].ShippingMethod)
	assert.Zero(t, orders[0].ShippingCost)

	items, err := env.store.OrderItems(ctx, orders[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Len(t, env.mail.sent, 1)
	assert.Contains(t, env.mail.sent[0].HTML, "Montageset Wandregal")
}

func TestConfirmationsUseSeparateDispatcher(t *testing.T) {
	env := newTestEnv(t)
	confirmations := &mailbox{}
	env.ctrl.SendConfirmationsVia(confirmations)

	order := env.paidOrder(t, "de")
	require.Len(t, confirmations.sent, 1)
	assert.Equal(t, "Bestellbestätigung - "+order.OrderNumber, confirmations.sent[0].Subject)
	assert.Empty(t, env.mail.sent)

	result, err := env.ctrl.MarkShipped(context.Background(), env.admin, ShipmentInput{
		OrderID:        order.ID,
		TrackingNumber: "00340434",
		Carrier:        models.CarrierDHL,
	})
	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	require.Len(t, env.mail.sent, 1)
	assert.Len(t, confirmations.sent, 1)
}

func TestPaymentIntentEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, "de")

	outcome, err := env.ctrl.HandleEvent(ctx, payments.Event{ID: "evt_f", Type: payments.EventPaymentFailed,
		Data: []byte(`{"id":"pi_cs_setup","status":"requires_payment_method"}`)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)

	updated, err := env.store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)

	outcome, err = env.ctrl.HandleEvent(ctx, payments.Event{ID: "evt_s", Type: payments.EventPaymentSucceeded,
		Data: []byte(`{"id":"pi_unknown","status":"succeeded"}`)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestUnhandledAndTestEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	outcome, err := env.ctrl.HandleEvent(ctx, payments.Event{ID: "evt_1", Type: "customer.created"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)

	outcome, err = env.ctrl.HandleEvent(ctx, payments.Event{ID: "evt_test_1", Type: payments.EventCheckoutCompleted})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTest, outcome)
}

func TestMarkShippedSendsNotificationInOrderLanguage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, "en")

	result, err := env.ctrl.MarkShipped(ctx, env.admin, ShipmentInput{
		OrderID:           order.ID,
		TrackingNumber:    " 00340434161094042557 ",
		Carrier:           models.CarrierDHL,
		EstimatedDelivery: "2-3 business days",
		IPAddress:         "10.0.0.1",
	})
	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.Equal(t, models.OrderStatusShipped, result.Order.Status)
	require.NotNil(t, result.Order.TrackingNumber)
	assert.Equal(t, "00340434161094042557", *result.Order.TrackingNumber)

	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "Your order has been shipped - "+order.OrderNumber, env.mail.sent[0].Subject)
	assert.Contains(t, env.mail.sent[0].HTML, "00340434161094042557")
	assert.Contains(t, env.mail.sent[0].HTML, "2-3 business days")

	logs, err := env.store.ListAuditLogs(ctx, "order", order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "order.ship", logs[0].Action)

	require.Len(t, env.feed.events, 1)
	assert.Equal(t, feed.EventOrderShipped, env.feed.events[0].Type)
}

func TestMarkShippedRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, "de")

	_, err := env.ctrl.MarkShipped(ctx, env.user, ShipmentInput{OrderID: order.ID, TrackingNumber: "123", Carrier: models.CarrierDHL})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = env.ctrl.MarkShipped(ctx, nil, ShipmentInput{OrderID: order.ID, TrackingNumber: "123", Carrier: models.CarrierDHL})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	unchanged, err := env.store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, unchanged.Status)
	assert.Nil(t, unchanged.TrackingNumber)
	assert.Empty(t, env.mail.sent)
}

func TestMarkShippedValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, "de")

	cases := []ShipmentInput{
		{OrderID: order.ID, TrackingNumber: "   ", Carrier: models.CarrierDHL},
		{OrderID: order.ID, TrackingNumber: "123", Carrier: "UPS"},
		{TrackingNumber: "123", Carrier: models.CarrierDHL},
	}
	for _, in := range cases {
		_, err := env.ctrl.MarkShipped(ctx, env.admin, in)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), in)
	}
	assert.Empty(t, env.mail.sent)
}

func TestMarkShippedMissingOrder(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ctrl.MarkShipped(context.Background(), env.admin, ShipmentInput{OrderID: 999, TrackingNumber: "123", Carrier: models.CarrierGLS})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Empty(t, env.mail.sent)
	assert.Empty(t, env.feed.events)
}

func TestMarkShippedSurvivesEmailFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, "de")
	env.mail.fail = true

	result, err := env.ctrl.MarkShipped(ctx, env.admin, ShipmentInput{OrderID: order.ID, TrackingNumber: "123", Carrier: models.CarrierPost})
	require.NoError(t, err)
	assert.False(t, result.EmailSent)

	shipped, err := env.store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, shipped.Status)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, "de")

	_, err := env.ctrl.UpdateStatus(ctx, env.user, order.ID, models.OrderStatusCancelled, "")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = env.ctrl.UpdateStatus(ctx, env.admin, order.ID, models.OrderStatusShipped, "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// processing 不能直接送達
	_, err = env.ctrl.UpdateStatus(ctx, env.admin, order.ID, models.OrderStatusDelivered, "")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = env.ctrl.MarkShipped(ctx, env.admin, ShipmentInput{OrderID: order.ID, TrackingNumber: "123", Carrier: models.CarrierDPD})
	require.NoError(t, err)

	delivered, err := env.ctrl.UpdateStatus(ctx, env.admin, order.ID, models.OrderStatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)

	_, err = env.ctrl.UpdateStatus(ctx, env.admin, order.ID, models.OrderStatusCancelled, "")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestSplitLineItems(t *testing.T) {
	items, shipping := SplitLineItems([]payments.LineItem{
		{Description: "Esstisch", UnitAmount: 89900, Quantity: 1, AmountTotal: 89900},
		{Description: "Stuhl", UnitAmount: 0, Quantity: 4, AmountTotal: 39600},
		{Description: "Lieferung mit Montage", UnitAmount: 4990, Quantity: 1, AmountTotal: 4990},
	}, models.ShippingAssembly)
	assert.EqualValues(t, 4990, shipping)
	require.Len(t, items, 2)
	assert.EqualValues(t, 9900, items[1].Price)

	// 只有最後一筆會被視為運費
	items, shipping = SplitLineItems([]payments.LineItem{
		{Description: "Shipping Box", UnitAmount: 500, Quantity: 1, AmountTotal: 500},
		{Description: "Sofa", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
	}, models.ShippingStandard)
	assert.Zero(t, shipping)
	assert.Len(t, items, 2)

	// 自取訂單沒有運費明細，名稱含關鍵字的商品仍是商品
	items, shipping = SplitLineItems([]payments.LineItem{
		{Description: "Sofa Oslo", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
		{Description: "Montageset Wandregal", UnitAmount: 990, Quantity: 1, AmountTotal: 990},
	}, models.ShippingPickup)
	assert.Zero(t, shipping)
	require.Len(t, items, 2)
	assert.Equal(t, "Montageset Wandregal", items[1].ProductName)

	// 已知配送方式只認該方式的運費名稱
	items, shipping = SplitLineItems([]payments.LineItem{
		{Description: "Sofa Oslo", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
		{Description: "Lieferung Zubehör", UnitAmount: 1500, Quantity: 1, AmountTotal: 1500},
	}, models.ShippingStandard)
	assert.Zero(t, shipping)
	assert.Len(t, items, 2)

	// 配送方式不明時以關鍵字判斷
	items, shipping = SplitLineItems([]payments.LineItem{
		{Description: "Sofa Oslo", UnitAmount: 49900, Quantity: 1, AmountTotal: 49900},
		{Description: "Express Versand (1-2 Werktage)", UnitAmount: 1990, Quantity: 1, AmountTotal: 1990},
	}, "")
	assert.EqualValues(t, 1990, shipping)
	assert.Len(t, items, 1)

	items, shipping = SplitLineItems(nil, models.ShippingStandard)
	assert.Empty(t, items)
	assert.Zero(t, shipping)
}

func TestCustomerName(t *testing.T) {
	cases := []struct {
		address string
		lang    email.Language
		want    string
	}{
		{`{"name":"Anna Berger","address":{"line1":"Ring 1"}}`, email.German, "Anna Berger"},
		{`{"address":{"line1":"Firma GmbH\nRing 1"}}`, email.German, "Firma GmbH"},
		{"Max Mustermann\nHauptstraße 1", email.German, "Max Mustermann"},
		{`{}`, email.German, "Kunde"},
		{"", email.English, "Customer"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CustomerName(tc.address, tc.lang), tc.address)
	}
}

func TestFormatAddress(t *testing.T) {
	got := FormatAddress(`{"name":"Anna","address":{"line1":"Ring 1","postal_code":"1010","city":"Wien","country":"AT"}}`)
	assert.Equal(t, "Anna\nRing 1\n1010 Wien\nAT", got)
	assert.Equal(t, "Hauptstraße 1", FormatAddress(" Hauptstraße 1 "))
}
