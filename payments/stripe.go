package payments

import (
	"context"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
}

var shippingCountries = []string{"AT", "DE", "CH", "IT", "SI", "HU", "CZ", "SK"}

type StripeGateway struct {
	api *client.API
}

// backends 為 nil 時使用 Stripe 正式 API
func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, backends)}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("購物車是空的")
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes:  stripe.StringSlice([]string{"card"}),
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID:   stripe.String(metadataUserID(req)),
		SuccessURL:          stripe.String(SuccessURL(req.Origin)),
		CancelURL:           stripe.String(CancelURL(req.Origin)),
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.Language != "" {
		params.Locale = stripe.String(req.Language)
	}
	if req.ShippingMethod != models.ShippingPickup {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(shippingCountries),
		}
	}

	for _, item := range LineItemsFor(req) {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.ProductName),
		}
		if item.ProductDescription != "" {
			product.Description = stripe.String(item.ProductDescription)
		}
		if item.ProductImage != "" {
			product.Images = stripe.StringSlice([]string{item.ProductImage})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.Price),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	for key, value := range Metadata(req) {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "建立付款頁面失敗")
	}
	return toCheckoutSession(session), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, apperr.NotFound("付款 session 不存在")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, err, "讀取付款 session 失敗")
	}
	return toCheckoutSession(session), nil
}

func (g *StripeGateway) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var items []LineItem
	iter := g.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		item := LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			AmountTotal: li.AmountTotal,
		}
		if li.Price != nil {
			item.UnitAmount = li.Price.UnitAmount
		}
		items = append(items, item)
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "讀取付款明細失敗")
	}
	return items, nil
}

func metadataUserID(req CheckoutRequest) string {
	return Metadata(req)["user_id"]
}

func toCheckoutSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
	}
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if s.Metadata != nil {
		out.UserID = s.Metadata["user_id"]
	}
	return out
}
