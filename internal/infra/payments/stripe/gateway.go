package stripe

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"fleetbook/internal/app/policies"
)

const currency = "usd"

// Gateway implements the payments port against Stripe payment intents.
type Gateway struct {
	client *client.API
}

func NewGateway(apiKey string) *Gateway {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &Gateway{client: sc}
}

// CreateIntent opens a payment intent for the booking total. Amounts are
// converted to minor units; the booking reference doubles as idempotency key
// so a retried request never opens a second intent.
func (g *Gateway) CreateIntent(ctx context.Context, amount decimal.Decimal, bookingReference string) (policies.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount.Mul(decimal.NewFromInt(100)).IntPart()),
		Currency: stripe.String(currency),
		Metadata: map[string]string{"booking_reference": bookingReference},
	}
	if bookingReference != "" {
		params.IdempotencyKey = stripe.String(bookingReference)
	}
	params.Context = ctx
	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return policies.PaymentIntent{}, err
	}
	return policies.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// Verify fetches the intent and reports whether the charge settled. Network
// success is not payment success; only a succeeded status counts.
func (g *Gateway) Verify(ctx context.Context, intentID string) (policies.PaymentVerification, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.client.PaymentIntents.Get(intentID, params)
	if err != nil {
		return policies.PaymentVerification{}, err
	}
	return policies.PaymentVerification{
		PaymentID: pi.ID,
		IntentID:  pi.ID,
		Paid:      pi.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

var _ policies.PaymentsPort = (*Gateway)(nil)
