package policies

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrPaymentNotSettled is returned by orchestrators when verification shows an
// unpaid intent.
var ErrPaymentNotSettled = errors.New("payments: payment not settled")

// PaymentIntent is the gateway's handle for a pending charge.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentVerification is the gateway's answer on a charge's state.
type PaymentVerification struct {
	PaymentID string
	IntentID  string
	Paid      bool
}

// PaymentsPort is the black-box payment gateway contract: create an intent for
// a quoted total, verify it once the customer has paid.
type PaymentsPort interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, bookingReference string) (PaymentIntent, error)
	Verify(ctx context.Context, intentID string) (PaymentVerification, error)
}
