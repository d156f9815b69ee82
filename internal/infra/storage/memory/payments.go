package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleetbook/internal/app/policies"
)

// PaymentsGateway fakes a payment provider for local runs and tests. Every
// created intent verifies as paid unless FailVerification is set.
type PaymentsGateway struct {
	mu               sync.Mutex
	intents          map[string]decimal.Decimal
	FailVerification bool
}

func NewPaymentsGateway() *PaymentsGateway {
	return &PaymentsGateway{intents: make(map[string]decimal.Decimal)}
}

func (g *PaymentsGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, bookingReference string) (policies.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := "pi_" + uuid.NewString()
	g.intents[id] = amount
	return policies.PaymentIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *PaymentsGateway) Verify(ctx context.Context, intentID string) (policies.PaymentVerification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, known := g.intents[intentID]
	return policies.PaymentVerification{
		PaymentID: intentID,
		IntentID:  intentID,
		Paid:      known && !g.FailVerification,
	}, nil
}

var _ policies.PaymentsPort = (*PaymentsGateway)(nil)
