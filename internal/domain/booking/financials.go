package booking

import "github.com/shopspring/decimal"

// Financials is the immutable money summary of a booking, computed once at
// creation. A replacement value is only ever built by an intentional full
// recalculation, never by mutating fields in place.
type Financials struct {
	TotalAmount        decimal.Decimal
	NetTotal           decimal.Decimal
	SecurityDetailCost decimal.Decimal
	ServiceFeeAmount   decimal.Decimal
	VATAmount          decimal.Decimal
	OwnerPayoutNet     decimal.Decimal
}

// NewFinancials validates the construction invariants: total and net must be
// strictly positive, every other component non-negative. A violation is a
// data-integrity bug in the upstream rate data, so it is never recovered.
func NewFinancials(total, net, security, serviceFee, vat, payout decimal.Decimal) (Financials, error) {
	if !total.IsPositive() {
		return Financials{}, &InvalidAmountError{Field: "totalAmount", Value: total}
	}
	if !net.IsPositive() {
		return Financials{}, &InvalidAmountError{Field: "netTotal", Value: net}
	}
	for _, check := range []struct {
		field string
		value decimal.Decimal
	}{
		{"securityDetailCost", security},
		{"serviceFeeAmount", serviceFee},
		{"vatAmount", vat},
		{"ownerPayoutNet", payout},
	} {
		if check.value.IsNegative() {
			return Financials{}, &InvalidAmountError{Field: check.field, Value: check.value}
		}
	}
	return Financials{
		TotalAmount:        total,
		NetTotal:           net,
		SecurityDetailCost: security,
		ServiceFeeAmount:   serviceFee,
		VATAmount:          vat,
		OwnerPayoutNet:     payout,
	}, nil
}

// FinancialsFromBreakdown lifts a cost breakdown into the validated value
// object.
func FinancialsFromBreakdown(cb CostBreakdown) (Financials, error) {
	return NewFinancials(cb.TotalAmount, cb.NetTotal, cb.SecurityDetailCost, cb.ServiceFeeAmount, cb.VATAmount, cb.OwnerPayoutNet)
}
