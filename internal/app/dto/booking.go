package dto

import (
	"time"

	domainbooking "fleetbook/internal/domain/booking"
)

// Money values cross the boundary as strings: decimals never become floats on
// the wire.
type FinancialsView struct {
	TotalAmount        string `json:"total_amount"`
	NetTotal           string `json:"net_total"`
	SecurityDetailCost string `json:"security_detail_cost"`
	ServiceFeeAmount   string `json:"service_fee_amount"`
	VATAmount          string `json:"vat_amount"`
	OwnerPayoutNet     string `json:"owner_payout_net"`
}

type LegView struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Price        string    `json:"price"`
	NetValue     string    `json:"net_value"`
	OwnerEarning string    `json:"owner_earning"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
}

type BookingView struct {
	ID                    string         `json:"id"`
	Reference             string         `json:"reference"`
	Status                string         `json:"status"`
	Type                  string         `json:"type"`
	Start                 time.Time      `json:"start"`
	End                   time.Time      `json:"end"`
	PickupAddress         string         `json:"pickup_address"`
	DropOffAddress        string         `json:"drop_off_address"`
	CustomerID            string         `json:"customer_id"`
	CarID                 string         `json:"car_id"`
	ChauffeurID           string         `json:"chauffeur_id,omitempty"`
	PaymentStatus         string         `json:"payment_status"`
	IncludeSecurityDetail bool           `json:"include_security_detail"`
	Financials            FinancialsView `json:"financials"`
	Legs                  []LegView      `json:"legs"`
	CancelledAt           *time.Time     `json:"cancelled_at,omitempty"`
	CancellationReason    string         `json:"cancellation_reason,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:                    b.ID,
		Reference:             b.Reference,
		Status:                string(b.Status),
		Type:                  string(b.Period.Type),
		Start:                 b.Period.Start,
		End:                   b.Period.End,
		PickupAddress:         b.PickupAddress,
		DropOffAddress:        b.DropOffAddress,
		CustomerID:            b.CustomerID,
		CarID:                 b.CarID,
		ChauffeurID:           b.ChauffeurID,
		PaymentStatus:         string(b.PaymentStatus),
		IncludeSecurityDetail: b.IncludeSecurityDetail,
		Financials: FinancialsView{
			TotalAmount:        b.Financials.TotalAmount.String(),
			NetTotal:           b.Financials.NetTotal.String(),
			SecurityDetailCost: b.Financials.SecurityDetailCost.String(),
			ServiceFeeAmount:   b.Financials.ServiceFeeAmount.String(),
			VATAmount:          b.Financials.VATAmount.String(),
			OwnerPayoutNet:     b.Financials.OwnerPayoutNet.String(),
		},
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
	if !b.CancelledAt.IsZero() {
		at := b.CancelledAt
		view.CancelledAt = &at
	}
	view.Legs = make([]LegView, 0, len(b.Legs))
	for _, leg := range b.Legs {
		view.Legs = append(view.Legs, LegView{
			ID:           leg.ID,
			Date:         leg.Date,
			StartTime:    leg.StartTime,
			EndTime:      leg.EndTime,
			Price:        leg.Price.String(),
			NetValue:     leg.NetValue.String(),
			OwnerEarning: leg.OwnerEarning.String(),
			Status:       string(leg.Status),
			Notes:        leg.Notes,
		})
	}
	return view
}
