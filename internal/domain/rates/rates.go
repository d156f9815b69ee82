package rates

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable signals that a required rate could not be loaded. Booking
// creation must fail rather than price against a substituted default.
var ErrRateUnavailable = errors.New("rates: rate unavailable")

// RateSchedule is an immutable snapshot of a car's configured rates.
type RateSchedule struct {
	DayRate     decimal.Decimal
	NightRate   decimal.Decimal
	HourlyRate  decimal.Decimal
	FullDayRate decimal.Decimal
}

// PlatformFeeRates holds the platform's current fee percentages. Values are
// whole percentages, e.g. 10 means 10%.
type PlatformFeeRates struct {
	ServiceFeeRate decimal.Decimal
	CommissionRate decimal.Decimal
	VATRate        decimal.Decimal
}

// AddonType identifies an optional paid add-on with its own rate table.
type AddonType string

const AddonSecurityDetail AddonType = "SECURITY_DETAIL"

// Source supplies rate data to the booking flow. CarRates and PlatformFees
// return ErrRateUnavailable when no data is configured; CurrentAddonRate
// reports absence through its bool instead, since add-on rates are optional.
type Source interface {
	CarRates(ctx context.Context, carID string) (RateSchedule, error)
	PlatformFees(ctx context.Context) (PlatformFeeRates, error)
	CurrentAddonRate(ctx context.Context, addon AddonType, at time.Time) (decimal.Decimal, bool, error)
}
