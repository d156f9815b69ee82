package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/app/commands"
	bookingapp "fleetbook/internal/app/handlers/booking"
	appoutbox "fleetbook/internal/app/outbox"
	domainbooking "fleetbook/internal/domain/booking"
	domainrates "fleetbook/internal/domain/rates"
	"fleetbook/internal/infra/storage/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

type fixture struct {
	bookings *memory.BookingRepository
	rates    *memory.RatesSource
	outbox   *memory.Outbox
	handler  *bookingapp.CreateBookingHandler
}

func newFixture(now time.Time) fixture {
	bookings := memory.NewBookingRepository()
	rates := memory.NewRatesSource()
	rates.SetCarRates("car-1", domainrates.RateSchedule{DayRate: dec(5000), NightRate: dec(3000), FullDayRate: dec(9000), HourlyRate: dec(700)})
	rates.SetPlatformFees(domainrates.PlatformFeeRates{ServiceFeeRate: dec(10), CommissionRate: dec(10), VATRate: dec(10)})
	box := memory.NewOutbox()
	handler := &bookingapp.CreateBookingHandler{
		UoWFactory: memory.Factory{BookingRepo: bookings, RatesRepo: rates},
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        func() time.Time { return now },
	}
	return fixture{bookings: bookings, rates: rates, outbox: box, handler: handler}
}

func dayCommand() bookingapp.CreateBookingCommand {
	return bookingapp.CreateBookingCommand{
		CommandID:  "ref-1",
		CustomerID: "cust-1",
		CarID:      "car-1",
		Type:       domainbooking.TypeDay,
		Start:      date(2025, 1, 15, 9, 0),
		End:        date(2025, 1, 16, 21, 0),
	}
}

func TestCreateBooking_PersistsAndAnnounces(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))

	res, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)
	require.NotEmpty(t, res.BookingID)
	assert.Equal(t, "ref-1", res.Reference)
	assert.Equal(t, "12100", res.Total)

	saved, err := fx.bookings.ByID(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, saved.Status)
	assert.Len(t, saved.Legs, 2)
	assert.True(t, saved.Financials.TotalAmount.Equal(dec(12100)))

	records := fx.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.created", records[0].Name)
	assert.Equal(t, res.BookingID, records[0].Aggregate)
}

func TestCreateBooking_SubmittedTotalWithinTolerance(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	cmd := dayCommand()
	cmd.SubmittedTotal = decimal.RequireFromString("12100.01")

	_, err := fx.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
}

func TestCreateBooking_AmountMismatchRejected(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	cmd := dayCommand()
	cmd.SubmittedTotal = dec(12000)

	_, err := fx.handler.Handle(context.Background(), cmd)
	var mismatch *domainbooking.AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Calculated.Equal(dec(12100)))

	// Nothing persisted, nothing announced.
	assert.Empty(t, fx.outbox.Records())
}

func TestCreateBooking_MissingRatesFailHard(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	cmd := dayCommand()
	cmd.CarID = "car-unknown"

	_, err := fx.handler.Handle(context.Background(), cmd)
	require.ErrorIs(t, err, domainrates.ErrRateUnavailable)
}

func TestCreateBooking_SecurityDetailBilledWhenConfigured(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	fx.rates.AddAddonRate(domainrates.AddonSecurityDetail, dec(500), date(2025, 1, 1, 0, 0))
	cmd := dayCommand()
	cmd.IncludeSecurityDetail = true

	res, err := fx.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	saved, err := fx.bookings.ByID(context.Background(), res.BookingID)
	require.NoError(t, err)
	// 2 legs x 500.
	assert.True(t, saved.Financials.SecurityDetailCost.Equal(dec(1000)))
}

func TestCreateBooking_SecurityDetailFreeWhenUnconfigured(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	cmd := dayCommand()
	cmd.IncludeSecurityDetail = true

	res, err := fx.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	saved, err := fx.bookings.ByID(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.True(t, saved.Financials.SecurityDetailCost.IsZero())
	assert.True(t, saved.Financials.TotalAmount.Equal(dec(12100)))
}

func TestCreateBooking_PastPeriodRejected(t *testing.T) {
	fx := newFixture(date(2025, 2, 1, 12, 0))

	_, err := fx.handler.Handle(context.Background(), dayCommand())
	require.ErrorIs(t, err, domainbooking.ErrPeriodInThePast)
}

func TestConfirmBooking_VerifiesPaymentAndConfirms(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	created, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)

	payments := memory.NewPaymentsGateway()
	intent, err := payments.CreateIntent(context.Background(), dec(12100), "ref-1")
	require.NoError(t, err)

	confirm := &bookingapp.ConfirmBookingHandler{
		UoWFactory: fx.handler.UoWFactory,
		Payments:   payments,
		Outbox:     fx.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        func() time.Time { return date(2025, 1, 10, 13, 0) },
	}
	res, err := confirm.Handle(context.Background(), bookingapp.ConfirmBookingCommand{BookingID: created.BookingID, IntentID: intent.ID})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusConfirmed), res.Status)

	saved, err := fx.bookings.ByID(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.PaymentPaid, saved.PaymentStatus)
	assert.Equal(t, intent.ID, saved.PaymentIntent)
	for _, leg := range saved.Legs {
		assert.Equal(t, domainbooking.LegConfirmed, leg.Status)
	}
}

func TestCancelBooking_InsideCutoffRejected(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	created, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)

	payments := memory.NewPaymentsGateway()
	intent, err := payments.CreateIntent(context.Background(), dec(12100), "ref-1")
	require.NoError(t, err)
	confirm := &bookingapp.ConfirmBookingHandler{
		UoWFactory: fx.handler.UoWFactory,
		Payments:   payments,
		Outbox:     fx.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        func() time.Time { return date(2025, 1, 10, 13, 0) },
	}
	_, err = confirm.Handle(context.Background(), bookingapp.ConfirmBookingCommand{BookingID: created.BookingID, IntentID: intent.ID})
	require.NoError(t, err)

	// Eleven hours before the start is inside the 12h cutoff.
	cancel := &bookingapp.CancelBookingHandler{
		UoWFactory: fx.handler.UoWFactory,
		Outbox:     fx.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        func() time.Time { return date(2025, 1, 14, 22, 0) },
	}
	_, err = cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: created.BookingID, Reason: "changed plans"})
	assert.True(t, domainbooking.IsIneligible(err))

	// Thirteen hours before is allowed.
	cancel.Now = func() time.Time { return date(2025, 1, 14, 20, 0) }
	res, err := cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: created.BookingID, Reason: "changed plans"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusCancelled), res.Status)
}

func TestRejectBooking_DeclinesPendingAndAnnounces(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	created, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)

	reject := &bookingapp.RejectBookingHandler{
		UoWFactory: fx.handler.UoWFactory,
		Outbox:     fx.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        func() time.Time { return date(2025, 1, 10, 14, 0) },
	}
	res, err := reject.Handle(context.Background(), bookingapp.RejectBookingCommand{BookingID: created.BookingID, Reason: "car unavailable"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusRejected), res.Status)

	saved, err := fx.bookings.ByID(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusRejected, saved.Status)

	records := fx.outbox.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "booking.rejected", records[1].Name)

	// A rejected booking cannot be rejected twice.
	_, err = reject.Handle(context.Background(), bookingapp.RejectBookingCommand{BookingID: created.BookingID, Reason: "again"})
	assert.True(t, domainbooking.IsTransitionRejected(err))
}

func TestGetBookingByReference_ResolvesView(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	created, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)

	get := &bookingapp.GetBookingByReferenceHandler{UoWFactory: fx.handler.UoWFactory}
	view, err := get.Handle(context.Background(), bookingapp.GetBookingByReferenceQuery{Reference: "ref-1"})
	require.NoError(t, err)
	assert.Equal(t, created.BookingID, view.ID)
	assert.Equal(t, "ref-1", view.Reference)

	_, err = get.Handle(context.Background(), bookingapp.GetBookingByReferenceQuery{Reference: "ref-missing"})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestDispatch_RoutesThroughBus(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, bookingapp.CreateBookingCommand{}.Key(), fx.handler)

	res, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](context.Background(), bus, dayCommand())
	require.NoError(t, err)
	assert.NotEmpty(t, res.BookingID)
}
