package booking

import (
	"errors"
	"time"
)

var (
	ErrInvalidPeriod   = errors.New("booking: period end must be after start")
	ErrUnknownType     = errors.New("booking: unknown booking type")
	ErrSameDayCutoff   = errors.New("booking: same-day requests are closed for today")
	ErrPeriodInThePast = errors.New("booking: period starts in the past")
)

type BookingType string

const (
	TypeDay     BookingType = "DAY"
	TypeNight   BookingType = "NIGHT"
	TypeFullDay BookingType = "FULL_DAY"
)

// Night bookings always run between these wall-clock hours regardless of the
// requested time of day.
const (
	nightStartHour = 23
	nightEndHour   = 5
)

// Same-day DAY requests are rejected once the local clock reaches this hour.
const dayRequestCutoffHour = 18

// Period is the requested rental window plus its type tag. The type decides
// both segmentation and pricing rules, so the two travel together.
type Period struct {
	Start time.Time
	End   time.Time
	Type  BookingType
}

// NewPeriod validates and canonicalises a requested window. NIGHT requests
// keep only their calendar dates: the start snaps to 23:00 on the first day
// and the end to 05:00 on the last. DAY requests for today are rejected at or
// after the cutoff hour.
func NewPeriod(start, end time.Time, typ BookingType, now time.Time) (Period, error) {
	start = start.UTC()
	end = end.UTC()
	now = now.UTC()

	switch typ {
	case TypeDay:
		if sameCalendarDay(start, now) && now.Hour() >= dayRequestCutoffHour {
			return Period{}, ErrSameDayCutoff
		}
	case TypeNight:
		start = dayOf(start).Add(nightStartHour * time.Hour)
		end = dayOf(end).Add(nightEndHour * time.Hour)
	case TypeFullDay:
	default:
		return Period{}, ErrUnknownType
	}

	p := Period{Start: start, End: end, Type: typ}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || !p.End.After(p.Start) {
		return ErrInvalidPeriod
	}
	switch p.Type {
	case TypeDay, TypeNight, TypeFullDay:
		return nil
	}
	return ErrUnknownType
}

func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// StartsOn reports whether the period begins on the same calendar day as t.
func (p Period) StartsOn(t time.Time) bool {
	return sameCalendarDay(p.Start, t)
}

// EndsOn reports whether the period finishes on the same calendar day as t.
func (p Period) EndsOn(t time.Time) bool {
	return sameCalendarDay(p.End, t)
}

// ValidatePeriodNotPast rejects periods whose first calendar day is already
// over. Same-day starts remain valid; the type-specific rules in NewPeriod
// decide how late in the day they may be placed.
func ValidatePeriodNotPast(p Period, now time.Time) error {
	if dayOf(p.Start).Before(dayOf(now)) {
		return ErrPeriodInThePast
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameCalendarDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
