package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Created is published by the creation orchestrator after the first save, once
// a persisted id exists.
type Created struct {
	BookingID  string
	Reference  string
	CustomerID string
	CarID      string
	Type       BookingType
	Start      time.Time
	End        time.Time
	Total      decimal.Decimal
	At         time.Time
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return e.BookingID }
func (e Created) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	BookingID string
	Reference string
	PaymentID string
	Total     decimal.Decimal
	At        time.Time
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return e.BookingID }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type Rejected struct {
	BookingID string
	Reference string
	Reason    string
	At        time.Time
}

func (e Rejected) EventName() string     { return "booking.rejected" }
func (e Rejected) AggregateID() string   { return e.BookingID }
func (e Rejected) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID string
	Reference string
	Reason    string
	At        time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return e.BookingID }
func (e Cancelled) OccurredAt() time.Time { return e.At }

// Activated and Completed are emitted by the orchestrators that drive the
// transitions (the aggregate's own Activate/Complete record nothing).
type Activated struct {
	BookingID   string
	Reference   string
	CustomerID  string
	ChauffeurID string
	At          time.Time
}

func (e Activated) EventName() string     { return "booking.activated" }
func (e Activated) AggregateID() string   { return e.BookingID }
func (e Activated) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID  string
	Reference  string
	CustomerID string
	At         time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return e.BookingID }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type ChauffeurAssigned struct {
	BookingID   string
	Reference   string
	ChauffeurID string
	At          time.Time
}

func (e ChauffeurAssigned) EventName() string     { return "booking.chauffeur_assigned" }
func (e ChauffeurAssigned) AggregateID() string   { return e.BookingID }
func (e ChauffeurAssigned) OccurredAt() time.Time { return e.At }

type ChauffeurUnassigned struct {
	BookingID   string
	Reference   string
	ChauffeurID string
	At          time.Time
}

func (e ChauffeurUnassigned) EventName() string     { return "booking.chauffeur_unassigned" }
func (e ChauffeurUnassigned) AggregateID() string   { return e.BookingID }
func (e ChauffeurUnassigned) OccurredAt() time.Time { return e.At }

// StartReminderDue / EndReminderDue are produced by the reminder scan for
// notification fan-out.
type StartReminderDue struct {
	BookingID   string
	Reference   string
	CustomerID  string
	ChauffeurID string
	StartsAt    time.Time
	At          time.Time
}

func (e StartReminderDue) EventName() string     { return "booking.start_reminder" }
func (e StartReminderDue) AggregateID() string   { return e.BookingID }
func (e StartReminderDue) OccurredAt() time.Time { return e.At }

type EndReminderDue struct {
	BookingID  string
	Reference  string
	CustomerID string
	EndsAt     time.Time
	At         time.Time
}

func (e EndReminderDue) EventName() string     { return "booking.end_reminder" }
func (e EndReminderDue) AggregateID() string   { return e.BookingID }
func (e EndReminderDue) OccurredAt() time.Time { return e.At }
