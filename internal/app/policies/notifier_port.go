package policies

import (
	"context"
	"time"
)

// Reminder is a ready-to-send notification about an upcoming period boundary.
type Reminder struct {
	BookingID   string
	Reference   string
	CustomerID  string
	ChauffeurID string
	Kind        string
	DueAt       time.Time
}

const (
	ReminderKindStart = "start"
	ReminderKindEnd   = "end"
)

// NotifierPort delivers reminders out of band. Implementations must be safe
// for repeated delivery of the same reminder.
type NotifierPort interface {
	Notify(ctx context.Context, reminder Reminder) error
}
