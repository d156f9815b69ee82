package obs

import (
	"context"
	"log/slog"

	"fleetbook/internal/app/policies"
)

// LogNotifier writes reminders to the structured log. It stands in until a
// real notification channel is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, reminder policies.Reminder) error {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("reminder",
		"kind", reminder.Kind,
		"booking_id", reminder.BookingID,
		"reference", reminder.Reference,
		"customer_id", reminder.CustomerID,
		"chauffeur_id", reminder.ChauffeurID,
		"due_at", reminder.DueAt,
	)
	return nil
}

var _ policies.NotifierPort = LogNotifier{}
