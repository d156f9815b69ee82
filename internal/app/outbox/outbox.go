package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetbook/internal/domain/shared/events"
)

// EventRecord is the persisted form of a domain event awaiting publication.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox stores event records transactionally alongside aggregate saves.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into a storable record.
type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals events as JSON with generated record ids.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// RecordDomainEvents encodes and stores a batch of drained aggregate events.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		record, err := encoder.Encode(ev)
		if err != nil {
			return fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
		}
		if err := box.Add(ctx, record); err != nil {
			return fmt.Errorf("outbox: store %s: %w", ev.EventName(), err)
		}
	}
	return nil
}

// DrainAggregate moves an aggregate's pending events into the outbox and
// clears the buffer on success.
type eventSource interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

func DrainAggregate(ctx context.Context, box Outbox, encoder EventEncoder, src eventSource) error {
	if err := RecordDomainEvents(ctx, box, encoder, src.PendingEvents()); err != nil {
		return err
	}
	src.ClearEvents()
	return nil
}
