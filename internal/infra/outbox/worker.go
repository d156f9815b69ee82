package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

const defaultPollInterval = 500 * time.Millisecond

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// envelope is the CloudEvents 1.0 wrapper every published record gets.
type envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
	TraceParent     string          `json:"traceparent,omitempty"`
}

// Worker relays stored events to Kafka. Each tick drains the backlog: claim,
// wrap in a CloudEvents envelope, publish, mark sent. A failed publish
// reschedules the record with the configured backoff and the drain moves on.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	workerID := w.ID
	if workerID == "" {
		workerID = uuid.NewString()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx, workerID); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context, workerID string) error {
	for {
		doc, err := w.Store.Claim(ctx, workerID)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		if err := w.relay(ctx, doc); err != nil {
			w.logFailure(doc, err)
			_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
			continue
		}
		if err := w.Store.MarkSent(ctx, doc.ID); err != nil {
			return err
		}
	}
}

func (w *Worker) relay(ctx context.Context, doc *EventDocument) error {
	evt := envelope{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Type:            doc.Name + ".v1",
		Source:          w.sourceURI(),
		Time:            doc.OccurredAt,
		DataContentType: "application/json",
		Data:            json.RawMessage(doc.Payload),
		TraceParent:     doc.Headers["traceparent"],
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers)
}

// topicFor maps an event name like "booking.confirmed" onto the aggregate
// stream "booking.events.v1".
func (w *Worker) topicFor(name string) string {
	base, _, found := strings.Cut(name, ".")
	if !found {
		base = name
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) nextRetry(attempts int) time.Time {
	backoff := 5 * time.Second
	switch {
	case attempts < len(w.Backoff):
		backoff = w.Backoff[attempts]
	case len(w.Backoff) > 0:
		backoff = w.Backoff[len(w.Backoff)-1]
	}
	return time.Now().Add(backoff)
}

func (w *Worker) sourceURI() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://fleetbook"
}

func (w *Worker) logFailure(doc *EventDocument, err error) {
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Warn("event relay failed", "event_id", doc.ID, "name", doc.Name, "attempts", doc.Attempts, "error", err)
}
