package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "fleetbook/internal/app/outbox"
)

type recordState string

const (
	stateNew     recordState = "NEW"
	stateClaimed recordState = "CLAIMED"
	stateSent    recordState = "SENT"
	stateFailed  recordState = "FAILED"
)

// claimLease bounds how long a CLAIMED record stays invisible. A worker that
// dies mid-publish loses its claim after the lease and another worker picks
// the record up.
const claimLease = time.Minute

// Store persists outbox records in Mongo so event publication survives
// process restarts. Records flow NEW -> CLAIMED -> SENT, with FAILED feeding
// back into the claimable set after a backoff.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	col := db.Collection("app_outbox")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &Store{col: col}
}

type EventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	State       recordState       `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by"`
	ClaimedAt   time.Time         `bson:"claimed_at"`
	SentAt      time.Time         `bson:"sent_at"`
	LastError   string            `bson:"last_error"`
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := time.Now().UTC()
	_, err := s.col.InsertOne(ctx, bson.M{
		"_id":             record.ID,
		"name":            record.Name,
		"payload":         record.Payload,
		"occurred_at":     record.OccurredAt,
		"aggregate":       record.Aggregate,
		"headers":         record.Headers,
		"state":           stateNew,
		"attempts":        0,
		"next_attempt_at": now,
		"created_at":      now,
	})
	return err
}

// Flush is a no-op: Add writes inside the caller's session, so records commit
// with the aggregate they belong to.
func (s *Store) Flush(context.Context) error {
	return nil
}

// Claim atomically takes the oldest due record. Besides NEW and FAILED it
// reclaims CLAIMED records whose lease expired.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := time.Now().UTC()
	filter := bson.M{"$or": bson.A{
		bson.M{
			"state":           bson.M{"$in": bson.A{stateNew, stateFailed}},
			"next_attempt_at": bson.M{"$lte": now},
		},
		bson.M{
			"state":      stateClaimed,
			"claimed_at": bson.M{"$lt": now.Add(-claimLease)},
		},
	}}
	update := bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	var doc EventDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"state":   stateSent,
		"sent_at": time.Now().UTC(),
	}})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"state":           stateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

var _ appoutbox.Outbox = (*Store)(nil)
