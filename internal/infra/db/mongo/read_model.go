package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fleetbook/internal/app/handlers/legs"
	domainbooking "fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/shared/daterange"
)

// BookingReadModel answers the batch jobs' due-window queries straight off the
// aggregate collection. Leg windows are denormalised into the leg documents,
// so an unwind over the embedded array is enough.
type BookingReadModel struct {
	col *mongo.Collection
}

func NewBookingReadModel(db *mongo.Database) *BookingReadModel {
	return &BookingReadModel{col: db.Collection("agg_booking")}
}

// Due-leg queries match both CONFIRMED and ACTIVE bookings: a multi-day
// booking goes ACTIVE with its first leg while later legs still await their
// own transitions.
func (m *BookingReadModel) LegsStartingIn(ctx context.Context, w daterange.Window) ([]legs.DueLeg, error) {
	return m.dueLegs(ctx, "legs.start_time", w)
}

func (m *BookingReadModel) LegsEndingIn(ctx context.Context, w daterange.Window) ([]legs.DueLeg, error) {
	return m.dueLegs(ctx, "legs.end_time", w)
}

func (m *BookingReadModel) dueLegs(ctx context.Context, timeField string, w daterange.Window) ([]legs.DueLeg, error) {
	statuses := []string{string(domainbooking.StatusConfirmed), string(domainbooking.StatusActive)}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": statuses}}}},
		{{Key: "$unwind", Value: "$legs"}},
		{{Key: "$match", Value: bson.M{timeField: bson.M{"$gte": w.From.UnixMilli(), "$lt": w.To.UnixMilli()}}}},
	}
	cursor, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []legs.DueLeg
	for cursor.Next(ctx) {
		var row struct {
			ID          string      `bson:"_id"`
			Reference   string      `bson:"reference"`
			CustomerID  string      `bson:"customer_id"`
			ChauffeurID string      `bson:"chauffeur_id"`
			CarID       string      `bson:"car_id"`
			Leg         legDocument `bson:"legs"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, legs.DueLeg{
			LegID:       row.Leg.ID,
			BookingID:   row.ID,
			Reference:   row.Reference,
			CustomerID:  row.CustomerID,
			ChauffeurID: row.ChauffeurID,
			CarID:       row.CarID,
			StartTime:   timestampToTime(row.Leg.StartTime),
			EndTime:     timestampToTime(row.Leg.EndTime),
		})
	}
	return out, cursor.Err()
}

func (m *BookingReadModel) BookingsStartingIn(ctx context.Context, w daterange.Window) ([]legs.DueBooking, error) {
	return m.dueBookings(ctx, "start", string(domainbooking.StatusConfirmed), w)
}

func (m *BookingReadModel) BookingsEndingIn(ctx context.Context, w daterange.Window) ([]legs.DueBooking, error) {
	return m.dueBookings(ctx, "end", string(domainbooking.StatusActive), w)
}

func (m *BookingReadModel) dueBookings(ctx context.Context, timeField, bookingStatus string, w daterange.Window) ([]legs.DueBooking, error) {
	filter := bson.M{
		"status":  bookingStatus,
		timeField: bson.M{"$gte": w.From.UnixMilli(), "$lt": w.To.UnixMilli()},
	}
	cursor, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []legs.DueBooking
	for cursor.Next(ctx) {
		var row struct {
			ID          string `bson:"_id"`
			Reference   string `bson:"reference"`
			CustomerID  string `bson:"customer_id"`
			ChauffeurID string `bson:"chauffeur_id"`
			Start       int64  `bson:"start"`
			End         int64  `bson:"end"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, legs.DueBooking{
			BookingID:   row.ID,
			Reference:   row.Reference,
			CustomerID:  row.CustomerID,
			ChauffeurID: row.ChauffeurID,
			Start:       timestampToTime(row.Start),
			End:         timestampToTime(row.End),
		})
	}
	return out, cursor.Err()
}

var _ legs.ReadModel = (*BookingReadModel)(nil)
