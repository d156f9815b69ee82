package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "fleetbook/internal/domain/booking"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *BookingRepository) findOne(ctx context.Context, filter bson.M) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Save assigns an id on first persistence and enforces optimistic concurrency
// with a version filter on updates.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
		b.Version = 0
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrVersionConflict
	}
	b.Version = doc.Version
	return nil
}

type bookingDocument struct {
	ID                    string             `bson:"_id"`
	Reference             string             `bson:"reference"`
	Status                string             `bson:"status"`
	Type                  string             `bson:"type"`
	Start                 int64              `bson:"start"`
	End                   int64              `bson:"end"`
	PickupAddress         string             `bson:"pickup_address"`
	DropOffAddress        string             `bson:"drop_off_address"`
	CustomerID            string             `bson:"customer_id"`
	CarID                 string             `bson:"car_id"`
	ChauffeurID           string             `bson:"chauffeur_id,omitempty"`
	Legs                  []legDocument      `bson:"legs"`
	PaymentStatus         string             `bson:"payment_status"`
	PaymentIntent         string             `bson:"payment_intent,omitempty"`
	PaymentID             string             `bson:"payment_id,omitempty"`
	Financials            financialsDocument `bson:"financials"`
	IncludeSecurityDetail bool               `bson:"include_security_detail"`
	CancelledAt           int64              `bson:"cancelled_at,omitempty"`
	CancellationReason    string             `bson:"cancellation_reason,omitempty"`
	CreatedAt             int64              `bson:"created_at"`
	UpdatedAt             int64              `bson:"updated_at"`
	Version               int64              `bson:"version"`
}

// Decimal amounts are stored as strings to survive the round trip exactly.
type financialsDocument struct {
	TotalAmount        string `bson:"total_amount"`
	NetTotal           string `bson:"net_total"`
	SecurityDetailCost string `bson:"security_detail_cost"`
	ServiceFeeAmount   string `bson:"service_fee_amount"`
	VATAmount          string `bson:"vat_amount"`
	OwnerPayoutNet     string `bson:"owner_payout_net"`
}

type legDocument struct {
	ID           string `bson:"_id"`
	Date         int64  `bson:"date"`
	StartTime    int64  `bson:"start_time"`
	EndTime      int64  `bson:"end_time"`
	Price        string `bson:"price"`
	NetValue     string `bson:"net_value"`
	OwnerEarning string `bson:"owner_earning"`
	Status       string `bson:"status"`
	Notes        string `bson:"notes,omitempty"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	legs := make([]legDocument, 0, len(b.Legs))
	for _, leg := range b.Legs {
		legs = append(legs, legDocument{
			ID:           leg.ID,
			Date:         leg.Date.UnixMilli(),
			StartTime:    leg.StartTime.UnixMilli(),
			EndTime:      leg.EndTime.UnixMilli(),
			Price:        leg.Price.String(),
			NetValue:     leg.NetValue.String(),
			OwnerEarning: leg.OwnerEarning.String(),
			Status:       string(leg.Status),
			Notes:        leg.Notes,
		})
	}
	doc := bookingDocument{
		ID:                    b.ID,
		Reference:             b.Reference,
		Status:                string(b.Status),
		Type:                  string(b.Period.Type),
		Start:                 b.Period.Start.UnixMilli(),
		End:                   b.Period.End.UnixMilli(),
		PickupAddress:         b.PickupAddress,
		DropOffAddress:        b.DropOffAddress,
		CustomerID:            b.CustomerID,
		CarID:                 b.CarID,
		ChauffeurID:           b.ChauffeurID,
		Legs:                  legs,
		PaymentStatus:         string(b.PaymentStatus),
		PaymentIntent:         b.PaymentIntent,
		PaymentID:             b.PaymentID,
		Financials:            newFinancialsDocument(b.Financials),
		IncludeSecurityDetail: b.IncludeSecurityDetail,
		CancellationReason:    b.CancellationReason,
		CreatedAt:             b.CreatedAt.UnixMilli(),
		UpdatedAt:             b.UpdatedAt.UnixMilli(),
		Version:               b.Version,
	}
	if !b.CancelledAt.IsZero() {
		doc.CancelledAt = b.CancelledAt.UnixMilli()
	}
	return doc
}

func newFinancialsDocument(f domainbooking.Financials) financialsDocument {
	return financialsDocument{
		TotalAmount:        f.TotalAmount.String(),
		NetTotal:           f.NetTotal.String(),
		SecurityDetailCost: f.SecurityDetailCost.String(),
		ServiceFeeAmount:   f.ServiceFeeAmount.String(),
		VATAmount:          f.VATAmount.String(),
		OwnerPayoutNet:     f.OwnerPayoutNet.String(),
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	fin, err := d.Financials.toDomain()
	if err != nil {
		return nil, err
	}
	legs := make([]*domainbooking.Leg, 0, len(d.Legs))
	for _, ld := range d.Legs {
		leg, err := ld.toDomain(d.ID)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	agg := domainbooking.Booking{
		ID:        d.ID,
		Reference: d.Reference,
		Status:    domainbooking.Status(d.Status),
		Period: domainbooking.Period{
			Start: timestampToTime(d.Start),
			End:   timestampToTime(d.End),
			Type:  domainbooking.BookingType(d.Type),
		},
		PickupAddress:         d.PickupAddress,
		DropOffAddress:        d.DropOffAddress,
		CustomerID:            d.CustomerID,
		CarID:                 d.CarID,
		ChauffeurID:           d.ChauffeurID,
		Legs:                  legs,
		PaymentStatus:         domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentIntent:         d.PaymentIntent,
		PaymentID:             d.PaymentID,
		Financials:            fin,
		IncludeSecurityDetail: d.IncludeSecurityDetail,
		CancellationReason:    d.CancellationReason,
		CreatedAt:             timestampToTime(d.CreatedAt),
		UpdatedAt:             timestampToTime(d.UpdatedAt),
		Version:               d.Version,
	}
	if d.CancelledAt != 0 {
		agg.CancelledAt = timestampToTime(d.CancelledAt)
	}
	return domainbooking.Reconstitute(agg), nil
}

func (d financialsDocument) toDomain() (domainbooking.Financials, error) {
	total, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return domainbooking.Financials{}, err
	}
	net, err := decimal.NewFromString(d.NetTotal)
	if err != nil {
		return domainbooking.Financials{}, err
	}
	security, err := decimal.NewFromString(d.SecurityDetailCost)
	if err != nil {
		return domainbooking.Financials{}, err
	}
	serviceFee, err := decimal.NewFromString(d.ServiceFeeAmount)
	if err != nil {
		return domainbooking.Financials{}, err
	}
	vat, err := decimal.NewFromString(d.VATAmount)
	if err != nil {
		return domainbooking.Financials{}, err
	}
	payout, err := decimal.NewFromString(d.OwnerPayoutNet)
	if err != nil {
		return domainbooking.Financials{}, err
	}
	return domainbooking.Financials{
		TotalAmount:        total,
		NetTotal:           net,
		SecurityDetailCost: security,
		ServiceFeeAmount:   serviceFee,
		VATAmount:          vat,
		OwnerPayoutNet:     payout,
	}, nil
}

func (d legDocument) toDomain(bookingID string) (*domainbooking.Leg, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return nil, err
	}
	net, err := decimal.NewFromString(d.NetValue)
	if err != nil {
		return nil, err
	}
	earning, err := decimal.NewFromString(d.OwnerEarning)
	if err != nil {
		return nil, err
	}
	return &domainbooking.Leg{
		ID:           d.ID,
		BookingID:    bookingID,
		Date:         timestampToTime(d.Date),
		StartTime:    timestampToTime(d.StartTime),
		EndTime:      timestampToTime(d.EndTime),
		Price:        price,
		NetValue:     net,
		OwnerEarning: earning,
		Status:       domainbooking.LegStatus(d.Status),
		Notes:        d.Notes,
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
