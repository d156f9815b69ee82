package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrates "fleetbook/internal/domain/rates"
)

// RatesRepository reads rate configuration from three collections: per-car
// rate schedules, a single platform fee document, and a history of add-on
// rates selected by effective date.
type RatesRepository struct {
	carRates     *mongo.Collection
	platformFees *mongo.Collection
	addonRates   *mongo.Collection
}

func NewRatesRepository(db *mongo.Database) *RatesRepository {
	return &RatesRepository{
		carRates:     db.Collection("car_rates"),
		platformFees: db.Collection("platform_fees"),
		addonRates:   db.Collection("addon_rates"),
	}
}

func (r *RatesRepository) CarRates(ctx context.Context, carID string) (domainrates.RateSchedule, error) {
	var doc carRatesDocument
	if err := r.carRates.FindOne(ctx, bson.M{"_id": carID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainrates.RateSchedule{}, fmt.Errorf("car %s: %w", carID, domainrates.ErrRateUnavailable)
		}
		return domainrates.RateSchedule{}, err
	}
	return doc.toDomain()
}

func (r *RatesRepository) PlatformFees(ctx context.Context) (domainrates.PlatformFeeRates, error) {
	var doc platformFeesDocument
	if err := r.platformFees.FindOne(ctx, bson.M{"_id": "current"}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainrates.PlatformFeeRates{}, fmt.Errorf("platform fees: %w", domainrates.ErrRateUnavailable)
		}
		return domainrates.PlatformFeeRates{}, err
	}
	return doc.toDomain()
}

// CurrentAddonRate picks the latest rate whose effective date is at or before
// the requested instant. Absence is not an error.
func (r *RatesRepository) CurrentAddonRate(ctx context.Context, addon domainrates.AddonType, at time.Time) (decimal.Decimal, bool, error) {
	filter := bson.M{"addon": string(addon), "effective_from": bson.M{"$lte": at.UnixMilli()}}
	opts := options.FindOne().SetSort(bson.D{{Key: "effective_from", Value: -1}})
	var doc addonRateDocument
	if err := r.addonRates.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	rate, err := decimal.NewFromString(doc.Rate)
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate, true, nil
}

type carRatesDocument struct {
	CarID       string `bson:"_id"`
	DayRate     string `bson:"day_rate"`
	NightRate   string `bson:"night_rate"`
	HourlyRate  string `bson:"hourly_rate"`
	FullDayRate string `bson:"full_day_rate"`
}

func (d carRatesDocument) toDomain() (domainrates.RateSchedule, error) {
	day, err := decimal.NewFromString(d.DayRate)
	if err != nil {
		return domainrates.RateSchedule{}, err
	}
	night, err := decimal.NewFromString(d.NightRate)
	if err != nil {
		return domainrates.RateSchedule{}, err
	}
	hourly, err := decimal.NewFromString(d.HourlyRate)
	if err != nil {
		return domainrates.RateSchedule{}, err
	}
	fullDay, err := decimal.NewFromString(d.FullDayRate)
	if err != nil {
		return domainrates.RateSchedule{}, err
	}
	return domainrates.RateSchedule{
		DayRate:     day,
		NightRate:   night,
		HourlyRate:  hourly,
		FullDayRate: fullDay,
	}, nil
}

type platformFeesDocument struct {
	ID             string `bson:"_id"`
	ServiceFeeRate string `bson:"service_fee_rate"`
	CommissionRate string `bson:"commission_rate"`
	VATRate        string `bson:"vat_rate"`
}

func (d platformFeesDocument) toDomain() (domainrates.PlatformFeeRates, error) {
	serviceFee, err := decimal.NewFromString(d.ServiceFeeRate)
	if err != nil {
		return domainrates.PlatformFeeRates{}, err
	}
	commission, err := decimal.NewFromString(d.CommissionRate)
	if err != nil {
		return domainrates.PlatformFeeRates{}, err
	}
	vat, err := decimal.NewFromString(d.VATRate)
	if err != nil {
		return domainrates.PlatformFeeRates{}, err
	}
	return domainrates.PlatformFeeRates{
		ServiceFeeRate: serviceFee,
		CommissionRate: commission,
		VATRate:        vat,
	}, nil
}

type addonRateDocument struct {
	Addon         string `bson:"addon"`
	Rate          string `bson:"rate"`
	EffectiveFrom int64  `bson:"effective_from"`
}

var _ domainrates.Source = (*RatesRepository)(nil)
