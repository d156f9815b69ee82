package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainrates "fleetbook/internal/domain/rates"
)

// RatesSource is an in-memory rates store. Seed it up front; the booking flow
// only reads.
type RatesSource struct {
	mu         sync.RWMutex
	carRates   map[string]domainrates.RateSchedule
	fees       domainrates.PlatformFeeRates
	hasFees    bool
	addonRates map[domainrates.AddonType][]addonRate
}

type addonRate struct {
	rate          decimal.Decimal
	effectiveFrom time.Time
}

func NewRatesSource() *RatesSource {
	return &RatesSource{
		carRates:   make(map[string]domainrates.RateSchedule),
		addonRates: make(map[domainrates.AddonType][]addonRate),
	}
}

func (s *RatesSource) SetCarRates(carID string, schedule domainrates.RateSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carRates[carID] = schedule
}

func (s *RatesSource) SetPlatformFees(fees domainrates.PlatformFeeRates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees = fees
	s.hasFees = true
}

func (s *RatesSource) AddAddonRate(addon domainrates.AddonType, rate decimal.Decimal, effectiveFrom time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rates := append(s.addonRates[addon], addonRate{rate: rate, effectiveFrom: effectiveFrom.UTC()})
	sort.Slice(rates, func(i, j int) bool { return rates[i].effectiveFrom.Before(rates[j].effectiveFrom) })
	s.addonRates[addon] = rates
}

func (s *RatesSource) CarRates(ctx context.Context, carID string) (domainrates.RateSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.carRates[carID]
	if !ok {
		return domainrates.RateSchedule{}, fmt.Errorf("car %s: %w", carID, domainrates.ErrRateUnavailable)
	}
	return schedule, nil
}

func (s *RatesSource) PlatformFees(ctx context.Context) (domainrates.PlatformFeeRates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasFees {
		return domainrates.PlatformFeeRates{}, fmt.Errorf("platform fees: %w", domainrates.ErrRateUnavailable)
	}
	return s.fees, nil
}

// CurrentAddonRate returns the latest rate effective at or before the given
// instant, or found=false when none is configured.
func (s *RatesSource) CurrentAddonRate(ctx context.Context, addon domainrates.AddonType, at time.Time) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rates := s.addonRates[addon]
	for i := len(rates) - 1; i >= 0; i-- {
		if !rates[i].effectiveFrom.After(at) {
			return rates[i].rate, true, nil
		}
	}
	return decimal.Zero, false, nil
}

var _ domainrates.Source = (*RatesSource)(nil)
