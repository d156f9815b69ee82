package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domainbooking "fleetbook/internal/domain/booking"
)

// BookingRepository is an in-memory aggregate store for tests and local runs.
// It keeps detached snapshots so callers never share aggregate pointers.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[string]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[string]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return domainbooking.Reconstitute(*stored), nil
}

func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.items {
		if stored.Reference == reference {
			return domainbooking.Reconstitute(*stored), nil
		}
	}
	return nil, domainbooking.ErrBookingNotFound
}

// Save assigns an id on first persistence and checks the optimistic version
// the same way the Mongo repository does.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
		b.Version = 0
	} else if stored, ok := r.items[b.ID]; ok && stored.Version != b.Version {
		return domainbooking.ErrVersionConflict
	}
	b.Version++
	r.items[b.ID] = domainbooking.Reconstitute(*b)
	return nil
}

// All returns snapshots of every stored aggregate, for the read model.
func (r *BookingRepository) All() []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0, len(r.items))
	for _, stored := range r.items {
		out = append(out, domainbooking.Reconstitute(*stored))
	}
	return out
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
