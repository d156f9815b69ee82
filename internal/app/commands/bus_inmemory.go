package commands

import (
	"context"
	"fmt"
	"sync"
)

type dispatchFunc func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus holds handlers in a process-local registry. Registration
// happens during wiring; the lock keeps late registration safe anyway.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]dispatchFunc
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]dispatchFunc)}
}

func (b *InMemoryBus) RegisterRaw(key string, fn dispatchFunc) {
	if key == "" {
		panic("commands: empty key registration")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = fn
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	b.mu.RLock()
	fn, ok := b.handlers[cmd.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return fn(ctx, cmd)
}

// RegisterHandler wraps a typed handler into the bus registry under key.
func RegisterHandler[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) {
	if bus == nil {
		panic("commands: nil bus")
	}
	bus.RegisterRaw(key, func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := any(raw).(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, key)
		}
		return handler.Handle(ctx, cmd)
	})
}
