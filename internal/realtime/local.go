package realtime

import (
	"context"
	"sync"

	"family-fund-go/internal/models"
)

// LocalBus is an in-process Broker used when no AMQP URL is configured.
// Delivery is synchronous and best-effort; it exists so chat and tests work
// against the SQLite backend without external infrastructure.
type LocalBus struct {
	mu     sync.RWMutex
	nextId int
	subs   map[string]map[int]func(models.Message) // receiver id -> subscriber set
	closed bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{
		subs: make(map[string]map[int]func(models.Message)),
	}
}

func (b *LocalBus) Publish(_ context.Context, msg models.Message) error {
	b.mu.RLock()
	var fns []func(models.Message)
	if !b.closed {
		for _, fn := range b.subs[msg.ReceiverId] {
			fns = append(fns, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(msg)
	}
	return nil
}

func (b *LocalBus) Subscribe(receiverId string, fn func(models.Message)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextId
	b.nextId++
	if b.subs[receiverId] == nil {
		b.subs[receiverId] = make(map[int]func(models.Message))
	}
	b.subs[receiverId][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[receiverId], id)
	}, nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string]map[int]func(models.Message))
	return nil
}
