package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/sessionkit/pkg/broadcast"
)

// Store defines the interface for session persistence. A missing session is
// reported either as (nil, nil) or as ErrSessionNotFound.
type Store interface {
	// Get retrieves a record by session id
	Get(ctx context.Context, id string) (*Record, error)

	// Set creates or replaces the record for id
	Set(ctx context.Context, id string, rec *Record) error

	// Destroy removes the record for id. Missing ids are not an error.
	Destroy(ctx context.Context, id string) error
}

// Toucher is implemented by stores that can refresh a record's lifetime
// without rewriting its data.
type Toucher interface {
	Touch(ctx context.Context, id string, rec *Record) error
}

// Lister is implemented by stores that can enumerate live sessions.
type Lister interface {
	All(ctx context.Context) (map[string]*Record, error)
}

// Counter is implemented by stores that can count sessions.
type Counter interface {
	Len(ctx context.Context) (int, error)
}

// Clearer is implemented by stores that can drop every session.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Notifier is implemented by stores whose backend can come and go. The
// middleware passes requests through untouched while the latest event is
// Unavailable.
type Notifier interface {
	Subscribe(ctx context.Context) broadcast.Subscriber[Availability]
	Current() Availability
}

// Availability is the state carried by store events.
type Availability int

const (
	Available Availability = iota
	Unavailable
)

func (a Availability) String() string {
	if a == Unavailable {
		return "unavailable"
	}
	return "available"
}

// Events implements Notifier and is meant to be embedded by stores. Only the
// latest state is kept for slow subscribers. The zero value is ready to use.
type Events struct {
	once sync.Once
	b    *broadcast.MemoryBroadcaster[Availability]
	down atomic.Bool
}

func (e *Events) broadcaster() *broadcast.MemoryBroadcaster[Availability] {
	e.once.Do(func() {
		e.b = broadcast.NewMemoryBroadcaster[Availability](1, broadcast.WithKeepLatest())
	})
	return e.b
}

// Subscribe returns a subscriber that stops when ctx is cancelled.
func (e *Events) Subscribe(ctx context.Context) broadcast.Subscriber[Availability] {
	return e.broadcaster().Subscribe(ctx)
}

// Available announces that the backend accepts requests again.
func (e *Events) Available(ctx context.Context) error {
	e.down.Store(false)
	return e.broadcaster().Broadcast(ctx, broadcast.Message[Availability]{Data: Available})
}

// Unavailable announces that the backend stopped accepting requests.
func (e *Events) Unavailable(ctx context.Context) error {
	e.down.Store(true)
	return e.broadcaster().Broadcast(ctx, broadcast.Message[Availability]{Data: Unavailable})
}

// Current returns the most recently announced state.
func (e *Events) Current() Availability {
	if e.down.Load() {
		return Unavailable
	}
	return Available
}

// CloseEvents closes every subscriber.
func (e *Events) CloseEvents() error {
	return e.broadcaster().Close()
}
