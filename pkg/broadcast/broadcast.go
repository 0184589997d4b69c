package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T for type-safe broadcasting.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns a channel for receiving broadcast messages.
	// The context is kept for interface consistency with networked adapters.
	Receive(ctx context.Context) <-chan Message[T]

	// Close closes the subscriber and releases resources.
	// After Close, the receive channel is closed and no more messages will be received.
	// Close is idempotent and safe to call multiple times.
	Close() error
}

// Broadcaster fans messages out to every active subscriber.
type Broadcaster[T any] interface {
	// Subscribe creates a new subscriber that will receive all broadcast messages.
	// The context controls the lifetime of the subscription.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast sends a message to all active subscribers without blocking.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes all subscribers.
	Close() error
}

type subscriber[T any] struct {
	ch         chan Message[T]
	keepLatest bool
	closed     bool
	mu         sync.RWMutex
}

func newSubscriber[T any](bufferSize int, keepLatest bool) *subscriber[T] {
	return &subscriber[T]{
		ch:         make(chan Message[T], bufferSize),
		keepLatest: keepLatest,
	}
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send delivers msg without blocking. A full buffer either rejects the
// message or, in keep-latest mode, evicts the oldest queued message.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	for {
		select {
		case s.ch <- msg:
			return true
		default:
		}

		if !s.keepLatest {
			return false
		}

		select {
		case <-s.ch:
		default:
		}
	}
}
