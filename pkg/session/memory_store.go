package session

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity is the number of sessions a MemoryStore keeps before it
// starts evicting the least recently written one.
const DefaultCapacity = 1000

// memoryEntry is a node of the recency list. Links are slot indices into
// MemoryStore.entries; -1 terminates the list.
type memoryEntry struct {
	id      string
	payload []byte
	prev    int
	next    int
}

// MemoryStore implements Store with a bounded in-process LRU. Records are
// kept serialized, so callers never share state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	index    map[string]int
	entries  []memoryEntry
	free     []int
	head     int
	tail     int

	cleanupInterval time.Duration
	ticker          *time.Ticker
	done            chan struct{}
	closeOnce       sync.Once
}

// MemoryStoreOption configures a MemoryStore
type MemoryStoreOption func(*MemoryStore)

// WithCapacity bounds the number of stored sessions. Non-positive values
// keep DefaultCapacity.
func WithCapacity(n int) MemoryStoreOption {
	return func(m *MemoryStore) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithCleanupInterval periodically purges expired sessions. Zero disables
// the background sweep; expired sessions are still dropped on access.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.cleanupInterval = d
	}
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		capacity: DefaultCapacity,
		index:    make(map[string]int),
		head:     -1,
		tail:     -1,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cleanupInterval > 0 {
		m.ticker = time.NewTicker(m.cleanupInterval)
		go m.cleanupLoop()
	}

	return m
}

// Get returns the record for id. Expired records are removed and reported
// as ErrSessionNotFound.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	rec, err := DecodeRecord(m.entries[idx].payload)
	if err != nil {
		return nil, err
	}
	if rec.Cookie.Expired() {
		m.remove(idx)
		return nil, ErrSessionNotFound
	}
	return rec, nil
}

// Set stores rec under id and marks it most recently used. The least
// recently written session is evicted once capacity is exceeded.
func (m *MemoryStore) Set(ctx context.Context, id string, rec *Record) error {
	if id == "" || rec == nil {
		return ErrInvalidSession
	}

	payload, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.index[id]; ok {
		m.entries[idx].payload = payload
		m.unlink(idx)
		m.pushFront(idx)
		return nil
	}

	idx := m.alloc(id, payload)
	m.index[id] = idx
	m.pushFront(idx)

	for len(m.index) > m.capacity && m.tail != -1 {
		m.remove(m.tail)
	}
	return nil
}

// Destroy removes id. Missing ids are ignored.
func (m *MemoryStore) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.index[id]; ok {
		m.remove(idx)
	}
	return nil
}

// Touch replaces the stored cookie attributes of id with those of rec. The
// stored data and the recency order are left as they are.
func (m *MemoryStore) Touch(ctx context.Context, id string, rec *Record) error {
	if rec == nil {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[id]
	if !ok {
		return nil
	}

	stored, err := DecodeRecord(m.entries[idx].payload)
	if err != nil {
		return err
	}
	stored.Cookie = rec.Cookie.Clone()

	payload, err := EncodeRecord(stored)
	if err != nil {
		return err
	}
	m.entries[idx].payload = payload
	return nil
}

// All returns every live session. Expired sessions found on the way are
// removed.
func (m *MemoryStore) All(ctx context.Context) (map[string]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*Record, len(m.index))
	for idx := m.head; idx != -1; {
		next := m.entries[idx].next
		rec, err := DecodeRecord(m.entries[idx].payload)
		if err != nil {
			return nil, err
		}
		if rec.Cookie.Expired() {
			m.remove(idx)
		} else {
			out[m.entries[idx].id] = rec
		}
		idx = next
	}
	return out, nil
}

// Len returns the number of stored sessions, expired ones included until
// they are swept.
func (m *MemoryStore) Len(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index), nil
}

// Clear removes every session
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.index = make(map[string]int)
	m.entries = nil
	m.free = nil
	m.head, m.tail = -1, -1
	return nil
}

// Keys returns stored ids from the most to the least recently written.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.index))
	for idx := m.head; idx != -1; idx = m.entries[idx].next {
		keys = append(keys, m.entries[idx].id)
	}
	return keys
}

// DeleteExpired removes every expired session
func (m *MemoryStore) DeleteExpired(ctx context.Context) error {
	_, err := m.All(ctx)
	return err
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

// cleanupLoop runs periodic cleanup of expired sessions
func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) alloc(id string, payload []byte) int {
	e := memoryEntry{id: id, payload: payload, prev: -1, next: -1}
	if n := len(m.free); n > 0 {
		idx := m.free[n-1]
		m.free = m.free[:n-1]
		m.entries[idx] = e
		return idx
	}
	m.entries = append(m.entries, e)
	return len(m.entries) - 1
}

func (m *MemoryStore) pushFront(idx int) {
	m.entries[idx].prev = -1
	m.entries[idx].next = m.head
	if m.head != -1 {
		m.entries[m.head].prev = idx
	}
	m.head = idx
	if m.tail == -1 {
		m.tail = idx
	}
}

func (m *MemoryStore) unlink(idx int) {
	prev, next := m.entries[idx].prev, m.entries[idx].next
	if prev != -1 {
		m.entries[prev].next = next
	} else {
		m.head = next
	}
	if next != -1 {
		m.entries[next].prev = prev
	} else {
		m.tail = prev
	}
	m.entries[idx].prev, m.entries[idx].next = -1, -1
}

func (m *MemoryStore) remove(idx int) {
	m.unlink(idx)
	delete(m.index, m.entries[idx].id)
	m.entries[idx] = memoryEntry{prev: -1, next: -1}
	m.free = append(m.free, idx)
}
