// Package history keeps the most recent messages in a fixed-size in-memory ring.
// When the ring is full the oldest record is evicted first. All operations take
// the same mutex, so Add, List and Clear are atomic with respect to each other.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is used when no positive capacity is configured.
const DefaultCapacity = 20

// Store is a bounded FIFO of Records. The zero value is not usable; call New.
type Store struct {
	mu    sync.Mutex
	ring  []Record
	head  int // index of the oldest record
	count int

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum number of records held. Values <= 0 are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.ring = make([]Record, n)
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides record id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		ring:  make([]Record, DefaultCapacity),
		now:   time.Now,
		newID: newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a UUIDv7: a millisecond timestamp followed by random bits.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Add records content, evicting the oldest record if the store is full.
// content must already be sanitized.
func (s *Store) Add(content string) Record {
	return s.add(Record{Content: content})
}

// AddMessage records an intake entry built from a sanitized ip and message.
func (s *Store) AddMessage(ip, message string) Record {
	return s.add(Record{
		Content: FormatLine(ip, message),
		IP:      ip,
		Message: message,
	})
}

func (s *Store) add(rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	// stamped under the lock so timestamps follow insertion order
	rec.ID = s.newID()
	rec.Timestamp = s.now().UTC().Format(TimestampLayout)

	capacity := len(s.ring)
	if s.count == capacity {
		s.ring[s.head] = rec
		s.head = (s.head + 1) % capacity
		return rec
	}
	s.ring[(s.head+s.count)%capacity] = rec
	s.count++
	return rec
}

// List returns a copy of the held records, oldest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, s.count)
	for i := range out {
		out[i] = s.ring[(s.head+i)%len(s.ring)]
	}
	return out
}

// Clear drops every record. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.ring)
	s.head = 0
	s.count = 0
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Capacity returns the maximum number of records held.
func (s *Store) Capacity() int {
	return len(s.ring)
}
