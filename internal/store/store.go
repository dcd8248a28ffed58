package store

import (
	"sync"
	"time"

	"github.com/juststeveking/lodestone/internal/status"
)

const subscriberBuffer = 16

// Snapshot is the renderable state of the slot at a point in time.
type Snapshot struct {
	// Status is what the widget shows: the parsed status, the failure
	// sentinel, or the loading placeholder before the first poll resolves.
	Status status.ServerStatus `json:"status"`

	// Loading is true until the first poll of the session resolves.
	Loading bool `json:"loading"`

	// ErrorKind is set when the last applied poll failed.
	ErrorKind status.ErrorKind `json:"error_kind,omitempty"`

	// UpdatedAt is when the last outcome was applied. Zero while loading.
	UpdatedAt time.Time `json:"updated_at"`

	// Seq is the sequence number of the applied poll.
	Seq uint64 `json:"-"`

	// Outcome is the raw result of the applied poll.
	Outcome status.Outcome `json:"-"`
}

// Store is a concurrency-safe single-slot status store with subscriptions.
//
// Subscribers receive snapshots via buffered channels. Sends are non-blocking;
// a subscriber whose buffer is full misses that update but can always read the
// latest value with [Store.Snapshot].
type Store struct {
	host string

	mu      sync.RWMutex
	current Snapshot

	subMu       sync.RWMutex
	subscribers map[chan Snapshot]struct{}
}

// New creates a store for host. The host is used to build the failure sentinel.
func New(host string) *Store {
	return &Store{
		host: host,
		current: Snapshot{
			Status:  status.Placeholder(),
			Loading: true,
		},
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Apply stores the outcome of poll seq if it is newer than the last applied one.
//
// It reports whether the outcome was applied. Applying any outcome, success or
// failure, clears the loading flag for good.
func (s *Store) Apply(seq uint64, outcome status.Outcome) bool {
	s.mu.Lock()
	if seq <= s.current.Seq {
		s.mu.Unlock()
		return false
	}

	s.current = Snapshot{
		Status:    outcome.Status(s.host),
		Loading:   false,
		ErrorKind: outcome.Kind,
		UpdatedAt: time.Now(),
		Seq:       seq,
		Outcome:   outcome,
	}

	// notify under mu so subscribers see snapshots in applied order
	s.notifySubscribers(s.current)
	s.mu.Unlock()

	return true
}

// Snapshot returns the current state of the slot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Host returns the host the store was created for.
func (s *Store) Host() string {
	return s.host
}

// Subscribe returns a channel receiving every applied snapshot.
// Caller must call [Store.Unsubscribe] when done.
func (s *Store) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (s *Store) Unsubscribe(ch <-chan Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for subCh := range s.subscribers {
		if subCh == ch {
			delete(s.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (s *Store) notifySubscribers(snap Snapshot) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber, drop
		}
	}
}
