package session

import (
	"context"
	"sync"
	"time"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
)

const storeSweepInterval = 5 * time.Minute

// Record is the server-side session state. The bearer token is the only
// durable per-session credential; the user is a cache of the backend
// profile, invalidated whenever the token is.
type Record struct {
	Token      string    `json:"token"`
	User       *api.User `json:"user,omitempty"`
	Error      string    `json:"error,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Store persists session records keyed by session ID.
type Store interface {
	Get(ctx context.Context, id string) (Record, bool, error)
	Save(ctx context.Context, id string, rec Record) error
	Delete(ctx context.Context, id string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	Close()
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stopCh  chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryStore returns an in-process Store with TTL expiry.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	s := &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *memoryStore) Get(_ context.Context, id string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, id)
		return Record{}, false, nil
	}
	return entry.rec, true, nil
}

func (s *memoryStore) Save(_ context.Context, id string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{rec: rec, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *memoryStore) Ping(_ context.Context) error { return nil }

func (s *memoryStore) sweepLoop() {
	ticker := time.NewTicker(storeSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *memoryStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func (s *memoryStore) Close() {
	s.once.Do(func() {
		close(s.stopCh)
	})
}
