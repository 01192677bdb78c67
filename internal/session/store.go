package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"flowfit-backend/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store owns session state. Get returns a private copy; Update applies fn to
// a copy and commits it atomically only when fn succeeds.
type Store interface {
	Create(ctx context.Context) (*models.SessionState, error)
	Get(ctx context.Context, id string) (*models.SessionState, error)
	Update(ctx context.Context, id string, fn func(*models.SessionState) error) (*models.SessionState, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state    *models.SessionState
	lastSeen time.Time
}

// MemoryStore keeps sessions in process memory and forgets idle ones.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					log.Debugf("expired %d idle sessions", n)
				}
			case <-s.stop:
				return
			}
		}
	}()

	return s
}

func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) Create(ctx context.Context) (*models.SessionState, error) {
	now := s.now()
	state := New(uuid.NewString(), now)

	s.mu.Lock()
	s.sessions[state.ID] = &memoryEntry{state: state, lastSeen: now}
	s.mu.Unlock()

	return Clone(state), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return Clone(e.state), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*models.SessionState) error) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	next := Clone(e.state)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	e.state = next
	e.lastSeen = next.UpdatedAt

	return Clone(next), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(id string) (*memoryEntry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	e.lastSeen = now
	return e, nil
}

func (s *MemoryStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
