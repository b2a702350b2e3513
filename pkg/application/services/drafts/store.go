package drafts

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/embunadw/wms/pkg/application/services/composer"
	"github.com/embunadw/wms/pkg/application/services/reference"
)

// ErrDraftNotFound is returned for unknown or expired draft ids
var ErrDraftNotFound = errors.New("draft not found")

// Draft is one in-progress document held by the service. Its composer is
// only touched under the draft's own mutex.
type Draft struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	composer *composer.Composer
	snapshot *reference.Snapshot
	touched  time.Time
	// closed is set once the draft is submitted, discarded or expired;
	// callers that already hold the pointer then see ErrDraftNotFound
	closed bool
}

// Do runs fn with exclusive access to the draft's composer and reference data.
// It returns ErrDraftNotFound without calling fn once the draft is closed.
func (d *Draft) Do(fn func(c *composer.Composer, snapshot *reference.Snapshot) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDraftNotFound
	}
	d.touched = time.Now()
	return fn(d.composer, d.snapshot)
}

// doAndClose is Do, closing the draft when fn succeeds. Nothing else can run
// against the draft between fn returning and the draft closing.
func (d *Draft) doAndClose(fn func(c *composer.Composer, snapshot *reference.Snapshot) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDraftNotFound
	}
	d.touched = time.Now()
	if err := fn(d.composer, d.snapshot); err != nil {
		return err
	}
	d.closed = true
	return nil
}

func (d *Draft) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func (d *Draft) closeIfIdle(now time.Time, ttl time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || now.Sub(d.touched) <= ttl {
		return false
	}
	d.closed = true
	return true
}

// Store keeps drafts in memory. Nothing is persisted; a restart loses every draft.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[string]*Draft)}
}

// Put registers a new draft under a fresh id
func (s *Store) Put(c *composer.Composer, snapshot *reference.Snapshot) *Draft {
	now := time.Now()
	d := &Draft{
		ID:        uuid.NewString(),
		CreatedAt: now,
		composer:  c,
		snapshot:  snapshot,
		touched:   now,
	}

	s.mu.Lock()
	s.drafts[d.ID] = d
	s.mu.Unlock()
	return d
}

// Get returns the draft with id
func (s *Store) Get(id string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Delete removes and closes the draft with id and reports whether it existed.
// The store lock is released before the draft lock is taken.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	d, ok := s.drafts[id]
	delete(s.drafts, id)
	s.mu.Unlock()

	if ok {
		d.close()
	}
	return ok
}

// Len returns the number of live drafts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Sweep closes and removes drafts idle for longer than ttl and returns their
// ids. Draft locks are never taken while the store lock is held.
func (s *Store) Sweep(now time.Time, ttl time.Duration) []string {
	s.mu.RLock()
	candidates := make([]*Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		candidates = append(candidates, d)
	}
	s.mu.RUnlock()

	var expired []string
	for _, d := range candidates {
		if d.closeIfIdle(now, ttl) {
			expired = append(expired, d.ID)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, id := range expired {
		delete(s.drafts, id)
	}
	s.mu.Unlock()
	return expired
}
