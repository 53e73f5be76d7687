package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
)

type sessionEntry struct {
	session   *model.Session
	expiresAt time.Time
}

// SessionStore keeps in-progress sessions in memory with the same TTL and
// deadline semantics as the Redis store.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]sessionEntry
	deadlines map[string]time.Time
	now       func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]sessionEntry),
		deadlines: make(map[string]time.Time),
		now:       time.Now,
	}
}

// SetClock replaces the clock used for TTL expiry.
func (s *SessionStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *SessionStore) Save(_ context.Context, sess *model.Session, ttl time.Duration) error {
	c, err := clone(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := sessionEntry{session: c}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.sessions[sess.ID] = entry
	if deadline, ok := sess.Deadline(); ok {
		s.deadlines[sess.ID] = deadline
	}
	return nil
}

// lookup returns the live entry for id. Callers hold mu.
func (s *SessionStore) lookup(id string) (sessionEntry, bool) {
	entry, ok := s.sessions[id]
	if !ok {
		return entry, false
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		return entry, false
	}
	return entry, true
}

func (s *SessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(entry.session)
}

// Update applies fn to a copy and stores it only when fn succeeds.
func (s *SessionStore) Update(_ context.Context, id string, fn func(*model.Session) error) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	working, err := clone(entry.session)
	if err != nil {
		return nil, err
	}
	if err := fn(working); err != nil {
		return nil, err
	}

	stored, err := clone(working)
	if err != nil {
		return nil, err
	}
	entry.session = stored
	s.sessions[id] = entry
	return working, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	delete(s.deadlines, id)
	return nil
}

func (s *SessionStore) Expired(_ context.Context, now time.Time, limit int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type due struct {
		id       string
		deadline time.Time
	}
	var list []due
	for id, d := range s.deadlines {
		if !d.After(now) {
			list = append(list, due{id, d})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].deadline.Before(list[j].deadline) })

	ids := make([]string, 0, len(list))
	for _, d := range list {
		if limit > 0 && int64(len(ids)) >= limit {
			break
		}
		ids = append(ids, d.id)
	}
	return ids, nil
}

func (s *SessionStore) Unschedule(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.deadlines, id)
	s.mu.Unlock()
	return nil
}
