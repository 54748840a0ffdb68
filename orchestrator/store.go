package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/privlens/privlens/experiment"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
)

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]Session),
	}
}

func (s *sessionStore) Create(sess Session) error {
	if sess.ID == "" {
		return pkgerrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; ok {
		return pkgerrors.ErrEntityExists
	}

	s.sessions[sess.ID] = sess

	return nil
}

func (s *sessionStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, pkgerrors.ErrNotFound
	}

	return sess, nil
}

func (s *sessionStore) Update(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return pkgerrors.ErrNotFound
	}

	s.sessions[sess.ID] = sess

	return nil
}

// BeginRun admits a new run cycle. The terminal-phase check, the epoch bump
// and the move to RunningBaseline happen under one lock so concurrent
// submissions cannot both be admitted against the same epoch.
func (s *sessionStore) BeginRun(id string, cfg experiment.Config, now time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, pkgerrors.ErrNotFound
	}
	if !sess.Phase.Terminal() {
		return Session{}, pkgerrors.ErrRunInProgress
	}

	cfgCopy := cfg
	sess.Epoch++
	sess.Config = &cfgCopy
	sess.Comparison = experiment.Comparison{}
	sess.Failure = ""
	sess.Reflection = nil
	sess.Phase = experiment.RunningBaseline
	sess.UpdatedAt = now
	s.sessions[id] = sess

	return sess, nil
}

func (s *sessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return pkgerrors.ErrNotFound
	}

	delete(s.sessions, id)

	return nil
}

// List returns sessions ordered oldest-first, plus the total count.
func (s *sessionStore) List(offset, limit uint64) ([]Session, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}

		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := uint64(len(all))
	if offset >= total {
		return []Session{}, total
	}

	end := offset + limit
	if limit == 0 || end > total {
		end = total
	}

	return all[offset:end], total
}
