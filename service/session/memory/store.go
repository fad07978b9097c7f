// Package memory implements an in-process session store with optional TTL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/kgflow/internal/clock"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/service/session"
)

type entry struct {
	values  state.Context
	updated time.Time
}

// Store represents memory session store; zero ttl disables expiry
type Store struct {
	mux     sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     clock.Func
}

var _ session.Store = (*Store)(nil)

func (s *Store) Get(_ context.Context, userID string) (state.Context, error) {
	if userID == "" {
		return nil, session.ErrInvalidUser
	}
	s.mux.RLock()
	e, ok := s.entries[userID]
	s.mux.RUnlock()
	if !ok {
		return state.NewContext(), nil
	}
	if s.expired(e, s.now()) {
		s.mux.Lock()
		if current, ok := s.entries[userID]; ok && current == e {
			delete(s.entries, userID)
		}
		s.mux.Unlock()
		return state.NewContext(), nil
	}
	return e.values.Clone(), nil
}

func (s *Store) Put(_ context.Context, userID string, values state.Context) error {
	if userID == "" {
		return session.ErrInvalidUser
	}
	s.mux.Lock()
	s.entries[userID] = &entry{values: values.Clone(), updated: s.now()}
	s.mux.Unlock()
	return nil
}

func (s *Store) Clear(_ context.Context, userID string) error {
	s.mux.Lock()
	delete(s.entries, userID)
	s.mux.Unlock()
	return nil
}

// Sweep removes expired entries, returns removed count
func (s *Store) Sweep() int {
	now := s.now()
	s.mux.Lock()
	defer s.mux.Unlock()
	removed := 0
	for userID, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, userID)
			removed++
		}
	}
	return removed
}

// Len returns number of stored sessions, including not yet swept expired ones
func (s *Store) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.entries)
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.updated) > s.ttl
}

// New creates memory session store
func New(ttl time.Duration, opts ...Option) *Store {
	ret := &Store{entries: map[string]*entry{}, ttl: ttl, now: clock.Now}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Option represents store option
type Option func(s *Store)

// WithClock sets time source
func WithClock(now clock.Func) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
