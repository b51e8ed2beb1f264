package session

import (
	"context"
	"sync"
	"time"
)

// Image is the last generated image of a session.
type Image struct {
	PNG      []byte
	Prompt   string
	Provider string
	Sequence string
	Filename string
	MIME     string
}

// State is everything the UI remembers between requests.
type State struct {
	Prompt    string
	LastImage *Image
	UpdatedAt time.Time
}

// Store keeps UI sessions in memory. Entries untouched for longer than the
// TTL are evicted by Sweep.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]State
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{ttl: ttl, now: time.Now, entries: map[string]State{}}
}

// Get returns the state for id. Expired entries are reported as missing.
func (s *Store) Get(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok {
		return State{}, false
	}
	if s.now().Sub(st.UpdatedAt) > s.ttl {
		delete(s.entries, id)
		return State{}, false
	}
	return st, true
}

// Update applies fn to the state of id, creating it when missing.
func (s *Store) Update(id string, fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.entries[id]
	if s.now().Sub(st.UpdatedAt) > s.ttl {
		st = State{}
	}
	fn(&st)
	st.UpdatedAt = s.now()
	s.entries[id] = st
	return st
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, st := range s.entries {
		if now.Sub(st.UpdatedAt) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
