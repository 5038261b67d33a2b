package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jusunglee/railmap-go/internal/viewer"
)

// ErrSessionNotFound is returned for an unknown or expired session ID
var ErrSessionNotFound = errors.New("session not found")

// Session is one viewer registered with the store
type Session struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"createdAt"`
	LastAccess time.Time      `json:"lastAccess"`
	Viewer     *viewer.Viewer `json:"-"`
}

// Store manages in-memory map sessions
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	lastUpdate time.Time
	now        func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewStore creates a new store instance
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers v under a fresh session ID
func (s *Store) Create(v *viewer.Viewer) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastAccess: now,
		Viewer:     v,
	}
	s.sessions[sess.ID] = sess
	s.lastUpdate = now

	return *sess
}

// Get returns the session with the given ID and marks it as used
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.LastAccess = s.now()

	return *sess, nil
}

// Delete removes a session and detaches its viewer
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		s.lastUpdate = s.now()
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Viewer.Close()
	return nil
}

// List returns all sessions, oldest first
func (s *Store) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, *sess)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire removes sessions idle for longer than ttl and returns how many
func (s *Store) Expire(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.LastAccess.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	if len(expired) > 0 {
		s.lastUpdate = s.now()
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Viewer.Close()
	}
	return len(expired)
}

// StartJanitor expires idle sessions every interval until Stop is called
func (s *Store) StartJanitor(interval, ttl time.Duration) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Expire(ttl)
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the janitor and waits for it to exit
func (s *Store) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// GetLastUpdate returns the time sessions last changed
func (s *Store) GetLastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}
