package service

import (
	"sync"
	"time"

	"github.com/altustroy/snab/internal/imports/entity"
)

// SessionStore keeps live import sessions in memory. Committed and cancelled
// sessions are retained until TTL so late creation-bridge messages can still
// find their rows.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entity.ImportSession
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*entity.ImportSession),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *SessionStore) Put(sess *entity.ImportSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) (*entity.ImportSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// View returns a copy of the session taken under the lock. Everything that
// reads a session outside Update, handlers serializing it included, goes
// through here; Get hands out the live pointer and is for callers that
// only check existence.
func (s *SessionStore) View(id string) (*entity.ImportSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Update runs fn on the session under the store lock. The bridge and the
// HTTP handlers touch the same rows, so all mutation goes through here.
func (s *SessionStore) Update(id string, fn func(*entity.ImportSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if err := fn(sess); err != nil {
		return err
	}
	sess.UpdatedAt = time.Now()
	return nil
}

// Each visits every live session under the lock until fn returns true.
func (s *SessionStore) Each(fn func(*entity.ImportSession) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if fn(sess) {
			sess.UpdatedAt = time.Now()
			return
		}
	}
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *SessionStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, sess := range s.sessions {
				if sess.UpdatedAt.Before(cutoff) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
