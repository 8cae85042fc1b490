package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultCleanupInterval = 5 * time.Minute

// MemorySessionStore keeps sessions in memory. Expired sessions are removed
// by a background goroutine. Safe for concurrent use; sessions do not
// survive a restart.
type MemorySessionStore struct {
	mu           sync.RWMutex
	sessions     map[uuid.UUID]Session
	userSessions map[uuid.UUID][]uuid.UUID
	now          func() time.Time
	done         chan struct{}
}

// NewMemorySessionStore creates a store and starts the cleanup loop with the
// given interval (5 minutes when zero).
func NewMemorySessionStore(cleanupInterval time.Duration) *MemorySessionStore {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	s := &MemorySessionStore{
		sessions:     make(map[uuid.UUID]Session),
		userSessions: make(map[uuid.UUID][]uuid.UUID),
		now:          time.Now,
		done:         make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *MemorySessionStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = *sess
	s.userSessions[sess.UserID] = append(s.userSessions[sess.UserID], sess.ID)
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)
	return nil
}

// DeleteAllForUser removes every session of userID and returns how many
// were removed.
func (s *MemorySessionStore) DeleteAllForUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.userSessions[userID]
	count := 0
	for _, id := range ids {
		if _, ok := s.sessions[id]; ok {
			delete(s.sessions, id)
			count++
		}
	}
	delete(s.userSessions, userID)
	return count, nil
}

// Count returns the number of stored sessions, expired ones included until
// the next cleanup.
func (s *MemorySessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemorySessionStore) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *MemorySessionStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemorySessionStore) cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.Expired(now) {
			s.remove(id)
		}
	}
}

// remove deletes one session and its user index entry. Callers hold mu.
func (s *MemorySessionStore) remove(id uuid.UUID) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)

	ids := s.userSessions[sess.UserID]
	for i, sid := range ids {
		if sid == id {
			s.userSessions[sess.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.userSessions[sess.UserID]) == 0 {
		delete(s.userSessions, sess.UserID)
	}
}
