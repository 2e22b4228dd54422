package session

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/careportal/internal/domain"
)

type memoryEntry struct {
	sess      domain.Session
	expiresAt time.Time
}

// memorySweepInterval bounds how often Save scans for abandoned sessions.
const memorySweepInterval = time.Minute

// MemoryStorage keeps sessions in process. Used when Redis is not configured.
type MemoryStorage struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStorage) Save(_ context.Context, token string, sess domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		s.sweepLocked(now)
	}

	sess.Token = ""
	s.entries[tokenKey(token)] = memoryEntry{sess: sess, expiresAt: now.Add(ttl)}
	return nil
}

// sweepLocked drops every expired entry. Callers hold s.mu.
func (s *MemoryStorage) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.lastSweep = now
}

func (s *MemoryStorage) Load(_ context.Context, token string) (domain.Session, error) {
	k := tokenKey(token)

	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()

	if !ok {
		return domain.Session{}, ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, k)
		s.mu.Unlock()
		return domain.Session{}, ErrNotFound
	}

	e.sess.Token = token
	return e.sess, nil
}

func (s *MemoryStorage) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, tokenKey(token))
	return nil
}

func (s *MemoryStorage) Ping(context.Context) error { return nil }

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
