// Package session provides explicitly passed per-session state for connector
// tool handlers: a string key/value store plus a TTL'd response cache for
// upstream API replies. A session is created when an agent session starts and
// deleted (or idle-expired) when it ends; nothing here is a process-wide
// singleton, which keeps the search core free of hidden state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toolbridge/connectorkit/internal/errors"
)

const (
	// DefaultTTL is the idle lifetime of a session when none is configured.
	DefaultTTL = 30 * time.Minute

	// DefaultCacheTTL is the lifetime of cached upstream responses.
	DefaultCacheTTL = 5 * time.Minute
)

// Store manages the lifecycle of sessions. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time // swappable for tests
}

// NewStore creates a session store. Non-positive durations fall back to the
// package defaults.
func NewStore(ttl, cacheTTL time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Create starts a new session with a fresh UUID.
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := &Session{
		ID:       uuid.New().String(),
		values:   make(map[string]string),
		cache:    make(map[string]cacheEntry),
		cacheTTL: st.cacheTTL,
		lastSeen: st.now(),
		now:      st.now,
	}
	st.sessions[s.ID] = s
	return s
}

// Get returns the session with the given ID and refreshes its idle timer.
// Expired sessions are removed and reported as not found.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, exists := st.sessions[id]
	if !exists {
		return nil, errors.NewSessionNotFoundError(id)
	}

	now := st.now()
	if now.Sub(s.touchedAt()) > st.ttl {
		delete(st.sessions, id)
		return nil, errors.NewSessionNotFoundError(id)
	}

	s.touch(now)
	return s, nil
}

// Delete ends a session. Deleting an unknown ID is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Sweep removes every expired session and returns how many were dropped.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.touchedAt()) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper launches a background goroutine that calls Sweep every
// interval, so abandoned sessions are reclaimed even when nothing looks them
// up again. The returned stop function halts the goroutine; calling it more
// than once is safe.
func (st *Store) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st.Sweep()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// Len returns the number of live (possibly idle) sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// Session carries the per-session key/value store and response cache.
// Safe for concurrent use by handlers running in parallel requests.
type Session struct {
	ID string

	mu       sync.RWMutex
	values   map[string]string
	cache    map[string]cacheEntry
	cacheTTL time.Duration
	lastSeen time.Time
	now      func() time.Time
}

// SetValue stores a string value under key.
func (s *Session) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// GetValue returns the string value stored under key.
func (s *Session) GetValue(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// DeleteValue removes key from the key/value store.
func (s *Session) DeleteValue(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// CachePut stores an upstream response under key with the store's cache TTL.
func (s *Session) CachePut(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{
		value:     value,
		expiresAt: s.now().Add(s.cacheTTL),
	}
}

// CacheGet returns a cached response if present and not expired.
func (s *Session) CacheGet(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.cache, key)
		return nil, false
	}
	return entry.value, true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) touchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
