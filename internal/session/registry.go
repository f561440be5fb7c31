package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/metrics"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// ErrNotFound is returned for unknown or evicted sessions.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex
	session  *quiz.Session
	lastSeen time.Time
}

// Registry owns the live quiz sessions. Calls against one session are
// serialized by that session's lock; different sessions never contend.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	idleTTL time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewRegistry(idleTTL time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = 2 * time.Hour
	}
	return &Registry{
		entries: make(map[uuid.UUID]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
		metrics: m,
		logger:  logger.With().Str("component", "session_registry").Logger(),
	}
}

// Add stores s under id, replacing any session already there.
func (r *Registry) Add(id uuid.UUID, s *quiz.Session) {
	r.mu.Lock()
	r.entries[id] = &entry{session: s, lastSeen: r.now()}
	n := len(r.entries)
	r.mu.Unlock()
	r.metrics.SessionsActive(n)
}

// Has reports whether id is registered.
func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// With runs fn against session id while holding its lock.
func (r *Registry) With(id uuid.UUID, fn func(*quiz.Session) error) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = r.now()
	return fn(e.session)
}

// Remove drops id. It reports whether the session existed.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	n := len(r.entries)
	r.mu.Unlock()
	r.metrics.SessionsActive(n)
	return ok
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep evicts sessions idle for longer than the idle TTL and returns their IDs.
func (r *Registry) Sweep() []uuid.UUID {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var evicted []uuid.UUID
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue // in use, so not idle
		}
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
		e.mu.Unlock()
	}
	n := len(r.entries)
	r.mu.Unlock()

	r.metrics.SessionsActive(n)
	if len(evicted) > 0 {
		r.logger.Info().Int("evicted", len(evicted)).Int("remaining", n).Msg("idle sessions evicted")
	}
	return evicted
}
