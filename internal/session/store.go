// Package session keeps one orchestrator per visitor in memory. Sessions
// expire after a period of inactivity and are never persisted.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/smilecare-booking/internal/observability/metrics"
	"github.com/wolfman30/smilecare-booking/internal/orchestrator"
	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session: not found")

// Factory builds the orchestrator for a new session.
type Factory func(id string) *orchestrator.Orchestrator

// Session is a visitor's booking state. All access to the orchestrator
// goes through Do, which serialises it.
type Session struct {
	ID string

	mu       sync.Mutex
	orch     *orchestrator.Orchestrator
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's orchestrator.
func (s *Session) Do(fn func(o *orchestrator.Orchestrator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.orch)
}

// Config configures a Store.
type Config struct {
	TTL     time.Duration
	Factory Factory
	Metrics *metrics.BookingMetrics
	Logger  *logging.Logger
	Clock   func() time.Time
}

// Store is a concurrency-safe map of live sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl     time.Duration
	factory Factory
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewStore creates an empty store. A zero TTL defaults to 30 minutes.
func NewStore(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Factory == nil {
		cfg.Factory = func(id string) *orchestrator.Orchestrator {
			return orchestrator.New(orchestrator.Config{SessionID: id, Logger: cfg.Logger})
		}
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      cfg.TTL,
		factory:  cfg.Factory,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.Component("session"),
		now:      cfg.Clock,
	}
}

// Create starts a new session.
func (s *Store) Create() *Session {
	id := uuid.NewString()
	sess := &Session{ID: id, orch: s.factory(id), lastSeen: s.now()}

	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	s.logger.Debug("session created", "session_id", id)
	return sess
}

// Get returns a live session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		s.metrics.SetActiveSessions(len(s.sessions))
		return nil, ErrNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// Delete removes a session. Unknown IDs are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(n)
}

// Len reports the number of sessions held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	if removed > 0 {
		s.logger.Info("expired sessions swept", "removed", removed, "active", n)
	}
	return removed
}

// Run sweeps on every interval tick until ctx is cancelled.
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
