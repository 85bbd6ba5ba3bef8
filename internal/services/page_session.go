package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
)

// Detachable is a page controller that can be told its page is gone
type Detachable interface {
	Detach()
}

type pageSession struct {
	controller Detachable
	lastSeen   time.Time
}

// PageSessions keeps the controller of each rendered page alive until the
// page is closed or the session goes unused for the TTL
type PageSessions struct {
	ttl    time.Duration
	now    func() time.Time
	logger *logging.SafeLogger

	mu       sync.Mutex
	sessions map[string]*pageSession
}

// NewPageSessions creates an empty registry
func NewPageSessions(ttl time.Duration) *PageSessions {
	return &PageSessions{
		ttl:      ttl,
		now:      time.Now,
		logger:   observability.Logger().Named("page_sessions"),
		sessions: make(map[string]*pageSession),
	}
}

// Open registers controller and returns the new session ID
func (s *PageSessions) Open(controller Detachable) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &pageSession{controller: controller, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	observability.PageSessions.Set(float64(n))
	return id
}

// Get returns the controller of a live session and refreshes its TTL
func (s *PageSessions) Get(id string) (Detachable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.controller, true
}

// SessionController returns the controller of session id when it has type T
func SessionController[T Detachable](s *PageSessions, id string) (T, bool) {
	var zero T
	if s == nil || id == "" {
		return zero, false
	}
	c, ok := s.Get(id)
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}

// Close detaches and forgets a session; it reports whether it existed
func (s *PageSessions) Close(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.controller.Detach()
	observability.PageSessions.Set(float64(n))
	return true
}

// Sweep closes sessions idle for longer than the TTL and returns how many
func (s *PageSessions) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []Detachable
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess.controller)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, c := range expired {
		c.Detach()
	}
	observability.PageSessions.Set(float64(n))
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes all sessions
func (s *PageSessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired page sessions", zap.Int("count", n))
			}
		}
	}
}

// CloseAll detaches every session
func (s *PageSessions) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*pageSession)
	s.mu.Unlock()

	for _, sess := range all {
		sess.controller.Detach()
	}
	observability.PageSessions.Set(0)
}

// Len returns the number of live sessions
func (s *PageSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
