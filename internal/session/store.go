// Package session holds per-chat conversation state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/akmal-2004/easify-seller/internal/model"
	"github.com/akmal-2004/easify-seller/pkg/logger"
	"github.com/akmal-2004/easify-seller/pkg/metrics"
	"go.uber.org/zap"
)

// Session is the conversational state for one chat. The embedded mutex
// serializes exchanges: a second inbound event for the same chat waits for
// the in-flight one instead of interleaving transcript appends.
type Session struct {
	sync.Mutex

	ChatID int64

	turns      []model.Turn
	exchanges  int
	lastActive time.Time
}

// Snapshot returns a copy of the transcript. The agent works on the copy and
// commits it back only after a successful exchange.
func (s *Session) Snapshot() []model.Turn {
	out := make([]model.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Commit replaces the transcript with the completed exchange and bumps the
// exchange counter. Caller must hold the session lock.
func (s *Session) Commit(turns []model.Turn) {
	s.turns = turns
	s.exchanges++
	s.lastActive = time.Now()
}

// Touch marks the session as active without mutating the transcript.
func (s *Session) Touch() {
	s.lastActive = time.Now()
}

// Reset atomically empties the transcript.
func (s *Session) Reset() {
	s.turns = nil
	s.lastActive = time.Now()
}

// Len returns the transcript length.
func (s *Session) Len() int {
	return len(s.turns)
}

// Exchanges returns the number of completed exchanges.
func (s *Session) Exchanges() int {
	return s.exchanges
}

// trim drops the oldest turns until the transcript fits maxTurns. Trimming
// resumes at a user turn so a tool-result is never left without its call.
func (s *Session) trim(maxTurns int) {
	if maxTurns <= 0 || len(s.turns) <= maxTurns {
		return
	}
	i := len(s.turns) - maxTurns
	for i < len(s.turns) && s.turns[i].Role != model.RoleUser {
		i++
	}
	s.turns = append([]model.Turn(nil), s.turns[i:]...)
}

// Store owns all sessions, keyed by chat id. Sessions are created on first
// use and evicted after idling past the TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	idleTTL  time.Duration
	maxTurns int
	logger   *logger.Logger
}

// NewStore creates a session store.
func NewStore(idleTTL time.Duration, maxTurns int, log *logger.Logger) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		idleTTL:  idleTTL,
		maxTurns: maxTurns,
		logger:   log,
	}
}

// GetOrCreate returns the session for a chat, creating it on first use.
func (s *Store) GetOrCreate(chatID int64) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[chatID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[chatID]; ok {
		return sess
	}
	sess = &Session{ChatID: chatID, lastActive: time.Now()}
	s.sessions[chatID] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return sess
}

// Commit stores a completed exchange on the session and enforces the
// transcript cap. Caller must hold the session lock.
func (s *Store) Commit(sess *Session, turns []model.Turn) {
	sess.Commit(turns)
	sess.trim(s.maxTurns)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run sweeps idle sessions until the context is cancelled.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

func (s *Store) sweep(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for chatID, sess := range s.sessions {
		// TryLock skips sessions with an exchange in flight.
		if !sess.TryLock() {
			continue
		}
		idle := now.Sub(sess.lastActive)
		sess.Unlock()

		if idle > s.idleTTL {
			delete(s.sessions, chatID)
			evicted++
		}
	}

	if evicted > 0 {
		metrics.SessionsEvictedTotal.Add(float64(evicted))
		metrics.SessionsActive.Set(float64(len(s.sessions)))
		s.logger.Info("evicted idle sessions",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(s.sessions)),
		)
	}
}
