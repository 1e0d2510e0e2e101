// Package chat keeps the per-session assistant transcript and serializes
// queries so that each session has at most one model call in flight.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/suleman231/provisimarket-hub/internal/assistant"
	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/logger"
)

// Asker answers a shopper query. assistant.Bridge satisfies it.
type Asker interface {
	Ask(ctx context.Context, query string, location *domain.Coordinates) assistant.Answer
}

// State of a chat session.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
)

// Transcript is a point-in-time copy of a session's conversation.
type Transcript struct {
	State   State             `json:"state"`
	Pending int               `json:"pending"`
	Turns   []domain.ChatTurn `json:"turns"`
}

// Session is one conversation. Turns are only ever appended.
type Session struct {
	flight chan struct{}

	mu       sync.Mutex
	evicted  bool
	turns    []domain.ChatTurn
	pending  int
	lastUsed time.Time
}

func newSession(now time.Time) *Session {
	return &Session{flight: make(chan struct{}, 1), lastUsed: now}
}

func (s *Session) append(turn domain.ChatTurn) {
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.lastUsed = turn.Timestamp
	s.mu.Unlock()
}

func (s *Session) transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Transcript{
		State:   StateIdle,
		Pending: s.pending,
		Turns:   make([]domain.ChatTurn, len(s.turns)),
	}
	copy(t.Turns, s.turns)
	if s.pending > 0 {
		t.State = StateAwaitingResponse
	}
	return t
}

// Registry holds the chat sessions of every shopper.
type Registry struct {
	asker  Asker
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(asker Asker, logger *slog.Logger) *Registry {
	return &Registry{
		asker:    asker,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) session(sessionID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = newSession(r.now())
		r.sessions[sessionID] = s
	}
	return s
}

// open returns the live session for sessionID locked. A session evicted
// after it was looked up is dropped and looked up again.
func (r *Registry) open(sessionID string) *Session {
	for {
		s := r.session(sessionID)
		s.mu.Lock()
		if !s.evicted {
			return s
		}
		s.mu.Unlock()

		r.mu.Lock()
		if r.sessions[sessionID] == s {
			delete(r.sessions, sessionID)
		}
		r.mu.Unlock()
	}
}

// Transcript returns the conversation of a session. Unknown sessions have an
// empty idle transcript.
func (r *Registry) Transcript(sessionID string) (Transcript, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Transcript{}, apperrors.InvalidInput("session id is required")
	}
	return r.session(sessionID).transcript(), nil
}

// Submit records the query as a user turn, waits for any earlier query of
// the same session to settle, asks the assistant and records its answer.
// The user turn stays in the transcript even if the caller gives up while
// queued.
func (r *Registry) Submit(ctx context.Context, sessionID, query string, location *domain.Coordinates) (domain.ChatTurn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.ChatTurn{}, apperrors.InvalidInput("session id is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ChatTurn{}, apperrors.InvalidInput("query must not be empty")
	}

	s := r.open(sessionID)
	s.turns = append(s.turns, domain.ChatTurn{Role: domain.ChatRoleUser, Content: query, Timestamp: r.now()})
	s.pending++
	s.lastUsed = r.now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending--
		s.mu.Unlock()
	}()

	select {
	case s.flight <- struct{}{}:
	case <-ctx.Done():
		return domain.ChatTurn{}, ctx.Err()
	}
	defer func() { <-s.flight }()

	answer := r.asker.Ask(ctx, query, location)
	reply := domain.ChatTurn{
		Role:      domain.ChatRoleAssistant,
		Content:   answer.Text,
		Links:     answer.Links,
		Timestamp: r.now(),
	}
	s.append(reply)

	logger.WithContext(ctx, r.logger).InfoContext(ctx, "assistant query answered",
		slog.Int("links", len(answer.Links)),
	)
	return reply, nil
}

// EvictIdle drops sessions that are idle and unused for longer than maxIdle
// and returns how many were dropped.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.pending == 0 && s.lastUsed.Before(cutoff)
		if idle {
			s.evicted = true
		}
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle chat sessions", slog.Int("count", evicted))
	}
	return evicted
}
