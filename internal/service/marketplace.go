package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/internal/event"
	"github.com/suleman231/provisimarket-hub/internal/repository"
	"github.com/suleman231/provisimarket-hub/internal/seed"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

// session is the in-memory application state of one session. All fields
// are guarded by mu; aggregates are replaced, never mutated in place.
type session struct {
	mu       sync.Mutex
	loaded   bool
	evicted  bool
	lastUsed time.Time

	stores  []domain.Store
	user    domain.User
	cart    domain.Cart
	pending *domain.PendingUpload
}

// Marketplace owns the per-session catalog, user and cart and applies every
// command to them. Commands of one session run one at a time; sessions are
// independent.
type Marketplace struct {
	repo      repository.SessionRepository
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewMarketplace creates the marketplace controller.
func NewMarketplace(repo repository.SessionRepository, publisher event.Publisher, logger *slog.Logger) *Marketplace {
	if publisher == nil {
		publisher = event.Noop{}
	}
	return &Marketplace{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (m *Marketplace) session(sessionID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{}
		m.sessions[sessionID] = s
	}
	return s
}

// withSession runs fn with the session locked and its state loaded.
func (m *Marketplace) withSession(ctx context.Context, sessionID string, fn func(*session) error) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperrors.InvalidInput("session id is required")
	}

	var s *session
	for {
		s = m.session(sessionID)
		s.mu.Lock()
		if !s.evicted {
			break
		}
		s.mu.Unlock()
	}
	defer s.mu.Unlock()

	if !s.loaded {
		if err := m.load(ctx, sessionID, s); err != nil {
			return err
		}
	}
	s.lastUsed = m.now()
	return fn(s)
}

// load reads each aggregate independently. Any aggregate that cannot be
// read falls back to its seed value; the others are unaffected.
func (m *Marketplace) load(ctx context.Context, sessionID string, s *session) error {
	stores, err := m.repo.LoadStores(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("load catalog: %w", ctx.Err())
		}
		m.logFallback(ctx, sessionID, "catalog", err)
		stores = seed.Stores()
	}

	user, err := m.repo.LoadUser(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("load user: %w", ctx.Err())
		}
		m.logFallback(ctx, sessionID, "user", err)
		user = seed.User()
	}

	cart, err := m.repo.LoadCart(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("load cart: %w", ctx.Err())
		}
		m.logFallback(ctx, sessionID, "cart", err)
		cart = seed.Cart()
	}

	s.stores, s.user, s.cart = stores, user, cart
	s.loaded = true
	return nil
}

func (m *Marketplace) logFallback(ctx context.Context, sessionID, aggregate string, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		m.logger.DebugContext(ctx, "no saved state, using seed",
			slog.String("session_id", sessionID),
			slog.String("aggregate", aggregate),
		)
		return
	}
	m.logger.WarnContext(ctx, "saved state unreadable, using seed",
		slog.String("session_id", sessionID),
		slog.String("aggregate", aggregate),
		slog.String("error", err.Error()),
	)
}

// commitStores persists stores and only then makes them current.
func (m *Marketplace) commitStores(ctx context.Context, sessionID string, s *session, stores []domain.Store) error {
	if err := m.repo.SaveStores(ctx, sessionID, stores); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist catalog",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persist catalog: %w", err)
	}
	s.stores = stores
	return nil
}

func (m *Marketplace) commitUser(ctx context.Context, sessionID string, s *session, user domain.User) error {
	if err := m.repo.SaveUser(ctx, sessionID, user); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist user",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persist user: %w", err)
	}
	s.user = user
	return nil
}

func (m *Marketplace) commitCart(ctx context.Context, sessionID string, s *session, cart domain.Cart) error {
	if err := m.repo.SaveCart(ctx, sessionID, cart); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persist cart: %w", err)
	}
	s.cart = cart
	return nil
}

// merchantStore returns the store the current user manages.
func merchantStore(s *session) (*domain.Store, error) {
	store := domain.MerchantStore(s.stores, s.user)
	if store == nil {
		return nil, apperrors.NotFound("store", "merchant")
	}
	return store, nil
}

func (m *Marketplace) publishCatalogUpdated(ctx context.Context, sessionID string, change event.CatalogChange) {
	if err := m.publisher.PublishCatalogUpdated(ctx, sessionID, change); err != nil {
		m.logger.WarnContext(ctx, "failed to publish catalog.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (m *Marketplace) publishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) {
	if err := m.publisher.PublishCartUpdated(ctx, sessionID, cart); err != nil {
		m.logger.WarnContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// EvictIdle drops the in-memory state of sessions unused for longer than
// maxIdle. Their persisted state is reloaded on next use. It returns the
// number of sessions evicted.
func (m *Marketplace) EvictIdle(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if s.lastUsed.Before(cutoff) {
			s.evicted = true
			delete(m.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}
