package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

// Key prefixes of the three per-session blobs.
const (
	StoresKeyPrefix = "prov_stores:"
	UserKeyPrefix   = "prov_user:"
	CartKeyPrefix   = "prov_cart:"
)

// ErrCorruptSnapshot is returned when a stored blob cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// SnapshotStore is a flat key/value store of opaque blobs. Load returns an
// apperrors NotFound error for a missing key. Writes are last-write-wins.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// SessionRepository persists the catalog, current user and cart of a
// session independently of one another.
type SessionRepository interface {
	LoadStores(ctx context.Context, sessionID string) ([]domain.Store, error)
	SaveStores(ctx context.Context, sessionID string, stores []domain.Store) error

	LoadUser(ctx context.Context, sessionID string) (domain.User, error)
	SaveUser(ctx context.Context, sessionID string, user domain.User) error

	LoadCart(ctx context.Context, sessionID string) (domain.Cart, error)
	SaveCart(ctx context.Context, sessionID string, cart domain.Cart) error
}

// StateRepository implements SessionRepository by JSON-encoding each
// aggregate into its own SnapshotStore key.
type StateRepository struct {
	store SnapshotStore
}

// NewStateRepository creates a StateRepository over store.
func NewStateRepository(store SnapshotStore) *StateRepository {
	return &StateRepository{store: store}
}

// LoadStores reads the session catalog. A null blob is corrupt.
func (r *StateRepository) LoadStores(ctx context.Context, sessionID string) ([]domain.Store, error) {
	var stores []domain.Store
	if err := r.load(ctx, StoresKeyPrefix+sessionID, &stores); err != nil {
		return nil, err
	}
	if stores == nil {
		return nil, fmt.Errorf("%w: %s: empty catalog", ErrCorruptSnapshot, StoresKeyPrefix+sessionID)
	}
	return stores, nil
}

// SaveStores writes the session catalog.
func (r *StateRepository) SaveStores(ctx context.Context, sessionID string, stores []domain.Store) error {
	return r.save(ctx, StoresKeyPrefix+sessionID, stores)
}

// LoadUser reads the session user. A user without an id is corrupt.
func (r *StateRepository) LoadUser(ctx context.Context, sessionID string) (domain.User, error) {
	var user domain.User
	if err := r.load(ctx, UserKeyPrefix+sessionID, &user); err != nil {
		return domain.User{}, err
	}
	if user.ID == "" {
		return domain.User{}, fmt.Errorf("%w: %s: user has no id", ErrCorruptSnapshot, UserKeyPrefix+sessionID)
	}
	return user, nil
}

// SaveUser writes the session user.
func (r *StateRepository) SaveUser(ctx context.Context, sessionID string, user domain.User) error {
	return r.save(ctx, UserKeyPrefix+sessionID, user)
}

// LoadCart reads the session cart. The blob is the bare list of lines.
func (r *StateRepository) LoadCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	var lines []domain.CartLine
	if err := r.load(ctx, CartKeyPrefix+sessionID, &lines); err != nil {
		return domain.Cart{}, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return domain.Cart{Lines: lines}, nil
}

// SaveCart writes the full session cart.
func (r *StateRepository) SaveCart(ctx context.Context, sessionID string, cart domain.Cart) error {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return r.save(ctx, CartKeyPrefix+sessionID, lines)
}

func (r *StateRepository) load(ctx context.Context, key string, dst any) error {
	data, err := r.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, key, err)
	}
	return nil
}

func (r *StateRepository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(err, "marshal "+key)
	}
	if err := r.store.Save(ctx, key, data); err != nil {
		return apperrors.Wrap(err, "save "+key)
	}
	return nil
}
