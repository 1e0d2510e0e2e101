package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/internal/repository"
	"github.com/suleman231/provisimarket-hub/internal/repository/memory"
	"github.com/suleman231/provisimarket-hub/internal/seed"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Save(context.Context, string, []byte) error   { return f.err }

func TestStateRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStateRepository(memory.NewSnapshotStore())

	stores := seed.Stores()
	require.NoError(t, repo.SaveStores(ctx, "sess", stores))
	gotStores, err := repo.LoadStores(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, stores, gotStores)

	user := seed.User()
	require.NoError(t, repo.SaveUser(ctx, "sess", user))
	gotUser, err := repo.LoadUser(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)

	cart := domain.Cart{}.Add(stores[0].Products[0], stores[0].Name)
	require.NoError(t, repo.SaveCart(ctx, "sess", cart))
	gotCart, err := repo.LoadCart(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, cart, gotCart)
}

func TestStateRepository_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	repo := repository.NewStateRepository(store)

	require.NoError(t, repo.SaveUser(ctx, "a", seed.User()))
	assert.Equal(t, 1, store.Len())

	_, err := repo.LoadStores(ctx, "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.LoadUser(ctx, "b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStateRepository_CartBlobIsLineList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	repo := repository.NewStateRepository(store)

	require.NoError(t, repo.SaveCart(ctx, "s", domain.Cart{}))
	raw, err := store.Load(ctx, repository.CartKeyPrefix+"s")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	require.NoError(t, store.Save(ctx, repository.CartKeyPrefix+"s", []byte(`null`)))
	cart, err := repo.LoadCart(ctx, "s")
	require.NoError(t, err)
	assert.NotNil(t, cart.Lines)
}

func TestStateRepository_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	repo := repository.NewStateRepository(store)

	require.NoError(t, store.Save(ctx, repository.StoresKeyPrefix+"s", []byte(`{not json`)))
	_, err := repo.LoadStores(ctx, "s")
	assert.ErrorIs(t, err, repository.ErrCorruptSnapshot)
}

func TestStateRepository_NullBlobs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	repo := repository.NewStateRepository(store)

	require.NoError(t, store.Save(ctx, repository.StoresKeyPrefix+"s", []byte(`null`)))
	require.NoError(t, store.Save(ctx, repository.UserKeyPrefix+"s", []byte(`null`)))

	_, err := repo.LoadStores(ctx, "s")
	assert.ErrorIs(t, err, repository.ErrCorruptSnapshot)

	_, err = repo.LoadUser(ctx, "s")
	assert.ErrorIs(t, err, repository.ErrCorruptSnapshot)

	require.NoError(t, store.Save(ctx, repository.UserKeyPrefix+"s", []byte(`{"name":"No Id"}`)))
	_, err = repo.LoadUser(ctx, "s")
	assert.ErrorIs(t, err, repository.ErrCorruptSnapshot)

	require.NoError(t, store.Save(ctx, repository.StoresKeyPrefix+"s", []byte(`[]`)))
	stores, err := repo.LoadStores(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestStateRepository_BackendErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	repo := repository.NewStateRepository(failingStore{err: boom})

	_, err := repo.LoadCart(ctx, "s")
	assert.ErrorIs(t, err, boom)

	err = repo.SaveCart(ctx, "s", domain.Cart{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), repository.CartKeyPrefix+"s")
}
