package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
)

type stubSearch struct{}

func (stubSearch) Search(ctx context.Context, q model.SearchQuery) (*model.SearchPage, error) {
	return &model.SearchPage{Results: []model.Restaurant{}, Page: q.Page}, nil
}

func (stubSearch) Categories(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func newTestApp(t *testing.T, store docstore.Store) *App {
	t.Helper()
	a, err := New(Config{Store: store, Search: stubSearch{}, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	return a
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Search: stubSearch{}})
	assert.Error(t, err)

	_, err = New(Config{Store: docstore.NewMemoryStore()})
	assert.Error(t, err)
}

func TestStart_SignInLoadsEveryComponent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	a := newTestApp(t, store)
	require.NoError(t, a.Start(ctx))
	defer a.Close()

	identity, err := a.Identity.SignUp(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	// seed stored state, then sign in again to load it
	require.NoError(t, store.Set(ctx, model.UserPath(identity.ID), map[string]interface{}{
		"favorites": []map[string]interface{}{{"name": "Taco Bus"}},
		"darkMode":  false,
	}, docstore.Merge))
	_, err = store.Add(ctx, model.DonationsPath(identity.ID), map[string]interface{}{"amount": 12.5})
	require.NoError(t, err)

	a.Identity.SignOut(ctx)
	_, err = a.Identity.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	assert.True(t, a.Favorites.IsFavorite(model.Restaurant{Name: "Taco Bus"}))
	assert.False(t, a.Theme.DarkMode())
	assert.InDelta(t, 12.5, a.Donations.Total(), 0.001)
}

func TestSignOut_ClearsIdentityState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, docstore.NewMemoryStore())
	require.NoError(t, a.Start(ctx))
	defer a.Close()

	_, err := a.Identity.SignUp(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, err = a.Favorites.Toggle(ctx, model.Restaurant{Name: "Ichicoro"})
	require.NoError(t, err)
	a.Favorites.Wait()

	a.Identity.SignOut(ctx)

	assert.Empty(t, a.Favorites.Favorites())
	assert.Nil(t, a.Favorites.Identity())
	assert.Zero(t, a.Donations.Total())
}

func TestStart_Twice(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, docstore.NewMemoryStore())
	require.NoError(t, a.Start(context.Background()))
	defer a.Close()

	assert.ErrorIs(t, a.Start(context.Background()), ErrAlreadyStarted)
}

func TestClose_DeregistersSubscriptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, docstore.NewMemoryStore())
	require.NoError(t, a.Start(ctx))

	_, err := a.Identity.SignUp(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, err = a.Favorites.Toggle(ctx, model.Restaurant{Name: "Ichicoro"})
	require.NoError(t, err)

	require.NoError(t, a.Close())

	// no subscriber is left to clear favorites
	a.Identity.SignOut(ctx)
	assert.Len(t, a.Favorites.Favorites(), 1)
	assert.NoError(t, a.Favorites.LastSyncError())
}
