package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/auth"
	"storefront/orders"
	"storefront/products"
	"storefront/ratelim"
	"storefront/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T) (*httptest.Server, *products.Store) {
	t.Helper()
	store, err := products.LoadEmbedded()
	require.NoError(t, err)

	svc := auth.NewService(auth.NewMemoryRepository(), auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewTokenIssuer([]byte("e2e-secret"), time.Hour), auth.NewMemoryRevocations(), nil)
	router := routes.RoutesWrapper(routes.Handlers{
		Auth:     auth.NewHandler(svc),
		Verifier: svc,
		Orders:   orders.NewHandler(orders.NewService(orders.NewMemoryRepository(), store), []byte("e2e-secret")),
		Products: products.NewHandler(store),
	}, ratelim.NewRateLimiter(100))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestRegisterLoginFlow(t *testing.T) {
	srv, store := newServer(t)
	api := NewHTTPClient(srv.URL, srv.Client())
	ctx := context.Background()

	s := New(api, store)
	require.NoError(t, s.Register(ctx, "alice", "a@x.com", "pw"))

	err := New(api, store).Register(ctx, "bob", "a@x.com", "pw")
	require.ErrorIs(t, err, auth.ErrDuplicateEmail)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	err = s.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, Anonymous, s.State())

	require.NoError(t, s.Login(ctx, "a@x.com", "pw"))
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "/cart", s.Navigate("/cart"))
}

func TestCheckoutFlow(t *testing.T) {
	srv, store := newServer(t)
	api := NewHTTPClient(srv.URL, srv.Client())
	ctx := context.Background()

	s := New(api, store)
	require.NoError(t, s.Register(ctx, "alice", "a@x.com", "pw"))
	require.NoError(t, s.Login(ctx, "a@x.com", "pw"))

	history, err := s.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	phone, _ := store.Get(1)
	s.Cart().Add(phone)
	s.Cart().Add(phone)
	expected := s.Cart().Subtotal()

	order, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(expected))
	assert.True(t, s.Cart().IsEmpty())

	history, err = s.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
	assert.Equal(t, 2, history[0].Items[0].Quantity)

	require.NoError(t, s.UpdateProfile(ctx, "alicia"))

	token := s.Token()
	require.NoError(t, s.Logout(ctx))
	_, err = api.Orders(ctx, token)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status, "revoked token is refused")
}
