package session

import (
	"context"
	"errors"
	"testing"

	"storefront/auth"
	"storefront/models"
	"storefront/products"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	calls    []string
	loginErr error
	placeErr error
	placed   []models.OrderItem
}

func (f *fakeAPI) Register(context.Context, string, string, string) error {
	f.calls = append(f.calls, "register")
	return nil
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*LoginResponse, error) {
	f.calls = append(f.calls, "login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &LoginResponse{User: models.Identity{ID: "1", Username: "alice", Email: email}, Token: "tok"}, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, email, username string) (models.Identity, error) {
	f.calls = append(f.calls, "profile")
	return models.Identity{ID: "1", Username: username, Email: email}, nil
}

func (f *fakeAPI) Logout(context.Context, string) error {
	f.calls = append(f.calls, "logout")
	return errors.New("server gone")
}

func (f *fakeAPI) Orders(context.Context, string) ([]models.Order, error) {
	f.calls = append(f.calls, "orders")
	return []models.Order{}, nil
}

func (f *fakeAPI) PlaceOrder(_ context.Context, _ string, items []models.OrderItem) (*models.Order, error) {
	f.calls = append(f.calls, "place")
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placed = items
	return &models.Order{ID: "o-1", Items: items}, nil
}

func lamp() models.Product {
	return models.Product{ID: 7, Title: "Lamp", Price: decimal.NewFromInt(10)}
}

func TestLoginStateMachine(t *testing.T) {
	api := &fakeAPI{loginErr: &APIError{Status: 400, Message: "Invalid credentials"}}
	s := New(api, nil)
	ctx := context.Background()
	assert.Equal(t, Anonymous, s.State())

	err := s.Login(ctx, "a@x.com", "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, Anonymous, s.State())
	_, ok := s.User()
	assert.False(t, ok)

	api.loginErr = nil
	require.NoError(t, s.Login(ctx, "a@x.com", "pw"))
	assert.Equal(t, Authenticated, s.State())
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "tok", s.Token())

	require.NoError(t, s.UpdateProfile(ctx, "alicia"))
	user, _ = s.User()
	assert.Equal(t, "alicia", user.Username)

	assert.Error(t, s.Logout(ctx), "server failure is reported")
	assert.Equal(t, Anonymous, s.State(), "but the identity is gone anyway")
	assert.Empty(t, s.Token())

	assert.NoError(t, s.Logout(ctx))
	assert.Equal(t, []string{"login", "login", "profile", "logout"}, api.calls)
}

func TestRegisterStaysAnonymous(t *testing.T) {
	s := New(&fakeAPI{}, nil)
	require.NoError(t, s.Register(context.Background(), "alice", "a@x.com", "pw"))
	assert.Equal(t, Anonymous, s.State())
}

func TestCheckout(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, nil)
	ctx := context.Background()

	_, err := s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, "Your cart is empty. Add items to proceed to checkout.", Notice(err))
	assert.Empty(t, api.calls, "empty cart makes no request")

	s.Cart().Add(lamp())
	s.Cart().Add(lamp())
	_, err = s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, api.calls)

	require.NoError(t, s.Login(ctx, "a@x.com", "pw"))
	api.placeErr = &APIError{Status: 500, Message: "Failed to place order"}
	_, err = s.Checkout(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, s.Cart().Len(), "failed checkout keeps the cart")

	api.placeErr = nil
	order, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
	assert.True(t, s.Cart().IsEmpty())
	require.Len(t, api.placed, 1)
	assert.Equal(t, 2, api.placed[0].Quantity)
}

func TestOrdersNeedsLogin(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, nil)

	_, err := s.Orders(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "Please log in to continue.", Notice(err))
	assert.Empty(t, api.calls)
}

func TestNavigate(t *testing.T) {
	s := New(&fakeAPI{}, nil)

	tests := []struct {
		path, anonymous, authenticated string
	}{
		{"/", "/login", "/"},
		{"/cart", "/login", "/cart"},
		{"/checkout", "/login", "/checkout"},
		{"/profile", "/login", "/profile"},
		{"/product/12", "/login", "/product/12"},
		{"/login", "/login", "/login"},
		{"/signup", "/signup", "/signup"},
		{"/order", "/order", "/order"},
		{"/nowhere", "/login", "/"},
		{"", "/login", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.anonymous, s.Navigate(tt.path), "anonymous %q", tt.path)
	}
	require.NoError(t, s.Login(context.Background(), "a@x.com", "pw"))
	for _, tt := range tests {
		assert.Equal(t, tt.authenticated, s.Navigate(tt.path), "authenticated %q", tt.path)
	}
}

func TestBrowseState(t *testing.T) {
	store, err := products.LoadEmbedded()
	require.NoError(t, err)
	s := New(&fakeAPI{}, store)

	assert.Len(t, s.Visible(), 19, "default ceiling hides the 3100 listing")

	s.ToggleCategory("laptops")
	s.SetSort(products.SortPriceAsc)
	visible := s.Visible()
	require.NotEmpty(t, visible)
	for i, p := range visible {
		assert.Equal(t, "laptops", p.Category)
		if i > 0 {
			assert.True(t, visible[i-1].Price.LessThanOrEqual(p.Price))
		}
	}

	s.ToggleCategory("laptops")
	s.SetQuery("IPHONE")
	for _, p := range s.Visible() {
		assert.Contains(t, p.Title, "iPhone")
	}

	s.SetRating(9)
	assert.Equal(t, 4.0, s.Filters().Rating)

	s.SetPriceRange(decimal.NewFromInt(100), decimal.NewFromInt(10))
	assert.Equal(t, "10", s.Filters().PriceRange.Min.String())

	s.ResetFilters()
	assert.Equal(t, products.DefaultFilters(), s.Filters())
	assert.Equal(t, products.SortRelevance, s.SortMode())
	assert.Empty(t, s.Query())

	assert.Empty(t, New(&fakeAPI{}, nil).Visible())
}

func TestNotice(t *testing.T) {
	assert.Empty(t, Notice(nil))
	assert.Equal(t, "Registration failed: Email already exists.", Notice(&APIError{Status: 400, Message: "Email already exists"}))
	assert.Equal(t, "Login failed. Please check your credentials and try again.", Notice(&APIError{Status: 400, Message: "User not found"}))
	assert.Equal(t, "Failed to fetch orders", Notice(&APIError{Status: 500, Message: "Failed to fetch orders"}))
	assert.Equal(t, "Something went wrong. Please try again.", Notice(errors.New("dial tcp: refused")))
}
