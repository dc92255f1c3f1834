package session

import (
	"context"

	"storefront/cart"
	"storefront/models"
	"storefront/orders"
	"storefront/products"

	"github.com/shopspring/decimal"
)

// State of the client identity.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session is one shopper's client state: identity, cart and browse filters. It is owned by
// a single goroutine and holds no locks.
type Session struct {
	api     AccountAPI
	catalog *products.Store
	gate    *Gate

	state State
	user  models.Identity
	token string

	cart *cart.Ledger

	filters products.FilterState
	sort    products.SortMode
	query   string
}

// New starts an anonymous session with an empty cart and default filters.
func New(api AccountAPI, catalog *products.Store) *Session {
	return &Session{
		api:     api,
		catalog: catalog,
		gate:    NewGate(),
		cart:    cart.NewLedger(),
		filters: products.DefaultFilters(),
		sort:    products.SortRelevance,
	}
}

func (s *Session) State() State { return s.state }

// User returns the logged-in identity.
func (s *Session) User() (models.Identity, bool) {
	return s.user, s.state == Authenticated
}

func (s *Session) Token() string { return s.token }

func (s *Session) Cart() *cart.Ledger { return s.cart }

// Register creates an account. The session stays anonymous; the shopper logs in next.
func (s *Session) Register(ctx context.Context, username, email, password string) error {
	return s.api.Register(ctx, username, email, password)
}

// Login moves the session through Authenticating to Authenticated, or back to Anonymous
// on failure.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.state = Authenticating
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.clearIdentity()
		return err
	}
	s.state = Authenticated
	s.user = res.User
	s.token = res.Token
	return nil
}

// Logout forgets the identity even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	if s.state != Authenticated {
		return nil
	}
	token := s.token
	s.clearIdentity()
	return s.api.Logout(ctx, token)
}

func (s *Session) clearIdentity() {
	s.state = Anonymous
	s.user = models.Identity{}
	s.token = ""
}

// UpdateProfile renames the logged-in account.
func (s *Session) UpdateProfile(ctx context.Context, username string) error {
	if s.state != Authenticated {
		return ErrNotAuthenticated
	}
	id, err := s.api.UpdateProfile(ctx, s.user.Email, username)
	if err != nil {
		return err
	}
	s.user.Username = id.Username
	return nil
}

// Orders fetches the logged-in shopper's order history.
func (s *Session) Orders(ctx context.Context) ([]models.Order, error) {
	if s.state != Authenticated {
		return nil, ErrNotAuthenticated
	}
	return s.api.Orders(ctx, s.token)
}

// Checkout places the cart as an order and clears it. An empty cart fails before any
// request is made.
func (s *Session) Checkout(ctx context.Context) (*models.Order, error) {
	if err := s.cart.CheckoutReady(); err != nil {
		return nil, err
	}
	if s.state != Authenticated {
		return nil, ErrNotAuthenticated
	}
	order, err := s.api.PlaceOrder(ctx, s.token, orders.ItemsFromCart(s.cart.Lines()))
	if err != nil {
		return nil, err
	}
	s.cart.Clear()
	return order, nil
}

// Navigate returns the view shown for path given the current identity.
func (s *Session) Navigate(path string) string {
	return s.gate.Resolve(path, s.state == Authenticated)
}

// Browse state

func (s *Session) Filters() products.FilterState { return s.filters }

func (s *Session) SortMode() products.SortMode { return s.sort }

func (s *Session) Query() string { return s.query }

func (s *Session) SetQuery(q string) { s.query = q }

func (s *Session) SetSort(m products.SortMode) { s.sort = m }

func (s *Session) ToggleCategory(c string) { s.filters = s.filters.ToggleCategory(c) }

func (s *Session) ToggleBrand(b string) { s.filters = s.filters.ToggleBrand(b) }

func (s *Session) SetRating(r float64) { s.filters = s.filters.WithRating(r) }

func (s *Session) SetPriceRange(lo, hi decimal.Decimal) {
	s.filters = s.filters.WithPriceRange(lo, hi)
}

func (s *Session) ResetFilters() {
	s.filters = products.DefaultFilters()
	s.sort = products.SortRelevance
	s.query = ""
}

// Visible recomputes the product list for the current browse state.
func (s *Session) Visible() []models.Product {
	if s.catalog == nil {
		return []models.Product{}
	}
	return s.catalog.Search(s.filters, s.sort, s.query)
}
