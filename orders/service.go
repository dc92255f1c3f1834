package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoItems        = errors.New("order has no items")
	ErrInvalidItem    = errors.New("order item needs quantity of at least 1 and a non-negative price")
	ErrUnknownProduct = errors.New("unknown product")
)

// Catalog resolves product ids to their current listing.
type Catalog interface {
	Get(id int) (models.Product, bool)
}

// Service reads and places orders for an identity.
type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

// NewService wires the repository. With a non-nil catalog, titles and prices of placed
// items are taken from the catalog rather than the request.
func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// List returns every order owned by id, oldest first.
func (s *Service) List(ctx context.Context, id models.Identity) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Place validates and stores a new order for id.
func (s *Service) Place(ctx context.Context, id models.Identity, items []models.OrderItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	priced := make([]models.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		if s.catalog != nil {
			p, ok := s.catalog.Get(it.ID)
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, it.ID)
			}
			it.Title, it.Price = p.Title, p.Price
		}
		if it.Quantity < 1 || it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidItem, it.ID)
		}
		total = total.Add(it.Price.Mul(decimalFromInt(it.Quantity)))
		priced = append(priced, it)
	}

	o := &models.Order{
		ID:          uuid.NewString(),
		UserID:      id.ID,
		CreatedAt:   s.now().UTC(),
		TotalAmount: total,
		Items:       priced,
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns one order owned by id.
func (s *Service) Get(ctx context.Context, id models.Identity, orderID string) (*models.Order, error) {
	return s.repo.FindByID(ctx, id.ID, orderID)
}

// ItemsFromCart converts ledger lines to order items.
func ItemsFromCart(lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{ID: l.ProductID, Title: l.Title, Quantity: l.Quantity, Price: l.Price})
	}
	return items
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
