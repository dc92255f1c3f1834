package products

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"storefront/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:embed seed/products.json
var seedCatalog []byte

// Store is the read-only catalog. Facets are derived once at load time.
type Store struct {
	products   []models.Product
	byID       map[int]int
	categories []string
	brands     []string
}

// NewStore builds a Store over the given products, rejecting duplicate ids and negative
// prices.
func NewStore(products []models.Product) (*Store, error) {
	s := &Store{
		products: make([]models.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	copy(s.products, products)

	for i, p := range s.products {
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %d has negative price", p.ID)
		}
		s.byID[p.ID] = i
	}
	s.categories = Categories(s.products)
	s.brands = Brands(s.products)
	return s, nil
}

// LoadEmbedded returns the catalog bundled with the binary.
func LoadEmbedded() (*Store, error) {
	return decodeCatalog(seedCatalog)
}

// LoadFile reads a JSON array of products from path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (*Store, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewStore(products)
}

// productDocument is the MongoDB shape of a product; prices are stored as doubles.
type productDocument struct {
	ID          int     `bson:"id"`
	Title       string  `bson:"title"`
	Category    string  `bson:"category"`
	Brand       string  `bson:"brand"`
	Price       float64 `bson:"price"`
	Rating      float64 `bson:"rating"`
	Thumbnail   string  `bson:"thumbnail"`
	Description string  `bson:"description"`
}

// LoadCollection reads the whole products collection ordered by id.
func LoadCollection(ctx context.Context, coll *mongo.Collection) (*Store, error) {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, models.Product{
			ID:          d.ID,
			Title:       d.Title,
			Category:    d.Category,
			Brand:       d.Brand,
			Price:       decimal.NewFromFloat(d.Price),
			Rating:      d.Rating,
			Thumbnail:   d.Thumbnail,
			Description: d.Description,
		})
	}
	return NewStore(products)
}

// Products returns the catalog in load order. The slice is a copy.
func (s *Store) Products() []models.Product {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len is the catalog size.
func (s *Store) Len() int { return len(s.products) }

// Get looks a product up by id.
func (s *Store) Get(id int) (models.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}

// Categories returns the distinct categories of the full catalog.
func (s *Store) Categories() []string { return slices.Clone(s.categories) }

// Brands returns the distinct brands of the full catalog.
func (s *Store) Brands() []string { return slices.Clone(s.brands) }

// PriceBounds returns the cheapest and the most expensive price. Both are zero for an
// empty catalog.
func (s *Store) PriceBounds() (lo, hi decimal.Decimal) {
	for i, p := range s.products {
		if i == 0 || p.Price.LessThan(lo) {
			lo = p.Price
		}
		if i == 0 || p.Price.GreaterThan(hi) {
			hi = p.Price
		}
	}
	return lo, hi
}

// Search applies the filter engine to the full catalog.
func (s *Store) Search(f FilterState, mode SortMode, query string) []models.Product {
	return Apply(s.products, f, mode, query)
}
