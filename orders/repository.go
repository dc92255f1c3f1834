package orders

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"storefront/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository persists orders. FindByID only returns orders owned by userID.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, userID, id string) (*models.Order, error)
}

type itemDocument struct {
	ID       int                  `bson:"id"`
	Title    string               `bson:"title"`
	Quantity int                  `bson:"quantity"`
	Price    primitive.Decimal128 `bson:"price"`
}

type orderDocument struct {
	ID          string               `bson:"_id"`
	UserID      string               `bson:"userId"`
	CreatedAt   time.Time            `bson:"createdAt"`
	TotalAmount primitive.Decimal128 `bson:"totalAmount"`
	Items       []itemDocument       `bson:"items"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toDocument(o *models.Order) (orderDocument, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDocument{}, fmt.Errorf("total: %w", err)
	}
	doc := orderDocument{
		ID:          o.ID,
		UserID:      o.UserID,
		CreatedAt:   o.CreatedAt,
		TotalAmount: total,
		Items:       make([]itemDocument, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		price, err := toDecimal128(it.Price)
		if err != nil {
			return orderDocument{}, fmt.Errorf("item %d price: %w", it.ID, err)
		}
		doc.Items = append(doc.Items, itemDocument{ID: it.ID, Title: it.Title, Quantity: it.Quantity, Price: price})
	}
	return doc, nil
}

func (d orderDocument) order() (models.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s total: %w", d.ID, err)
	}
	o := models.Order{
		ID:          d.ID,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		TotalAmount: total,
		Items:       make([]models.OrderItem, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		price, err := fromDecimal128(it.Price)
		if err != nil {
			return models.Order{}, fmt.Errorf("order %s item %d: %w", d.ID, it.ID, err)
		}
		o.Items = append(o.Items, models.OrderItem{ID: it.ID, Title: it.Title, Quantity: it.Quantity, Price: price})
	}
	return o, nil
}

// MongoRepository stores orders in a MongoDB collection, prices as Decimal128.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the per-user listing index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *MongoRepository) Insert(ctx context.Context, o *models.Order) error {
	doc, err := toDocument(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, userID, id string) (*models.Order, error) {
	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	o, err := doc.order()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MemoryRepository keeps orders in insertion order.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Order) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Insert(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *o
	stored.Items = slices.Clone(o.Items)
	m.orders = append(m.orders, stored)
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, userID, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id && o.UserID == userID {
			o.Items = slices.Clone(o.Items)
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}
