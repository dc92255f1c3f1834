package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists accounts. Lookups return ErrUserNotFound when nothing matches and
// Create reports unique-index conflicts as ErrDuplicateEmail or ErrDuplicateUsername.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	Create(ctx context.Context, acc *models.Account) error
	UpdateUsername(ctx context.Context, email, username string) (*models.Account, error)
}

// MongoRepository stores accounts in a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

const (
	emailIndex    = "email_1"
	usernameIndex = "username_1"
)

// EnsureIndexes creates the unique email and username indexes.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var acc models.Account
	err := r.coll.FindOne(ctx, filter).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &acc, nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoRepository) Create(ctx context.Context, acc *models.Account) error {
	if acc.ID.IsZero() {
		acc.ID = primitive.NewObjectID()
	}
	now := r.now().UTC()
	acc.CreatedAt, acc.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, acc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateFrom(err)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *MongoRepository) UpdateUsername(ctx context.Context, email, username string) (*models.Account, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"username": username, "updatedAt": r.now().UTC()}}

	var acc models.Account
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&acc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicateUsername
	case err != nil:
		return nil, fmt.Errorf("update username: %w", err)
	}
	return &acc, nil
}

// duplicateFrom picks the conflicting index out of an E11000 message. The dup key value
// may contain either field name, so only the index name is matched.
func duplicateFrom(err error) error {
	if strings.Contains(err.Error(), "index: "+usernameIndex) {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}
