package auth

import (
	"context"
	"testing"

	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	oid := primitive.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "username", Value: "alice"},
		{Key: "email", Value: "a@x.com"},
		{Key: "password", Value: "$2a$10$digest"},
	}

	mt.Run("find by email", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc))

		acc, err := NewMongoRepository(mt.Coll).FindByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, oid, acc.ID)
		assert.Equal(mt, "alice", acc.Username)
		assert.Equal(mt, "$2a$10$digest", acc.Password)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoRepository(mt.Coll).FindByUsername(ctx, "ghost")
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		acc := &models.Account{Username: "alice", Email: "a@x.com", Password: "d"}
		require.NoError(mt, NewMongoRepository(mt.Coll).Create(ctx, acc))
		assert.False(mt, acc.ID.IsZero())
		assert.False(mt, acc.CreatedAt.IsZero())
		assert.Equal(mt, acc.CreatedAt, acc.UpdatedAt)
	})

	mt.Run("create duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: storefront.users index: username_1 dup key",
		}))

		err := NewMongoRepository(mt.Coll).Create(ctx, &models.Account{Username: "alice", Email: "z@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicateUsername)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: storefront.users index: email_1 dup key",
		}))

		err := NewMongoRepository(mt.Coll).Create(ctx, &models.Account{Username: "bob", Email: "a@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicateEmail)
	})

	mt.Run("create duplicate email holding a username-like value", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: storefront.users index: email_1 dup key: { email: "username@x.com" }`,
		}))

		err := NewMongoRepository(mt.Coll).Create(ctx, &models.Account{Username: "carol", Email: "username@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicateEmail)
	})

	mt.Run("update username", func(mt *mtest.T) {
		updated := bson.D{{Key: "_id", Value: oid}, {Key: "username", Value: "alicia"}, {Key: "email", Value: "a@x.com"}}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		acc, err := NewMongoRepository(mt.Coll).UpdateUsername(ctx, "a@x.com", "alicia")
		require.NoError(mt, err)
		assert.Equal(mt, "alicia", acc.Username)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewMongoRepository(mt.Coll).UpdateUsername(ctx, "ghost@x.com", "ghost")
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("update conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error index: username_1",
		}))

		_, err := NewMongoRepository(mt.Coll).UpdateUsername(ctx, "a@x.com", "bob")
		assert.ErrorIs(mt, err, ErrDuplicateUsername)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, NewMongoRepository(mt.Coll).EnsureIndexes(ctx))
	})
}
