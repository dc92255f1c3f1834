package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is the persisted user record. Password holds the bcrypt digest and is never
// serialised to JSON.
type Account struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Identity returns the public projection of the account.
func (a Account) Identity() Identity {
	return Identity{
		ID:       a.ID.Hex(),
		Username: a.Username,
		Email:    a.Email,
	}
}

// Identity is the public profile returned after login, registration and profile updates.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
