package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RefreshToken represents one issued refresh session. Records are never
// extended; rotation revokes the presented record and creates a new one.
type RefreshToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	JTI       string        `bson:"jti"`
	TokenHash string        `bson:"token_hash"`
	UserAgent *string       `bson:"user_agent,omitempty"`
	IPAddress *string       `bson:"ip_address,omitempty"`
	Revoked   bool          `bson:"revoked"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
