package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the role of a user in the shop.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
)

// DefaultTimezone is assigned to users that did not pick one.
const DefaultTimezone = "Africa/Lagos"

// User represents a user in the authentication system.
// PasswordHash is only populated when explicitly requested from the repository.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"           json:"id"`
	Email        string        `bson:"email"                   json:"email"`
	FirstName    string        `bson:"first_name"              json:"firstName"`
	LastName     string        `bson:"last_name"               json:"lastName"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	Role         Role          `bson:"role"                    json:"role"`
	PhoneNumber  string        `bson:"phone_number,omitempty"  json:"phoneNumber,omitempty"`
	Verified     bool          `bson:"verified"                json:"isVerified"`
	Timezone     string        `bson:"timezone"                json:"timezone"`
	CreatedAt    time.Time     `bson:"created_at"              json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at"              json:"updatedAt"`
}
