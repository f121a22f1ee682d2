package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OTPPurpose scopes a one-time code to the operation it gates.
type OTPPurpose string

const (
	OTPPurposeEmailVerification OTPPurpose = "email_verification"
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
)

// OTP represents a one-time code challenge sent to an email address.
// Only the hash of the code is stored.
type OTP struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	CodeHash  string        `bson:"code_hash"`
	Purpose   OTPPurpose    `bson:"purpose"`
	Verified  bool          `bson:"verified"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
