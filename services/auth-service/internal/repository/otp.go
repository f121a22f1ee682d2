package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
)

// OTPRepository defines the interface for one-time code operations.
// At most one record exists per (email, purpose).
type OTPRepository interface {
	// UpsertOTP stores otp, atomically replacing any record for the same email and purpose.
	UpsertOTP(ctx context.Context, otp *model.OTP) (*model.OTP, error)

	// FindOTP returns the record for email and purpose with the given verified state.
	FindOTP(ctx context.Context, email string, purpose model.OTPPurpose, verified bool) (*model.OTP, error)

	// MarkOTPVerified flips otp to verified. A replace keeps the document _id, so
	// the update also matches the code hash: it returns ErrNotFound when otp was
	// superseded, deleted or already verified.
	MarkOTPVerified(ctx context.Context, otp *model.OTP) error

	// DeleteOTP removes otp unless it has been superseded by a newer code.
	// Deleting a missing record is not an error.
	DeleteOTP(ctx context.Context, otp *model.OTP) error

	// DeleteOTPsByEmail removes every record for email and returns how many were removed.
	DeleteOTPsByEmail(ctx context.Context, email string) (int64, error)
}

const otpCollection = "otps"

type otpMongoRepository struct {
	db *mongo.Database
}

// NewOTPMongoRepository creates a new MongoDB repository for one-time codes.
func NewOTPMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) OTPRepository {
	collection := db.Collection(otpCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "purpose", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create otp indexes")
	}

	return &otpMongoRepository{
		db: db,
	}
}

func (r *otpMongoRepository) UpsertOTP(ctx context.Context, otp *model.OTP) (*model.OTP, error) {
	now := time.Now()
	otp.ID = bson.ObjectID{}
	otp.Verified = false
	otp.CreatedAt = now
	otp.UpdatedAt = now

	filter := bson.M{
		"email":   otp.Email,
		"purpose": otp.Purpose,
	}

	result := r.db.Collection(otpCollection).FindOneAndReplace(
		ctx,
		filter,
		otp,
		options.FindOneAndReplace().
			SetUpsert(true).
			SetReturnDocument(options.After),
	)

	var stored model.OTP
	if err := result.Decode(&stored); err != nil {
		return nil, translateError(err)
	}

	return &stored, nil
}

func (r *otpMongoRepository) FindOTP(
	ctx context.Context,
	email string,
	purpose model.OTPPurpose,
	verified bool,
) (*model.OTP, error) {
	filter := bson.M{
		"email":    email,
		"purpose":  purpose,
		"verified": verified,
	}

	var otp model.OTP
	if err := r.db.Collection(otpCollection).FindOne(ctx, filter).Decode(&otp); err != nil {
		return nil, translateError(err)
	}

	return &otp, nil
}

func (r *otpMongoRepository) MarkOTPVerified(ctx context.Context, otp *model.OTP) error {
	filter := bson.M{
		"_id":       otp.ID,
		"code_hash": otp.CodeHash,
		"verified":  false,
	}
	update := bson.M{
		"$set": bson.M{
			"verified":   true,
			"updated_at": time.Now(),
		},
	}

	result, err := r.db.Collection(otpCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *otpMongoRepository) DeleteOTP(ctx context.Context, otp *model.OTP) error {
	filter := bson.M{
		"_id":       otp.ID,
		"code_hash": otp.CodeHash,
	}

	_, err := r.db.Collection(otpCollection).DeleteOne(ctx, filter)
	return err
}

func (r *otpMongoRepository) DeleteOTPsByEmail(ctx context.Context, email string) (int64, error) {
	result, err := r.db.Collection(otpCollection).DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
