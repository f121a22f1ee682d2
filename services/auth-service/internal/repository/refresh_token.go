package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
)

// RefreshTokenRepository defines the interface for refresh-token record operations.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error)

	// FindActiveByJTI returns the unrevoked record with the given token id.
	FindActiveByJTI(ctx context.Context, jti string) (*model.RefreshToken, error)

	// FindActiveByHash returns the unrevoked record with the given token hash.
	FindActiveByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)

	// RevokeByJTI revokes the record only if it is still active. It reports
	// whether this call performed the revocation.
	RevokeByJTI(ctx context.Context, jti string) (bool, error)

	// RevokeAllForUser revokes every active record of the user and returns how many were revoked.
	RevokeAllForUser(ctx context.Context, userID bson.ObjectID) (int64, error)
}

const refreshTokenCollection = "refresh_tokens"

type refreshTokenMongoRepository struct {
	db *mongo.Database
}

// NewRefreshTokenMongoRepository creates the refresh token repository and its indexes.
func NewRefreshTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) RefreshTokenRepository {
	collection := db.Collection(refreshTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "jti", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "revoked", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "token_hash", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create refresh token indexes")
	}

	return &refreshTokenMongoRepository{db: db}
}

func (r *refreshTokenMongoRepository) CreateRefreshToken(
	ctx context.Context,
	token *model.RefreshToken,
) (*model.RefreshToken, error) {
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	token.Revoked = false

	result, err := r.db.Collection(refreshTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, translateError(err)
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return token, nil
}

func (r *refreshTokenMongoRepository) FindActiveByJTI(ctx context.Context, jti string) (*model.RefreshToken, error) {
	return r.findOne(ctx, bson.M{"jti": jti, "revoked": false})
}

func (r *refreshTokenMongoRepository) FindActiveByHash(
	ctx context.Context,
	tokenHash string,
) (*model.RefreshToken, error) {
	return r.findOne(ctx, bson.M{"token_hash": tokenHash, "revoked": false})
}

func (r *refreshTokenMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.RefreshToken, error) {
	var token model.RefreshToken
	if err := r.db.Collection(refreshTokenCollection).FindOne(ctx, filter).Decode(&token); err != nil {
		return nil, translateError(err)
	}

	return &token, nil
}

func (r *refreshTokenMongoRepository) RevokeByJTI(ctx context.Context, jti string) (bool, error) {
	filter := bson.M{
		"jti":     jti,
		"revoked": false,
	}
	update := bson.M{
		"$set": bson.M{
			"revoked":    true,
			"updated_at": time.Now(),
		},
	}

	result, err := r.db.Collection(refreshTokenCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}

func (r *refreshTokenMongoRepository) RevokeAllForUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	filter := bson.M{
		"user_id": userID,
		"revoked": false,
	}
	update := bson.M{
		"$set": bson.M{
			"revoked":    true,
			"updated_at": time.Now(),
		},
	}

	result, err := r.db.Collection(refreshTokenCollection).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
