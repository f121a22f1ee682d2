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

// UserRepository defines the interface for user-related database operations.
// Lookups omit the password hash unless WithPasswordHash is passed.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string, opts ...GetUserOption) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string, opts ...GetUserOption) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
}

// GetUserOption tunes a user lookup.
type GetUserOption func(*getUserOptions)

type getUserOptions struct {
	includePasswordHash bool
}

// WithPasswordHash includes the password hash in the returned user.
func WithPasswordHash() GetUserOption {
	return func(o *getUserOptions) {
		o.includePasswordHash = true
	}
}

func applyGetUserOptions(opts ...GetUserOption) (includePasswordHash bool) {
	var o getUserOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.includePasswordHash
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	PasswordHash *string
}

const userCollection = "users"

var withoutPasswordHash = bson.M{"password_hash": 0}

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the users repository and its unique email index.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, translateError(err)
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	created := *user
	created.PasswordHash = ""

	return &created, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string, opts ...GetUserOption) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, opts...)
}

func (r *userMongoRepository) GetUserByEmail(
	ctx context.Context,
	email string,
	opts ...GetUserOption,
) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, opts...)
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M, opts ...GetUserOption) (*model.User, error) {
	findOptions := options.FindOne()
	if !applyGetUserOptions(opts...) {
		findOptions.SetProjection(withoutPasswordHash)
	}

	var user model.User
	if err := r.db.Collection(userCollection).FindOne(ctx, filter, findOptions).Decode(&user); err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	// Build update query
	updateMap := bson.M{}
	if params.PasswordHash != nil {
		updateMap["password_hash"] = *params.PasswordHash
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no user fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPasswordHash),
	)

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}
