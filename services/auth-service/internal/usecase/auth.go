package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/repository"
	authtypes "github.com/vasapolrittideah/shop-it-api/services/auth-service/pkg/types"
	"github.com/vasapolrittideah/shop-it-api/shared/auth"
	"github.com/vasapolrittideah/shop-it-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// RefreshToken rotates a refresh token. Presenting a token that was already
	// rotated or revoked revokes every session of its user.
	RefreshToken(ctx context.Context, params RefreshTokenParams) (*authtypes.Tokens, error)

	// Logout revokes the session of refreshToken, if any. It never fails for an
	// unknown or missing token.
	Logout(ctx context.Context, refreshToken string) error

	GetProfile(ctx context.Context, userID string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Metadata  authtypes.RequestMetadata
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
	Metadata authtypes.RequestMetadata
}

// RefreshTokenParams defines the parameters for refresh token rotation.
type RefreshTokenParams struct {
	RefreshToken string
	Metadata     authtypes.RequestMetadata
}

// AuthResult is returned by operations that start a session.
type AuthResult struct {
	User   *model.User
	Tokens *authtypes.Tokens
}

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so both failures cost one hash verification.
const dummyPassword = "shop-it-dummy-password"

type authUsecase struct {
	logger         *zerolog.Logger
	userRepo       repository.UserRepository
	otpRepo        repository.OTPRepository
	refreshRepo    repository.RefreshTokenRepository
	hasher         Hasher
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig

	dummyHashOnce sync.Once
	dummyHash     string
}

func NewAuthUsecase(
	logger *zerolog.Logger,
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	refreshRepo repository.RefreshTokenRepository,
	hasher Hasher,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
) AuthUsecase {
	return &authUsecase{
		logger:         logger,
		userRepo:       userRepo,
		otpRepo:        otpRepo,
		refreshRepo:    refreshRepo,
		hasher:         hasher,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	email := normalizeEmail(params.Email)

	otp, err := findVerifiedOTP(ctx, u.logger, u.otpRepo, email, model.OTPPurposeEmailVerification)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmailNotVerified
		}
		return nil, fmt.Errorf("failed to find verified otp: %w", err)
	}

	_, err = u.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrUserAlreadyExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: passwordHash,
		Role:         model.RoleCustomer,
		Verified:     true,
		Timezone:     model.DefaultTimezone,
	})
	if err != nil {
		// The unique email index settles concurrent or retried registrations.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// A leftover verified code cannot create a second account, so a failed
	// delete is logged rather than failing a registration that already happened.
	if err := u.otpRepo.DeleteOTP(ctx, otp); err != nil {
		u.logger.Warn().Err(err).Str("otp_id", otp.ID.Hex()).Msg("failed to delete consumed otp")
	}

	tokens, err := u.createAuthSession(ctx, user, params.Metadata)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := normalizeEmail(params.Email)

	user, err := u.userRepo.GetUserByEmail(ctx, email, repository.WithPasswordHash())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			u.hasher.Verify(params.Password, u.dummyPasswordHash())
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.hasher.Verify(params.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	user.PasswordHash = ""

	tokens, err := u.createAuthSession(ctx, user, params.Metadata)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *authUsecase) dummyPasswordHash() string {
	u.dummyHashOnce.Do(func() {
		hash, err := u.hasher.Hash(dummyPassword)
		if err != nil {
			u.logger.Error().Err(err).Msg("failed to hash dummy password")
			return
		}
		u.dummyHash = hash
	})

	return u.dummyHash
}

func (u *authUsecase) RefreshToken(ctx context.Context, params RefreshTokenParams) (*authtypes.Tokens, error) {
	claims, err := parseRefreshToken(u.jwtAuth, u.authServiceCfg.Token, params.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			u.logger.Debug().Err(err).Msg("expired refresh token presented")
		} else {
			u.logger.Warn().Err(err).Msg("malformed refresh token presented")
		}
		return nil, ErrInvalidRefreshToken.Wrap(err)
	}

	userID, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken.Wrap(err)
	}

	record, err := u.refreshRepo.FindActiveByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, u.revokeTokenFamily(ctx, userID, claims.ID)
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	if record.UserID != userID || !security.CompareTokenHash(params.RefreshToken, record.TokenHash) {
		u.logger.Warn().
			Str("user_id", claims.UserID).
			Str("jti", claims.ID).
			Msg("refresh token does not match its stored record")
		return nil, ErrInvalidRefreshToken
	}

	revoked, err := u.refreshRepo.RevokeByJTI(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !revoked {
		// A concurrent presentation of the same token won the rotation.
		return nil, u.revokeTokenFamily(ctx, userID, claims.ID)
	}

	user, err := u.userRepo.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return u.createAuthSession(ctx, user, params.Metadata)
}

// revokeTokenFamily handles reuse of a consumed refresh token by revoking every
// session of the user. It always returns the error to report to the caller.
func (u *authUsecase) revokeTokenFamily(ctx context.Context, userID bson.ObjectID, jti string) error {
	revoked, err := u.refreshRepo.RevokeAllForUser(ctx, userID)
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("user_id", userID.Hex()).
			Str("jti", jti).
			Msg("failed to revoke refresh token family after reuse")
		return fmt.Errorf("failed to revoke refresh token family: %w", err)
	}

	u.logger.Warn().
		Str("user_id", userID.Hex()).
		Str("jti", jti).
		Int64("revoked", revoked).
		Msg("refresh token reuse detected, revoked all sessions")

	return ErrRefreshTokenReused
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	record, err := u.refreshRepo.FindActiveByHash(ctx, security.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find refresh token: %w", err)
	}

	if _, err := u.refreshRepo.RevokeByJTI(ctx, record.JTI); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

func (u *authUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}

// createAuthSession issues a token pair for user and persists the refresh
// token record. Only the hash of the refresh token is stored.
func (u *authUsecase) createAuthSession(
	ctx context.Context,
	user *model.User,
	metadata authtypes.RequestMetadata,
) (*authtypes.Tokens, error) {
	now := time.Now()
	jti := uuid.NewString()
	userID := user.ID.Hex()

	accessToken, err := generateAccessToken(u.jwtAuth, u.authServiceCfg.Token, userID, user.Email, jti, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateRefreshToken(u.jwtAuth, u.authServiceCfg.Token, userID, jti, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if _, err := u.refreshRepo.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: security.HashToken(refreshToken),
		UserAgent: optionalString(metadata.UserAgent),
		IPAddress: optionalString(metadata.IP),
		ExpiresAt: now.Add(u.authServiceCfg.Token.RefreshTokenExpiresIn),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &authtypes.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
