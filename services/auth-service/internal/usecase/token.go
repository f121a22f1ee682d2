package usecase

import (
	"errors"
	"time"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	authtypes "github.com/vasapolrittideah/shop-it-api/services/auth-service/pkg/types"
	"github.com/vasapolrittideah/shop-it-api/shared/auth"
)

// generateAccessToken signs an access token for the user with the access key.
// It shares jti with the refresh token of the same session.
func generateAccessToken(
	jwtAuth auth.JWTAuthenticator,
	cfg config.TokenConfig,
	userID, email, jti string,
	now time.Time,
) (string, error) {
	claims := authtypes.AccessClaims{
		UserID:           userID,
		Email:            email,
		RegisteredClaims: jwtAuth.RegisteredClaims(userID, jti, now, cfg.AccessTokenExpiresIn),
	}

	return jwtAuth.GenerateToken(claims, cfg.AccessTokenSecret)
}

// generateRefreshToken signs a refresh token identified by jti with the refresh key.
func generateRefreshToken(
	jwtAuth auth.JWTAuthenticator,
	cfg config.TokenConfig,
	userID, jti string,
	now time.Time,
) (string, error) {
	claims := authtypes.RefreshClaims{
		UserID:           userID,
		RegisteredClaims: jwtAuth.RegisteredClaims(userID, jti, now, cfg.RefreshTokenExpiresIn),
	}

	return jwtAuth.GenerateToken(claims, cfg.RefreshTokenSecret)
}

// parseRefreshToken verifies a refresh token against the refresh key.
func parseRefreshToken(
	jwtAuth auth.JWTAuthenticator,
	cfg config.TokenConfig,
	token string,
) (*authtypes.RefreshClaims, error) {
	var claims authtypes.RefreshClaims
	if _, err := jwtAuth.ValidateTokenWithClaims(token, cfg.RefreshTokenSecret, &claims); err != nil {
		return nil, err
	}

	if claims.ID == "" || claims.UserID == "" {
		return nil, errors.New("refresh token is missing required claims")
	}

	return &claims, nil
}
