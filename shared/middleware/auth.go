package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vasapolrittideah/shop-it-api/shared/apperror"
	"github.com/vasapolrittideah/shop-it-api/shared/auth"
	"github.com/vasapolrittideah/shop-it-api/shared/response"
	"github.com/vasapolrittideah/shop-it-api/shared/utilities"
)

type contextKey struct{}

var userClaimsKey = contextKey{}

var (
	errMissingToken = apperror.Unauthorized("no token provided")
	errInvalidToken = apperror.Unauthorized("invalid or expired token")
)

// NewJWTAuthenticator returns a middleware that requires a bearer token signed
// with secret. newClaims must return a pointer to a fresh claims value; the
// parsed claims are stored in the request context.
func NewJWTAuthenticator(
	jwtAuth auth.JWTAuthenticator,
	secret string,
	newClaims func() jwt.Claims,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := utilities.BearerToken(r)
			if !ok {
				response.WriteError(w, errMissingToken)
				return
			}

			claims := newClaims()
			if _, err := jwtAuth.ValidateTokenWithClaims(tokenString, secret, claims); err != nil {
				response.WriteError(w, errInvalidToken.Wrap(err))
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by the JWT authenticator.
func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(jwt.Claims)
	return claims, ok
}
