package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/usecase"
	authtypes "github.com/vasapolrittideah/shop-it-api/services/auth-service/pkg/types"
	"github.com/vasapolrittideah/shop-it-api/shared/apperror"
	"github.com/vasapolrittideah/shop-it-api/shared/auth"
	"github.com/vasapolrittideah/shop-it-api/shared/middleware"
	"github.com/vasapolrittideah/shop-it-api/shared/response"
	"github.com/vasapolrittideah/shop-it-api/shared/utilities"
	"github.com/vasapolrittideah/shop-it-api/shared/validator"
)

// RefreshTokenCookie is the cookie that carries the refresh token for browser clients.
const RefreshTokenCookie = "refreshToken"

const maxBodyBytes = 1 << 20

var (
	errMalformedBody = apperror.Validation("malformed request body")
	errUnauthorized  = apperror.Unauthorized("")

	// Login does not reveal whether the account exists.
	errLoginFailed = apperror.Unauthorized("invalid email or password")
)

// AuthHandler exposes the auth usecases over HTTP.
type AuthHandler struct {
	logger               *zerolog.Logger
	otpUsecase           usecase.OTPUsecase
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *validator.Validator
	jwtAuth              auth.JWTAuthenticator
	authServiceCfg       *config.AuthServiceConfig
}

func NewAuthHandler(
	logger *zerolog.Logger,
	otpUsecase usecase.OTPUsecase,
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	requestValidator *validator.Validator,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
) *AuthHandler {
	return &AuthHandler{
		logger:               logger,
		otpUsecase:           otpUsecase,
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            requestValidator,
		jwtAuth:              jwtAuth,
		authServiceCfg:       authServiceCfg,
	}
}

// RegisterRoutes registers the auth routes under /auth.
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	authenticate := middleware.NewJWTAuthenticator(
		h.jwtAuth,
		h.authServiceCfg.Token.AccessTokenSecret,
		func() jwt.Claims { return &authtypes.AccessClaims{} },
	)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/send-verification-email", h.SendVerificationEmail)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.RefreshToken)
		r.Post("/logout", h.Logout)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/verify-password-reset-otp", h.VerifyPasswordResetOTP)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/me", h.Me)
		})
	})
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
	case err != nil:
		return errMalformedBody.Wrap(err)
	}

	return h.validator.Struct(dst)
}

// writeError writes err to the client. Unexpected errors are logged with the
// request context and reported generically.
func (h *AuthHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := apperror.As(err); !ok {
		h.requestLogger(r).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unexpected error")
	}

	response.WriteError(w, err)
}

func (h *AuthHandler) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return h.logger
}

func requestMetadata(r *http.Request) authtypes.RequestMetadata {
	return authtypes.RequestMetadata{
		UserAgent: r.UserAgent(),
		IP:        utilities.ClientIP(r),
	}
}

func accessClaims(r *http.Request) (*authtypes.AccessClaims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, false
	}
	access, ok := claims.(*authtypes.AccessClaims)
	return access, ok && access.UserID != ""
}

// refreshTokenFrom returns the token from the body, falling back to the cookie.
func refreshTokenFrom(r *http.Request, body RefreshTokenRequest) string {
	if body.RefreshToken != "" {
		return body.RefreshToken
	}
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandler) setRefreshTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     h.cookiePath(),
		MaxAge:   int(h.authServiceCfg.Token.RefreshTokenExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   h.authServiceCfg.Environment != "development",
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.authServiceCfg.Environment != "development",
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) cookiePath() string {
	return "/api/" + h.authServiceCfg.APIVersion + "/auth"
}
