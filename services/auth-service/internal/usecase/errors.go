package usecase

import "github.com/vasapolrittideah/shop-it-api/shared/apperror"

var (
	ErrUserAlreadyExists  = apperror.Conflict("user already exists")
	ErrUserNotFound       = apperror.NotFound("user")
	ErrInvalidCredentials = apperror.Validation("invalid email or password")
	ErrEmailNotVerified   = apperror.Unauthorized("email not verified")

	ErrOTPNotFound        = apperror.NotFound("otp")
	ErrOTPExpired         = apperror.Unauthorized("otp has expired")
	ErrInvalidOTP         = apperror.Unauthorized("invalid otp")
	ErrEmailDeliveryFails = apperror.Unavailable("failed to send email, please try again")

	ErrInvalidRefreshToken = apperror.Unauthorized("invalid or expired refresh token")
	ErrRefreshTokenReused  = apperror.Unauthorized("refresh tokens revoked")

	ErrPasswordResetNotVerified = apperror.NotFound("verified password reset otp")
	ErrIncorrectPassword        = apperror.Validation("current password is incorrect")
	ErrSamePassword             = apperror.Conflict("new password must differ from the current password")
)
