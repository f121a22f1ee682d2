package handler

import (
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
	authtypes "github.com/vasapolrittideah/shop-it-api/services/auth-service/pkg/types"
)

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type RegisterRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName"  validate:"required,max=50"`
	Password  string `json:"password"  validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is used by refresh and logout. The token may instead be
// supplied in the refresh token cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
}

type AuthResponse struct {
	User   *model.User       `json:"user"`
	Tokens *authtypes.Tokens `json:"tokens"`
}

type UserResponse struct {
	User *model.User `json:"user"`
}
