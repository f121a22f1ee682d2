package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/shop-it-api/shared/response"
)

func (h *AuthHandler) SendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.otpUsecase.SendVerificationEmail(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Write(w, response.Success("Verification email sent", nil, http.StatusOK))
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.otpUsecase.VerifyOTP(r.Context(), req.Email, req.OTP, model.OTPPurposeEmailVerification); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Write(w, response.Success("Email verification successful", nil, http.StatusOK))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Metadata:  requestMetadata(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setRefreshTokenCookie(w, result.Tokens.RefreshToken)
	response.Write(w, response.Success(
		"Registration successful",
		AuthResponse{User: result.User, Tokens: result.Tokens},
		http.StatusCreated,
	))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		Metadata: requestMetadata(r),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) || errors.Is(err, usecase.ErrInvalidCredentials) {
			err = errLoginFailed.Wrap(err)
		}
		h.writeError(w, r, err)
		return
	}

	h.setRefreshTokenCookie(w, result.Tokens.RefreshToken)
	response.Write(w, response.Success(
		"Login successful",
		AuthResponse{User: result.User, Tokens: result.Tokens},
		http.StatusOK,
	))
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := h.decode(w, r, &req, true); err != nil {
		h.writeError(w, r, err)
		return
	}

	token := refreshTokenFrom(r, req)
	if token == "" {
		h.writeError(w, r, usecase.ErrInvalidRefreshToken)
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), usecase.RefreshTokenParams{
		RefreshToken: token,
		Metadata:     requestMetadata(r),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshTokenReused) {
			h.clearRefreshTokenCookie(w)
		}
		h.writeError(w, r, err)
		return
	}

	h.setRefreshTokenCookie(w, tokens.RefreshToken)
	response.Write(w, response.Success("Token refreshed", tokens, http.StatusOK))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := h.decode(w, r, &req, true); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.authUsecase.Logout(r.Context(), refreshTokenFrom(r, req)); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearRefreshTokenCookie(w)
	response.Write(w, response.Success("Logout successful", nil, http.StatusOK))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := accessClaims(r)
	if !ok {
		h.writeError(w, r, errUnauthorized)
		return
	}

	user, err := h.authUsecase.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Write(w, response.Success("Profile retrieved", UserResponse{User: user}, http.StatusOK))
}
