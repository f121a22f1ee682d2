package handler

import (
	"net/http"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/shop-it-api/shared/response"
)

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Write(w, response.Success("Password reset code sent", nil, http.StatusOK))
}

func (h *AuthHandler) VerifyPasswordResetOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.VerifyPasswordResetOTP(r.Context(), req.Email, req.OTP); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Write(w, response.Success("Password reset code verified", nil, http.StatusOK))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Email, req.Password); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearRefreshTokenCookie(w)
	response.Write(w, response.Success("Password reset successful", nil, http.StatusOK))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := accessClaims(r)
	if !ok {
		h.writeError(w, r, errUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.ChangePassword(r.Context(), usecase.ChangePasswordParams{
		UserID:          claims.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Write(w, response.Success("Password changed successfully", nil, http.StatusOK))
}
