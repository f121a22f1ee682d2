package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/repository"
)

// PasswordResetUsecase defines the business logic for resetting and changing passwords.
type PasswordResetUsecase interface {
	// ForgotPassword emails a password reset code to an existing user.
	ForgotPassword(ctx context.Context, email string) error

	// VerifyPasswordResetOTP marks the pending reset code as verified.
	VerifyPasswordResetOTP(ctx context.Context, email, code string) error

	// ResetPassword sets a new password once a reset code has been verified.
	// Every session of the user is revoked.
	ResetPassword(ctx context.Context, email, newPassword string) error

	// ChangePassword sets a new password for an authenticated user.
	ChangePassword(ctx context.Context, params ChangePasswordParams) error
}

// ChangePasswordParams defines the parameters for changing a password.
type ChangePasswordParams struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

type passwordResetUsecase struct {
	logger      *zerolog.Logger
	userRepo    repository.UserRepository
	otpRepo     repository.OTPRepository
	refreshRepo repository.RefreshTokenRepository
	otpUsecase  OTPUsecase
	hasher      Hasher
	mailer      EmailSender
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	logger *zerolog.Logger,
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	refreshRepo repository.RefreshTokenRepository,
	otpUsecase OTPUsecase,
	hasher Hasher,
	mailer EmailSender,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		logger:      logger,
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		refreshRepo: refreshRepo,
		otpUsecase:  otpUsecase,
		hasher:      hasher,
		mailer:      mailer,
	}
}

func (u *passwordResetUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	// Stale codes of any purpose are dropped before a reset code is issued.
	deleted, err := u.otpRepo.DeleteOTPsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to delete stale otps: %w", err)
	}
	if deleted > 0 {
		u.logger.Debug().Int64("deleted", deleted).Msg("deleted stale otps before password reset")
	}

	return u.otpUsecase.IssueOTP(ctx, email, model.OTPPurposePasswordReset)
}

func (u *passwordResetUsecase) VerifyPasswordResetOTP(ctx context.Context, email, code string) error {
	return u.otpUsecase.VerifyOTP(ctx, email, code, model.OTPPurposePasswordReset)
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)

	otp, err := findVerifiedOTP(ctx, u.logger, u.otpRepo, email, model.OTPPurposePasswordReset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPasswordResetNotVerified
		}
		return fmt.Errorf("failed to find verified otp: %w", err)
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := u.setPassword(ctx, user, newPassword); err != nil {
		return err
	}

	if err := u.otpRepo.DeleteOTP(ctx, otp); err != nil {
		return fmt.Errorf("failed to delete consumed otp: %w", err)
	}

	// Sessions opened before the reset may belong to whoever knew the old password.
	revoked, err := u.refreshRepo.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	u.logger.Info().
		Str("user_id", user.ID.Hex()).
		Int64("revoked_sessions", revoked).
		Msg("password reset")

	u.notifyPasswordChanged(user)

	return nil
}

func (u *passwordResetUsecase) ChangePassword(ctx context.Context, params ChangePasswordParams) error {
	user, err := u.userRepo.GetUser(ctx, params.UserID, repository.WithPasswordHash())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.hasher.Verify(params.CurrentPassword, user.PasswordHash) {
		return ErrIncorrectPassword
	}

	if params.NewPassword == params.CurrentPassword {
		return ErrSamePassword
	}

	if err := u.setPassword(ctx, user, params.NewPassword); err != nil {
		return err
	}

	u.logger.Info().Str("user_id", user.ID.Hex()).Msg("password changed")

	u.notifyPasswordChanged(user)

	return nil
}

func (u *passwordResetUsecase) setPassword(ctx context.Context, user *model.User, password string) error {
	passwordHash, err := u.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// notifyPasswordChanged is best effort. The password is already changed when it runs.
func (u *passwordResetUsecase) notifyPasswordChanged(user *model.User) {
	subject, htmlBody := passwordChangedEmail(user.FirstName)
	if err := u.mailer.SendHTML([]string{user.Email}, subject, htmlBody); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send password changed email")
	}
}
