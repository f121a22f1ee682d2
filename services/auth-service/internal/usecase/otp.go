package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/repository"
)

// OTPUsecase issues and verifies one-time codes sent by email.
//
// Each (email, purpose) moves through none -> pending -> verified; the record is
// deleted by the operation the code gates, never by verification itself.
type OTPUsecase interface {
	// SendVerificationEmail issues an email verification code to an address that
	// has no account yet.
	SendVerificationEmail(ctx context.Context, email string) error

	// IssueOTP generates a fresh code for email and purpose, superseding any
	// previous one, and emails it.
	IssueOTP(ctx context.Context, email string, purpose model.OTPPurpose) error

	// VerifyOTP checks code against the pending record for email and purpose and
	// marks it verified.
	VerifyOTP(ctx context.Context, email, code string, purpose model.OTPPurpose) error
}

// Codes are drawn from [otpMin, otpMin+otpRange), i.e. always six digits.
const (
	otpMin   = 100000
	otpRange = 900000
)

type otpUsecase struct {
	logger         *zerolog.Logger
	userRepo       repository.UserRepository
	otpRepo        repository.OTPRepository
	hasher         Hasher
	mailer         EmailSender
	authServiceCfg *config.AuthServiceConfig
}

// NewOTPUsecase creates a new instance of OTPUsecase.
func NewOTPUsecase(
	logger *zerolog.Logger,
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	hasher Hasher,
	mailer EmailSender,
	authServiceCfg *config.AuthServiceConfig,
) OTPUsecase {
	return &otpUsecase{
		logger:         logger,
		userRepo:       userRepo,
		otpRepo:        otpRepo,
		hasher:         hasher,
		mailer:         mailer,
		authServiceCfg: authServiceCfg,
	}
}

func (u *otpUsecase) SendVerificationEmail(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	_, err := u.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrUserAlreadyExists
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return u.IssueOTP(ctx, email, model.OTPPurposeEmailVerification)
}

func (u *otpUsecase) IssueOTP(ctx context.Context, email string, purpose model.OTPPurpose) error {
	email = normalizeEmail(email)

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	codeHash, err := u.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	expiresIn := u.authServiceCfg.OTP.ExpiresIn
	stored, err := u.otpRepo.UpsertOTP(ctx, &model.OTP{
		Email:     email,
		CodeHash:  codeHash,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(expiresIn),
	})
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	subject, htmlBody := otpEmail(purpose, code, expiresIn)
	if err := u.mailer.SendHTML([]string{email}, subject, htmlBody); err != nil {
		u.logger.Error().Err(err).Str("purpose", string(purpose)).Msg("failed to send otp email")

		// A code the user never received must not stay redeemable.
		if delErr := u.otpRepo.DeleteOTP(ctx, stored); delErr != nil {
			u.logger.Error().Err(delErr).Str("otp_id", stored.ID.Hex()).Msg("failed to roll back undelivered otp")
		}

		return ErrEmailDeliveryFails.Wrap(err)
	}

	u.logger.Info().Str("purpose", string(purpose)).Msg("otp email sent")

	return nil
}

func (u *otpUsecase) VerifyOTP(ctx context.Context, email, code string, purpose model.OTPPurpose) error {
	email = normalizeEmail(email)

	otp, err := u.otpRepo.FindOTP(ctx, email, purpose, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("failed to find otp: %w", err)
	}

	if otp.Expired(time.Now()) {
		deleteExpiredOTP(ctx, u.logger, u.otpRepo, otp)
		return ErrOTPExpired
	}

	if !u.hasher.Verify(code, otp.CodeHash) {
		return ErrInvalidOTP
	}

	if err := u.otpRepo.MarkOTPVerified(ctx, otp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Superseded or verified concurrently.
			return ErrOTPNotFound
		}
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}

	return nil
}

// findVerifiedOTP returns the unexpired verified record for email and purpose.
// Expired records are deleted and reported as repository.ErrNotFound.
func findVerifiedOTP(
	ctx context.Context,
	logger *zerolog.Logger,
	otpRepo repository.OTPRepository,
	email string,
	purpose model.OTPPurpose,
) (*model.OTP, error) {
	otp, err := otpRepo.FindOTP(ctx, email, purpose, true)
	if err != nil {
		return nil, err
	}

	if otp.Expired(time.Now()) {
		deleteExpiredOTP(ctx, logger, otpRepo, otp)
		return nil, repository.ErrNotFound
	}

	return otp, nil
}

func deleteExpiredOTP(
	ctx context.Context,
	logger *zerolog.Logger,
	otpRepo repository.OTPRepository,
	otp *model.OTP,
) {
	if err := otpRepo.DeleteOTP(ctx, otp); err != nil {
		logger.Warn().Err(err).Str("otp_id", otp.ID.Hex()).Msg("failed to delete expired otp")
	}
}

// generateOTPCode returns a uniformly random 6-digit code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
