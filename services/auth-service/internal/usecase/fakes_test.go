package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/shop-it-api/shared/auth"
)

// plainHasher stands in for Argon2 so tests stay fast. It keeps the contract
// that a digest never equals its input.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) {
	return "hashed:" + secret, nil
}

func (plainHasher) Verify(secret, digest string) bool {
	return digest == "hashed:"+secret
}

// countingHasher is a plainHasher that counts Verify calls.
type countingHasher struct {
	plainHasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(secret, digest string) bool {
	h.verifies.Add(1)
	return h.plainHasher.Verify(secret, digest)
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer records every delivery. Setting fail makes deliveries fail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	fail error
}

func (m *recordingMailer) SendHTML(to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	for _, addr := range to {
		m.sent = append(m.sent, sentEmail{To: addr, Subject: subject, Body: htmlBody})
	}
	return nil
}

func (m *recordingMailer) last(t *testing.T) sentEmail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.sent, "no email was sent")
	return m.sent[len(m.sent)-1]
}

// lastCode extracts the six-digit code from the most recent email.
func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	body := m.last(t).Body

	for i := 0; i+6 <= len(body); i++ {
		candidate := body[i : i+6]
		if strings.Trim(candidate, "0123456789") == "" &&
			(i == 0 || body[i-1] == '>') && (i+6 == len(body) || body[i+6] == '<') {
			return candidate
		}
	}

	t.Fatalf("no code found in email body %q", body)
	return ""
}

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[bson.ObjectID]model.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[bson.ObjectID]model.User)}
}

func (r *memoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicateKey
		}
	}

	now := time.Now()
	stored := *user
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = stored

	created := stored
	created.PasswordHash = ""
	return &created, nil
}

func (r *memoryUserRepository) GetUser(
	_ context.Context,
	id string,
	opts ...repository.GetUserOption,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return project(u, opts), nil
}

func (r *memoryUserRepository) GetUserByEmail(
	_ context.Context,
	email string,
	opts ...repository.GetUserOption,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return project(u, opts), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepository) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.PasswordHash != nil {
		u.PasswordHash = *params.PasswordHash
	}
	u.UpdatedAt = time.Now()
	r.users[objectID] = u

	return project(u, nil), nil
}

func (r *memoryUserRepository) passwordHash(t *testing.T, email string) string {
	t.Helper()
	u, err := r.GetUserByEmail(context.Background(), email, repository.WithPasswordHash())
	require.NoError(t, err)
	return u.PasswordHash
}

// project strips the password hash unless an option was passed; the only
// lookup option is repository.WithPasswordHash.
func project(u model.User, opts []repository.GetUserOption) *model.User {
	if len(opts) == 0 {
		u.PasswordHash = ""
	}
	return &u
}

type otpKey struct {
	email   string
	purpose model.OTPPurpose
}

// memoryOTPRepository mirrors the Mongo repository: a replace keeps the _id of
// the record it supersedes, so only the code hash tells two issuances apart.
type memoryOTPRepository struct {
	mu   sync.Mutex
	otps map[otpKey]model.OTP

	deleteErr error
	// afterFind runs once, after the next FindOTP returns its record.
	afterFind func()
}

func newMemoryOTPRepository() *memoryOTPRepository {
	return &memoryOTPRepository{otps: make(map[otpKey]model.OTP)}
}

func (r *memoryOTPRepository) UpsertOTP(_ context.Context, otp *model.OTP) (*model.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := otpKey{otp.Email, otp.Purpose}
	now := time.Now()
	stored := *otp
	stored.ID = bson.NewObjectID()
	if existing, ok := r.otps[key]; ok {
		stored.ID = existing.ID
	}
	stored.Verified = false
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.otps[key] = stored

	return &stored, nil
}

func (r *memoryOTPRepository) FindOTP(
	_ context.Context,
	email string,
	purpose model.OTPPurpose,
	verified bool,
) (*model.OTP, error) {
	r.mu.Lock()
	otp, ok := r.otps[otpKey{email, purpose}]
	hook := r.afterFind
	r.afterFind = nil
	r.mu.Unlock()

	if !ok || otp.Verified != verified {
		return nil, repository.ErrNotFound
	}
	if hook != nil {
		hook()
	}
	return &otp, nil
}

func (r *memoryOTPRepository) MarkOTPVerified(_ context.Context, otp *model.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, stored := range r.otps {
		if stored.ID == otp.ID && stored.CodeHash == otp.CodeHash && !stored.Verified {
			stored.Verified = true
			r.otps[key] = stored
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryOTPRepository) DeleteOTP(_ context.Context, otp *model.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	for key, stored := range r.otps {
		if stored.ID == otp.ID && stored.CodeHash == otp.CodeHash {
			delete(r.otps, key)
		}
	}
	return nil
}

func (r *memoryOTPRepository) DeleteOTPsByEmail(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key := range r.otps {
		if key.email == email {
			delete(r.otps, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryOTPRepository) get(email string, purpose model.OTPPurpose) (model.OTP, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	otp, ok := r.otps[otpKey{email, purpose}]
	return otp, ok
}

// expire moves the record for email and purpose into the past.
func (r *memoryOTPRepository) expire(t *testing.T, email string, purpose model.OTPPurpose) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	otp, ok := r.otps[otpKey{email, purpose}]
	require.True(t, ok, "no otp for %s/%s", email, purpose)
	otp.ExpiresAt = time.Now().Add(-time.Second)
	r.otps[otpKey{email, purpose}] = otp
}

type memoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken

	revokeAllErr error
}

func newMemoryRefreshTokenRepository() *memoryRefreshTokenRepository {
	return &memoryRefreshTokenRepository{tokens: make(map[string]model.RefreshToken)}
}

func (r *memoryRefreshTokenRepository) CreateRefreshToken(
	_ context.Context,
	token *model.RefreshToken,
) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.JTI]; exists {
		return nil, repository.ErrDuplicateKey
	}

	now := time.Now()
	stored := *token
	stored.ID = bson.NewObjectID()
	stored.Revoked = false
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.tokens[token.JTI] = stored

	return &stored, nil
}

func (r *memoryRefreshTokenRepository) FindActiveByJTI(_ context.Context, jti string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[jti]
	if !ok || token.Revoked {
		return nil, repository.ErrNotFound
	}
	return &token, nil
}

func (r *memoryRefreshTokenRepository) FindActiveByHash(
	_ context.Context,
	tokenHash string,
) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.TokenHash == tokenHash && !token.Revoked {
			return &token, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryRefreshTokenRepository) RevokeByJTI(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[jti]
	if !ok || token.Revoked {
		return false, nil
	}
	token.Revoked = true
	r.tokens[jti] = token
	return true, nil
}

func (r *memoryRefreshTokenRepository) RevokeAllForUser(_ context.Context, userID bson.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.revokeAllErr != nil {
		return 0, r.revokeAllErr
	}

	var revoked int64
	for jti, token := range r.tokens {
		if token.UserID == userID && !token.Revoked {
			token.Revoked = true
			r.tokens[jti] = token
			revoked++
		}
	}
	return revoked, nil
}

func (r *memoryRefreshTokenRepository) activeCount(userID bson.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for _, token := range r.tokens {
		if token.UserID == userID && !token.Revoked {
			n++
		}
	}
	return n
}

func (r *memoryRefreshTokenRepository) all() []model.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := make([]model.RefreshToken, 0, len(r.tokens))
	for _, token := range r.tokens {
		tokens = append(tokens, token)
	}
	return tokens
}

// testEnv wires every usecase against in-memory stores.
type testEnv struct {
	cfg        *config.AuthServiceConfig
	jwtAuth    auth.JWTAuthenticator
	users      *memoryUserRepository
	otps       *memoryOTPRepository
	refresh    *memoryRefreshTokenRepository
	mailer     *recordingMailer
	otpUC      OTPUsecase
	authUC     AuthUsecase
	passwordUC PasswordResetUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)
	cfg := &config.AuthServiceConfig{
		Token: config.TokenConfig{
			Issuer:                "shop-it-test",
			Audience:              "shop-it-api-test",
			AccessTokenSecret:     "access-secret",
			RefreshTokenSecret:    "refresh-secret",
			AccessTokenExpiresIn:  15 * time.Minute,
			RefreshTokenExpiresIn: 7 * 24 * time.Hour,
		},
		OTP: config.OTPConfig{ExpiresIn: 10 * time.Minute},
	}
	require.NoError(t, cfg.Validate())

	env := &testEnv{
		cfg:     cfg,
		jwtAuth: auth.NewJWTAuthenticator(cfg.Token.Audience, cfg.Token.Issuer),
		users:   newMemoryUserRepository(),
		otps:    newMemoryOTPRepository(),
		refresh: newMemoryRefreshTokenRepository(),
		mailer:  &recordingMailer{},
	}

	hasher := plainHasher{}
	env.otpUC = NewOTPUsecase(&logger, env.users, env.otps, hasher, env.mailer, cfg)
	env.authUC = NewAuthUsecase(&logger, env.users, env.otps, env.refresh, hasher, env.jwtAuth, cfg)
	env.passwordUC = NewPasswordResetUsecase(&logger, env.users, env.otps, env.refresh, env.otpUC, hasher, env.mailer)

	return env
}

// authUsecaseWith builds an AuthUsecase over the env stores with hasher.
func (e *testEnv) authUsecaseWith(hasher Hasher) AuthUsecase {
	logger := zerolog.New(io.Discard)
	return NewAuthUsecase(&logger, e.users, e.otps, e.refresh, hasher, e.jwtAuth, e.cfg)
}

// register runs the full verification flow and registers email with password.
func (e *testEnv) register(t *testing.T, email, password string) *AuthResult {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, e.otpUC.SendVerificationEmail(ctx, email))
	code := e.mailer.lastCode(t)
	require.NoError(t, e.otpUC.VerifyOTP(ctx, email, code, model.OTPPurposeEmailVerification))

	result, err := e.authUC.Register(ctx, RegisterParams{
		Email:     email,
		FirstName: "Alice",
		LastName:  "Doe",
		Password:  password,
	})
	require.NoError(t, err)
	return result
}

var errSMTPDown = errors.New("smtp: connection refused")
