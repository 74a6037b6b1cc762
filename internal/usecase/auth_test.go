package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/password"
	"github.com/talgatov/auth-api/internal/usecase"
)

// ---- fakes ----

type fakeUserRepo struct {
	create            func(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	findByID          func(ctx context.Context, id string) (*domain.User, error)
	findByEmail       func(ctx context.Context, email string) (*domain.User, error)
	markEmailVerified func(ctx context.Context, id string) error
}

func (r *fakeUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	return r.create(ctx, name, email, passwordHash)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) MarkEmailVerified(ctx context.Context, id string) error {
	return r.markEmailVerified(ctx, id)
}

type fakeIssuer struct {
	issue  func(ctx context.Context, userID string) (string, error)
	revoke func(ctx context.Context, tokenHash string) error
}

func (f *fakeIssuer) Issue(ctx context.Context, userID string) (string, error) {
	return f.issue(ctx, userID)
}

func (f *fakeIssuer) Revoke(ctx context.Context, tokenHash string) error {
	return f.revoke(ctx, tokenHash)
}

type fakeSender struct {
	sent []string // recipient addresses
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, _, _ string) error {
	s.sent = append(s.sent, to)
	return s.err
}

var testJWTKey = []byte("test-secret-key-that-is-long-enough")

func newAuthUsecase(users *fakeUserRepo, issuer *fakeIssuer, sender *fakeSender) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(users, issuer, sender, testJWTKey, "http://localhost:8080", slog.Default())
}

// ---- Register ----

func TestRegister_HashesPasswordAndNormalizesEmail(t *testing.T) {
	var gotEmail, gotHash string
	users := &fakeUserRepo{
		create: func(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
			gotEmail = email
			gotHash = passwordHash
			return &domain.User{ID: "u1", Name: name, Email: email}, nil
		},
	}
	sender := &fakeSender{}
	uc := newAuthUsecase(users, &fakeIssuer{}, sender)

	user, err := uc.Register(context.Background(), "John Doe", "  JohnDoe@Example.COM ", "password")
	require.NoError(t, err)

	assert.Equal(t, "johndoe@example.com", gotEmail)
	assert.Equal(t, "johndoe@example.com", user.Email)
	assert.NotEqual(t, "password", gotHash, "plaintext must never reach the store")
	assert.True(t, password.Compare(gotHash, "password"), "stored hash must verify the plaintext")
	assert.Equal(t, []string{"johndoe@example.com"}, sender.sent, "verification email goes to the new user")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &fakeUserRepo{
		create: func(_ context.Context, _, _, _ string) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	uc := newAuthUsecase(users, &fakeIssuer{}, &fakeSender{})

	_, err := uc.Register(context.Background(), "Jane", "taken@example.com", "password")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestRegister_EmailSendFailureDoesNotFailRegistration(t *testing.T) {
	users := &fakeUserRepo{
		create: func(_ context.Context, name, email, _ string) (*domain.User, error) {
			return &domain.User{ID: "u1", Name: name, Email: email}, nil
		},
	}
	sender := &fakeSender{err: errors.New("smtp down")}
	uc := newAuthUsecase(users, &fakeIssuer{}, sender)

	_, err := uc.Register(context.Background(), "John", "johndoe@example.com", "password")
	assert.NoError(t, err)
}

// ---- Login ----

func loginFixtures(t *testing.T) (*fakeUserRepo, *fakeIssuer) {
	t.Helper()
	hash, err := password.Hash("password")
	require.NoError(t, err)

	stored := &domain.User{ID: "u1", Name: "John Doe", Email: "johndoe@example.com", PasswordHash: hash}
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	issuer := &fakeIssuer{
		issue: func(_ context.Context, userID string) (string, error) {
			return "plain-token-for-" + userID, nil
		},
	}
	return users, issuer
}

func TestLogin_Success(t *testing.T) {
	users, issuer := loginFixtures(t)
	uc := newAuthUsecase(users, issuer, &fakeSender{})

	user, plainToken, err := uc.Login(context.Background(), "JohnDoe@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "plain-token-for-u1", plainToken)
}

func TestLogin_WrongPasswordAndUnknownEmailAreIndistinguishable(t *testing.T) {
	users, issuer := loginFixtures(t)
	uc := newAuthUsecase(users, issuer, &fakeSender{})

	_, _, errWrongPassword := uc.Login(context.Background(), "johndoe@example.com", "not-the-password")
	_, _, errUnknownEmail := uc.Login(context.Background(), "nobody@example.com", "anything")

	assert.ErrorIs(t, errWrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, domain.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword, errUnknownEmail, "both failures must be the same error value")
}

// ---- Logout ----

func TestLogout_RevokesPresentedToken(t *testing.T) {
	var revoked []string
	issuer := &fakeIssuer{
		revoke: func(_ context.Context, tokenHash string) error {
			revoked = append(revoked, tokenHash)
			return nil
		},
	}
	uc := newAuthUsecase(&fakeUserRepo{}, issuer, &fakeSender{})

	require.NoError(t, uc.Logout(context.Background(), "hash-of-current-session"))
	assert.Equal(t, []string{"hash-of-current-session"}, revoked)
}

// ---- Me ----

func TestMe_ReturnsCallersRecord(t *testing.T) {
	users := &fakeUserRepo{
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: id + "@example.com"}, nil
		},
	}
	uc := newAuthUsecase(users, &fakeIssuer{}, &fakeSender{})

	user, err := uc.Me(context.Background(), "u42")
	require.NoError(t, err)
	assert.Equal(t, "u42", user.ID)
}

// ---- VerifyEmail ----

func signVerifyToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifyEmail_MarksUserVerified(t *testing.T) {
	var verified string
	users := &fakeUserRepo{
		markEmailVerified: func(_ context.Context, id string) error {
			verified = id
			return nil
		},
	}
	uc := newAuthUsecase(users, &fakeIssuer{}, &fakeSender{})

	signed := signVerifyToken(t, testJWTKey, jwt.MapClaims{
		"sub":     "u1",
		"purpose": "email_verify",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	require.NoError(t, uc.VerifyEmail(context.Background(), signed))
	assert.Equal(t, "u1", verified)
}

func TestVerifyEmail_RejectsBadTokens(t *testing.T) {
	uc := newAuthUsecase(&fakeUserRepo{}, &fakeIssuer{}, &fakeSender{})

	expired := signVerifyToken(t, testJWTKey, jwt.MapClaims{
		"sub":     "u1",
		"purpose": "email_verify",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongPurpose := signVerifyToken(t, testJWTKey, jwt.MapClaims{
		"sub":     "u1",
		"purpose": "password_reset",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	wrongKey := signVerifyToken(t, []byte("some-other-key-that-is-long-enough"), jwt.MapClaims{
		"sub":     "u1",
		"purpose": "email_verify",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	for name, tok := range map[string]string{
		"expired":       expired,
		"wrong purpose": wrongPurpose,
		"wrong key":     wrongKey,
		"garbage":       strings.Repeat("x", 40),
	} {
		assert.ErrorIs(t, uc.VerifyEmail(context.Background(), tok), domain.ErrTokenInvalid, name)
	}
}
