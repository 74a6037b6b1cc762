package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/email"
	"github.com/talgatov/auth-api/internal/metrics"
	"github.com/talgatov/auth-api/internal/password"
	"github.com/talgatov/auth-api/internal/repository"
)

const defaultVerifyTTL = 24 * time.Hour

// Dummy bcrypt hash of an unguessable string. Login runs a compare
// against it when the email is unknown so the timing matches the
// wrong-password path.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLydEW3y0bZ8q0eVXH9jZpVxRLD1W"

// tokenIssuer is the subset of token.Registry the usecase needs.
// Defined here (point of use) so tests can inject a fake.
type tokenIssuer interface {
	Issue(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, tokenHash string) error
}

type AuthUsecase struct {
	users     repository.UserRepository
	tokens    tokenIssuer
	mail      email.Sender
	logger    *slog.Logger
	jwtKey    []byte
	baseURL   string
	verifyTTL time.Duration
}

func NewAuthUsecase(users repository.UserRepository, tokens tokenIssuer, mail email.Sender, jwtKey []byte, baseURL string, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		tokens:    tokens,
		mail:      mail,
		logger:    logger.With("component", "auth_usecase"),
		jwtKey:    jwtKey,
		baseURL:   baseURL,
		verifyTTL: defaultVerifyTTL,
	}
}

// Register creates the user with a bcrypt-hashed password and sends a
// verification email. The plaintext password never leaves this call.
// A taken email (case-insensitive) surfaces as domain.ErrDuplicateEmail.
func (u *AuthUsecase) Register(ctx context.Context, name, emailAddr, plaintext string) (*domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)

	hash, err := password.Hash(plaintext)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, name, emailAddr, hash)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicateEmail
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	// Best effort: registration already succeeded, a failed send must
	// not fail the request. The user can re-request verification later.
	if err := u.sendVerificationEmail(ctx, user); err != nil {
		u.logger.ErrorContext(ctx, "send verification email", "error", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a fresh opaque token.
// Unknown email and wrong password are indistinguishable: both return
// domain.ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plaintext string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			password.Compare(dummyHash, plaintext)
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return nil, "", domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !password.Compare(user.PasswordHash, plaintext) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	plainToken, err := u.tokens.Issue(ctx, user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()
	return user, plainToken, nil
}

// Logout revokes only the presented session's token. Tokens issued to
// the same user on other devices stay valid.
func (u *AuthUsecase) Logout(ctx context.Context, tokenHash string) error {
	if err := u.tokens.Revoke(ctx, tokenHash); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	metrics.TokensRevokedTotal.Inc()
	return nil
}

// Me returns the caller's own record. Pure read.
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// VerifyEmail validates a signed verification link token and stamps
// email_verified_at. Idempotent: re-verifying is a no-op.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, signed string) error {
	parsed, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return u.jwtKey, nil
	})
	if err != nil || !parsed.Valid {
		return domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "email_verify" {
		return domain.ErrTokenInvalid
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return domain.ErrTokenInvalid
	}

	if err := u.users.MarkEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// sendVerificationEmail signs a one-shot link token and mails it. The
// link token is a short-lived JWT rather than a registry row: it proves
// nothing but "this user clicked their email" and needs no revocation.
func (u *AuthUsecase) sendVerificationEmail(ctx context.Context, user *domain.User) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"purpose": "email_verify",
		"iat":     now.Unix(),
		"exp":     now.Add(u.verifyTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return fmt.Errorf("sign verification token: %w", err)
	}

	link := u.baseURL + "/api/verify-email?token=" + signed
	subject := "Verify your email address"
	body := fmt.Sprintf(
		`<p>Welcome, %s! Click the link below to verify your email address (expires in 24 hours):</p><p><a href="%s">%s</a></p>`,
		user.Name, link, link,
	)
	return u.mail.Send(ctx, user.Email, subject, body)
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
