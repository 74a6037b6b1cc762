// Package token issues and resolves the opaque bearer tokens used as
// session credentials. Plaintext tokens exist only in transit: the
// registry stores a sha256 digest and hands the plaintext to the caller
// exactly once.
package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/repository"
)

type Registry struct {
	tokens repository.TokenRepository
	users  repository.UserRepository
	ttl    time.Duration // 0 = tokens never expire
	now    func() time.Time
}

func NewRegistry(tokens repository.TokenRepository, users repository.UserRepository, ttl time.Duration) *Registry {
	return &Registry{
		tokens: tokens,
		users:  users,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a fresh token for the user and returns the plaintext.
// Each call creates an independent session; existing tokens are untouched
// so other devices stay logged in.
func (r *Registry) Issue(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	plaintext := hex.EncodeToString(raw)

	var expiresAt *time.Time
	if r.ttl > 0 {
		t := r.now().Add(r.ttl)
		expiresAt = &t
	}

	if err := r.tokens.Create(ctx, userID, Hash(plaintext), expiresAt); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return plaintext, nil
}

// Resolve maps a presented plaintext token to its owner. It returns
// domain.ErrTokenInvalid for unknown, revoked and expired tokens alike,
// plus the token hash so the caller can later revoke this session.
func (r *Registry) Resolve(ctx context.Context, plaintext string) (*domain.User, string, error) {
	hash := Hash(plaintext)

	at, err := r.tokens.FindByHash(ctx, hash)
	if err != nil {
		return nil, "", domain.ErrTokenInvalid
	}
	if !at.Usable(r.now()) {
		return nil, "", domain.ErrTokenInvalid
	}

	user, err := r.users.FindByID(ctx, at.UserID)
	if err != nil {
		return nil, "", domain.ErrTokenInvalid
	}

	// last_used_at is bookkeeping; a failed update must not kill the request.
	_ = r.tokens.TouchLastUsed(ctx, hash)

	return user, hash, nil
}

// Revoke invalidates the session identified by the token hash.
// Idempotent: revoking twice is not an error.
func (r *Registry) Revoke(ctx context.Context, tokenHash string) error {
	if err := r.tokens.Revoke(ctx, tokenHash); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Hash is the at-rest representation of a plaintext token.
func Hash(plaintext string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(plaintext)))
}
