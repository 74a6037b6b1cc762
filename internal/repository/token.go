package repository

import (
	"context"
	"time"

	"github.com/talgatov/auth-api/internal/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt *time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (*domain.AccessToken, error)
	// TouchLastUsed updates last_used_at; failures are advisory.
	TouchLastUsed(ctx context.Context, tokenHash string) error
	// Revoke stamps revoked_at once. Revoking an unknown or
	// already-revoked token is a no-op.
	Revoke(ctx context.Context, tokenHash string) error
	// DeleteDead removes tokens expired or revoked before cutoff and
	// returns how many rows went away.
	DeleteDead(ctx context.Context, cutoff time.Time) (int64, error)
}
