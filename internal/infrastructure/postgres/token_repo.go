package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talgatov/auth-api/internal/domain"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt *time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_tokens (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("create access token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByHash(ctx context.Context, tokenHash string) (*domain.AccessToken, error) {
	query := `
		SELECT id, user_id, token_hash, last_used_at, expires_at, revoked_at, created_at
		FROM access_tokens
		WHERE token_hash = $1`

	var t domain.AccessToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.UserID, &t.TokenHash,
		&t.LastUsedAt, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find access token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) TouchLastUsed(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE access_tokens SET last_used_at = NOW() WHERE token_hash = $1`,
		tokenHash,
	)
	if err != nil {
		return fmt.Errorf("touch access token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE access_tokens SET revoked_at = NOW()
		 WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenHash,
	)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteDead(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM access_tokens
		 WHERE (expires_at IS NOT NULL AND expires_at < $1)
		    OR (revoked_at IS NOT NULL AND revoked_at < $1)`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete dead tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
