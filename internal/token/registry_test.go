package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/token"
)

// ---- fakes ----

type memTokenRepo struct {
	rows map[string]*domain.AccessToken // keyed by token hash
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{rows: make(map[string]*domain.AccessToken)}
}

func (r *memTokenRepo) Create(_ context.Context, userID, tokenHash string, expiresAt *time.Time) error {
	r.rows[tokenHash] = &domain.AccessToken{
		ID:        tokenHash[:8],
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *memTokenRepo) FindByHash(_ context.Context, tokenHash string) (*domain.AccessToken, error) {
	at, ok := r.rows[tokenHash]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	cp := *at
	return &cp, nil
}

func (r *memTokenRepo) TouchLastUsed(_ context.Context, tokenHash string) error {
	if at, ok := r.rows[tokenHash]; ok {
		now := time.Now()
		at.LastUsedAt = &now
	}
	return nil
}

func (r *memTokenRepo) Revoke(_ context.Context, tokenHash string) error {
	if at, ok := r.rows[tokenHash]; ok && at.RevokedAt == nil {
		now := time.Now()
		at.RevokedAt = &now
	}
	return nil
}

func (r *memTokenRepo) DeleteDead(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for hash, at := range r.rows {
		dead := (at.ExpiresAt != nil && at.ExpiresAt.Before(cutoff)) ||
			(at.RevokedAt != nil && at.RevokedAt.Before(cutoff))
		if dead {
			delete(r.rows, hash)
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, name, email, hash string) (*domain.User, error) {
	panic("not used")
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	panic("not used")
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, id string) error { return nil }

func newTestRegistry(ttl time.Duration) (*token.Registry, *memTokenRepo) {
	tokens := newMemTokenRepo()
	users := &memUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Name: "John Doe", Email: "johndoe@example.com"},
	}}
	return token.NewRegistry(tokens, users, ttl), tokens
}

// ---- tests ----

func TestIssueThenResolve(t *testing.T) {
	reg, repo := newTestRegistry(0)
	ctx := context.Background()

	plaintext, err := reg.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if plaintext == "" {
		t.Fatal("expected non-empty plaintext token")
	}
	if _, stored := repo.rows[plaintext]; stored {
		t.Fatal("plaintext token must not be stored as-is")
	}
	if _, ok := repo.rows[token.Hash(plaintext)]; !ok {
		t.Fatal("expected hashed token in the store")
	}

	user, hash, err := reg.Resolve(ctx, plaintext)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("resolved user = %s, want user-1", user.ID)
	}
	if hash != token.Hash(plaintext) {
		t.Fatal("resolve returned a different token hash")
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	reg, _ := newTestRegistry(0)

	if _, _, err := reg.Resolve(context.Background(), "nonsense"); err != domain.ErrTokenInvalid {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestResolve_ExpiredToken(t *testing.T) {
	reg, repo := newTestRegistry(time.Hour)
	ctx := context.Background()

	plaintext, err := reg.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	past := time.Now().Add(-time.Minute)
	repo.rows[token.Hash(plaintext)].ExpiresAt = &past

	if _, _, err := reg.Resolve(ctx, plaintext); err != domain.ErrTokenInvalid {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestRevoke_KillsOnlyThatToken(t *testing.T) {
	reg, _ := newTestRegistry(0)
	ctx := context.Background()

	first, err := reg.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := reg.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	if err := reg.Revoke(ctx, token.Hash(first)); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, _, err := reg.Resolve(ctx, first); err != domain.ErrTokenInvalid {
		t.Fatalf("revoked token resolved: err = %v", err)
	}
	if _, _, err := reg.Resolve(ctx, second); err != nil {
		t.Fatalf("second token must still resolve: %v", err)
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	reg, _ := newTestRegistry(0)
	ctx := context.Background()

	plaintext, err := reg.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	hash := token.Hash(plaintext)
	if err := reg.Revoke(ctx, hash); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := reg.Revoke(ctx, hash); err != nil {
		t.Fatalf("second revoke must be a no-op: %v", err)
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	reg, _ := newTestRegistry(0)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 20 {
		plaintext, err := reg.Issue(ctx, "user-1")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if seen[plaintext] {
			t.Fatal("duplicate token issued")
		}
		seen[plaintext] = true
	}
}
