package repository

import (
	"context"

	"github.com/talgatov/auth-api/internal/domain"
)

type UserRepository interface {
	// Create persists a new user. The email must already be normalized
	// to lower case; a unique-constraint hit surfaces as
	// domain.ErrDuplicateEmail.
	Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
}
