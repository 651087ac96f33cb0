package repository

import (
	"context"

	"board/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Delete removes the user; the store cascades the delete to owned posts.
	Delete(ctx context.Context, id int64) error
}
