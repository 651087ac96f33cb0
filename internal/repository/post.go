package repository

import (
	"context"

	"board/internal/domain"
)

// PostRepository exposes persistence operations for posts.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	// View increments the view counter of an existing post and returns the
	// post as stored after the increment. A missing post is left untouched.
	View(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, id int64, title, content string) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q domain.PostQuery) ([]domain.PostSummary, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}
