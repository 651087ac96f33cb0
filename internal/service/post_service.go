package service

import (
	"context"
	"errors"
	"strings"

	"board/internal/domain"
	"board/internal/repository"
)

var (
	// ErrPostNotFound is returned when the post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrForbidden is returned when the actor does not own the post.
	ErrForbidden = errors.New("not the owner of this post")
	// ErrUnknownAuthor is returned when a post is written for a user that no longer exists.
	ErrUnknownAuthor = errors.New("author does not exist")
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	UserID   int64
	Username string
}

// PostService covers listing, reading and owner-only mutation of posts.
type PostService interface {
	List(ctx context.Context, q domain.PostQuery) ([]domain.PostSummary, error)
	Create(ctx context.Context, actor Actor, title, content string) (*domain.Post, error)
	// View counts one view of the post and returns it.
	View(ctx context.Context, id int64) (*domain.Post, error)
	// GetOwned returns the post only when actor owns it.
	GetOwned(ctx context.Context, actor Actor, id int64) (*domain.Post, error)
	Update(ctx context.Context, actor Actor, id int64, title, content string) error
	Delete(ctx context.Context, actor Actor, id int64) error
}

type postService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

func (s *postService) List(ctx context.Context, q domain.PostQuery) ([]domain.PostSummary, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Scope = domain.ParseSearchScope(string(q.Scope))
	return s.posts.Search(ctx, q)
}

func (s *postService) Create(ctx context.Context, actor Actor, title, content string) (*domain.Post, error) {
	post := &domain.Post{
		Title:    title,
		Content:  content,
		UserID:   actor.UserID,
		Username: actor.Username,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrUnknownAuthor
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) View(ctx context.Context, id int64) (*domain.Post, error) {
	if id <= 0 {
		return nil, ErrPostNotFound
	}
	post, err := s.posts.View(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) GetOwned(ctx context.Context, actor Actor, id int64) (*domain.Post, error) {
	return s.authorize(ctx, actor, id)
}

func (s *postService) Update(ctx context.Context, actor Actor, id int64, title, content string) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.posts.Update(ctx, id, title, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *postService) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// authorize is the ownership gate shared by every mutating post operation.
func (s *postService) authorize(ctx context.Context, actor Actor, id int64) (*domain.Post, error) {
	if id <= 0 {
		return nil, ErrPostNotFound
	}
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if actor.UserID == 0 || post.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return post, nil
}
