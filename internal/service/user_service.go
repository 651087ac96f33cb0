package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"board/internal/domain"
	"board/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registration hits a uniqueness conflict.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the user row no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

const maxPasswordBytes = 72

// dummyHash is compared against when a login names an unknown user, so a
// missing user costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("board-dummy-password"), bcrypt.DefaultCost)

// Profile is the account view of a user.
type Profile struct {
	User      *domain.User
	PostCount int64
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Profile(ctx context.Context, id int64) (*Profile, error)
	// Withdraw deletes the account together with every post it owns.
	Withdraw(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
	posts repository.PostRepository
	cost  int
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository) UserService {
	return &userService{
		users: users,
		posts: posts,
		cost:  bcrypt.DefaultCost,
	}
}

// NewUserServiceWithCost is NewUserService with an explicit bcrypt cost.
func NewUserServiceWithCost(users repository.UserRepository, posts repository.PostRepository, cost int) UserService {
	return &userService{
		users: users,
		posts: posts,
		cost:  cost,
	}
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Profile(ctx context.Context, id int64) (*Profile, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.posts.CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, PostCount: count}, nil
}

func (s *userService) Withdraw(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}
