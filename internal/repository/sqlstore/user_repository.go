package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"board/internal/domain"
	"board/internal/repository"
)

var createUsersSQLite = []string{`
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL
);`,
}

var createUsersPostgres = []string{`
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`,
}

const selectUser = `SELECT id, username, password, created_at FROM users`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	schema := createUsersSQLite
	if isPostgres(r.db) {
		schema = createUsersPostgres
	}
	if err := execAll(ctx, r.db, schema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO users (username, password, created_at)
VALUES (?, ?, ?)
RETURNING id`),
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert user", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(selectUser+` WHERE username = ?`), username); err != nil {
		return nil, wrap("get user by username", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(selectUser+` WHERE id = ?`), id); err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return wrap("delete user", err)
	}
	return requireAffected(res, "delete user")
}
