package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"board/internal/domain"
	"board/internal/repository"
)

var createPostsSQLite = []string{`
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	views INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);`,
}

var createPostsPostgres = []string{`
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	username TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	views BIGINT NOT NULL DEFAULT 0
);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);`,
}

const (
	selectPost        = `SELECT id, title, content, user_id, username, created_at, views FROM posts`
	selectPostSummary = `SELECT id, title, username, created_at, views FROM posts`
)

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

// Init must run after the users table exists.
func (r *PostRepository) Init(ctx context.Context) error {
	schema := createPostsSQLite
	if isPostgres(r.db) {
		schema = createPostsPostgres
	}
	if err := execAll(ctx, r.db, schema); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO posts (title, content, user_id, username, created_at, views)
VALUES (?, ?, ?, ?, ?, 0)
RETURNING id`),
		post.Title,
		post.Content,
		post.UserID,
		post.Username,
		post.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert post", err)
	}
	post.ID = id
	post.Views = 0
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.GetContext(ctx, &post, r.db.Rebind(selectPost+` WHERE id = ?`), id); err != nil {
		return nil, wrap("get post", err)
	}
	return &post, nil
}

func (r *PostRepository) View(ctx context.Context, id int64) (*domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE posts SET views = views + 1 WHERE id = ?`), id)
	if err != nil {
		return nil, wrap("increment views", err)
	}
	if err := requireAffected(res, "increment views"); err != nil {
		return nil, err
	}

	var post domain.Post
	if err := tx.GetContext(ctx, &post, tx.Rebind(selectPost+` WHERE id = ?`), id); err != nil {
		return nil, wrap("get viewed post", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, id int64, title, content string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE posts SET title = ?, content = ? WHERE id = ?`), title, content, id)
	if err != nil {
		return wrap("update post", err)
	}
	return requireAffected(res, "update post")
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return wrap("delete post", err)
	}
	return requireAffected(res, "delete post")
}

func (r *PostRepository) Search(ctx context.Context, q domain.PostQuery) ([]domain.PostSummary, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(selectPostSummary)

	if q.Text != "" {
		pattern := "%" + escapeLike(q.Text) + "%"
		match := func(column string) string {
			args = append(args, pattern)
			return "LOWER(" + column + ") LIKE LOWER(?) ESCAPE '\\'"
		}

		query.WriteString(" WHERE ")
		switch domain.ParseSearchScope(string(q.Scope)) {
		case domain.SearchTitle:
			query.WriteString(match("title"))
		case domain.SearchContent:
			query.WriteString(match("content"))
		case domain.SearchUsername:
			query.WriteString(match("username"))
		default:
			query.WriteString(match("title"))
			query.WriteString(" OR ")
			query.WriteString(match("content"))
		}
	}
	query.WriteString(" ORDER BY created_at DESC, id DESC")

	posts := []domain.PostSummary{}
	if err := r.db.SelectContext(ctx, &posts, r.db.Rebind(query.String()), args...); err != nil {
		return nil, wrap("search posts", err)
	}
	return posts, nil
}

func (r *PostRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM posts WHERE user_id = ?`), userID); err != nil {
		return 0, wrap("count posts", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}
