package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/internal/domain"
	"board/internal/repository"
)

func newTestStore(t *testing.T) (*sqlx.DB, repository.UserRepository, repository.PostRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "nested", "board.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, posts.Init(ctx))
	// Init is idempotent
	require.NoError(t, users.Init(ctx))
	require.NoError(t, posts.Init(ctx))
	return db, users, posts
}

func createUser(t *testing.T, users repository.UserRepository, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, PasswordHash: "hash-" + name}
	_, err := users.Create(context.Background(), u)
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	return u
}

func createPost(t *testing.T, posts repository.PostRepository, owner *domain.User, title, content string, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{Title: title, Content: content, UserID: owner.ID, Username: owner.Username, CreatedAt: at}
	_, err := posts.Create(context.Background(), p)
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	return p
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	_, users, _ := newTestStore(t)

	alice := createUser(t, users, "alice")

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "hash-alice", got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, users.Delete(ctx, alice.ID))
	assert.ErrorIs(t, users.Delete(ctx, alice.ID), repository.ErrNotFound)
	_, err = users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostRepositoryCreateRequiresExistingUser(t *testing.T) {
	_, _, posts := newTestStore(t)

	_, err := posts.Create(context.Background(), &domain.Post{Title: "t", Content: "c", UserID: 42, Username: "ghost"})
	assert.ErrorIs(t, err, repository.ErrForeignKey)
}

func TestPostRepositoryView(t *testing.T) {
	ctx := context.Background()
	_, users, posts := newTestStore(t)

	alice := createUser(t, users, "alice")
	p := createPost(t, posts, alice, "hello", "world", time.Now().UTC())

	for want := int64(1); want <= 3; want++ {
		viewed, err := posts.View(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, viewed.Views)
		assert.Equal(t, "hello", viewed.Title)
		assert.Equal(t, "world", viewed.Content)
		assert.Equal(t, alice.ID, viewed.UserID)
	}

	_, err := posts.View(ctx, p.ID+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stored, err := posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Views)
}

func TestPostRepositoryUpdateDelete(t *testing.T) {
	ctx := context.Background()
	_, users, posts := newTestStore(t)

	alice := createUser(t, users, "alice")
	p := createPost(t, posts, alice, "before", "body", time.Now().UTC())

	require.NoError(t, posts.Update(ctx, p.ID, "after", "new body"))
	got, err := posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, "new body", got.Content)
	assert.Equal(t, "alice", got.Username)

	assert.ErrorIs(t, posts.Update(ctx, p.ID+1, "x", "y"), repository.ErrNotFound)

	require.NoError(t, posts.Delete(ctx, p.ID))
	assert.ErrorIs(t, posts.Delete(ctx, p.ID), repository.ErrNotFound)
	_, err = posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUserCascadesPosts(t *testing.T) {
	ctx := context.Background()
	_, users, posts := newTestStore(t)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	now := time.Now().UTC()
	createPost(t, posts, alice, "a1", "x", now)
	createPost(t, posts, alice, "a2", "x", now.Add(time.Second))
	kept := createPost(t, posts, bob, "b1", "x", now.Add(2*time.Second))

	n, err := posts.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, users.Delete(ctx, alice.ID))

	n, err = posts.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := posts.Search(ctx, domain.PostQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestPostRepositorySearch(t *testing.T) {
	ctx := context.Background()
	_, users, posts := newTestStore(t)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "Bobby")
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	p1 := createPost(t, posts, alice, "Foo fighters", "about music", base)
	p2 := createPost(t, posts, alice, "cooking", "a FOOd blog", base.Add(time.Minute))
	p3 := createPost(t, posts, bob, "100% sure", "under_score", base.Add(2*time.Minute))
	p4 := createPost(t, posts, bob, "plain", "nothing here", base.Add(3*time.Minute))

	ids := func(list []domain.PostSummary) []int64 {
		out := make([]int64, len(list))
		for i := range list {
			out[i] = list[i].ID
		}
		return out
	}

	tests := []struct {
		name  string
		query domain.PostQuery
		want  []int64
	}{
		{"empty text returns all newest first", domain.PostQuery{}, []int64{p4.ID, p3.ID, p2.ID, p1.ID}},
		{"title only", domain.PostQuery{Text: "foo", Scope: domain.SearchTitle}, []int64{p1.ID}},
		{"content only", domain.PostQuery{Text: "foo", Scope: domain.SearchContent}, []int64{p2.ID}},
		{"title or content", domain.PostQuery{Text: "foo", Scope: domain.SearchTitleContent}, []int64{p2.ID, p1.ID}},
		{"unknown scope behaves as title or content", domain.PostQuery{Text: "foo", Scope: "bogus"}, []int64{p2.ID, p1.ID}},
		{"username", domain.PostQuery{Text: "bob", Scope: domain.SearchUsername}, []int64{p4.ID, p3.ID}},
		{"percent is literal", domain.PostQuery{Text: "0%", Scope: domain.SearchTitle}, []int64{p3.ID}},
		{"underscore is literal", domain.PostQuery{Text: "r_s", Scope: domain.SearchContent}, []int64{p3.ID}},
		{"no match", domain.PostQuery{Text: "zzz", Scope: domain.SearchTitleContent}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := posts.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	list, err := posts.Search(ctx, domain.PostQuery{Text: "plain", Scope: domain.SearchTitle})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bobby", list[0].Username)
	assert.True(t, list[0].CreatedAt.Equal(base.Add(3*time.Minute)))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}
