package domain

import "time"

// Post is a text post owned by a user. Username is copied from the owner
// when the post is written and is not updated afterwards.
type Post struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
	Views     int64     `db:"views"`
}

// PostSummary is the list projection of a post; it never carries content.
type PostSummary struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
	Views     int64     `db:"views"`
}

// SearchScope selects which columns a search matches against.
type SearchScope string

const (
	SearchTitleContent SearchScope = "title_content"
	SearchTitle        SearchScope = "title"
	SearchContent      SearchScope = "content"
	SearchUsername     SearchScope = "username"
)

// ParseSearchScope maps a raw query value to a scope, falling back to
// SearchTitleContent for empty or unknown values.
func ParseSearchScope(raw string) SearchScope {
	switch s := SearchScope(raw); s {
	case SearchTitle, SearchContent, SearchUsername, SearchTitleContent:
		return s
	default:
		return SearchTitleContent
	}
}

// PostQuery filters the post list. An empty Text matches every post.
type PostQuery struct {
	Text  string
	Scope SearchScope
}
