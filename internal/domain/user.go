package domain

import "time"

// User represents a registered member of the board.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password"`
	CreatedAt    time.Time `db:"created_at"`
}
