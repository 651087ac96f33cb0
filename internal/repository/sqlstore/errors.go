package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"board/internal/repository"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// classify maps a driver error onto the repository sentinel errors. It
// returns nil when the error has no sentinel counterpart.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return repository.ErrConflict
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return repository.ErrForeignKey
		}
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := strings.ToUpper(liteErr.Error())
			switch {
			case strings.Contains(msg, "UNIQUE"):
				return repository.ErrConflict
			case strings.Contains(msg, "FOREIGN KEY"):
				return repository.ErrForeignKey
			}
		}
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrConflict
		case pgForeignKeyViolation:
			return repository.ErrForeignKey
		}
	}
	return nil
}

// wrap annotates err with op and, when known, its repository sentinel so
// callers can match with errors.Is.
func wrap(op string, err error) error {
	if kind := classify(err); kind != nil {
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
