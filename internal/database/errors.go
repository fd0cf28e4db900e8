package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

// IsConflict reports whether err is a unique-constraint violation. Postgres
// reports SQLSTATE 23505; the sqlite driver used in tests only exposes the
// violation through its message text.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
