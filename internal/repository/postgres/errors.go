package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint failure, so
// duplicate users, accounts and currencies can surface as conflicts instead
// of opaque driver errors.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
