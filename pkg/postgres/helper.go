package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// codeForeignKeyViolation is SQLSTATE 23503.
const codeForeignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation (SQLSTATE 23503).
// Works with wrapped errors via errors.As.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}
	return false
}
