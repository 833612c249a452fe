package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a request fails field validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate is returned when a unique name or phone number is already taken.
	ErrDuplicate = errors.New("duplicate")

	// ErrInsufficientStock is returned under the strict stock policy when a
	// decrement would leave a balance below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnknownReport is returned for a report type outside ReportKinds.
	ErrUnknownReport = errors.New("unknown report type")
)

// PostgreSQL SQLSTATE codes mapped onto domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// notFoundf wraps err as ErrNotFound when it is pgx.ErrNoRows.
func notFoundf(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// classifyWriteError maps constraint violations raised by INSERT/UPDATE/DELETE
// onto the domain sentinels; other errors are wrapped unchanged.
func classifyWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicate, pgErr.Detail)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: referenced record %w: %s", op, ErrNotFound, pgErr.Detail)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: violates %s", op, ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
