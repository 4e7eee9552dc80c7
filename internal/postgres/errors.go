package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
)

const uniqueViolation = "23505"

// Translate maps driver errors onto the apperr taxonomy.
// what names the entity for NotFound messages ("booking", "order").
func Translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", what, apperr.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", what, pgErr.ConstraintName, apperr.ErrConflict)
	}
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrValidation) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", what, apperr.ErrPersistence, err)
}

// IsUniqueViolation reports whether err is a unique violation on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// CheckID rejects ids that cannot be uuids before they reach the database,
// so malformed path params surface as NotFound instead of a cast error.
func CheckID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %w", what, apperr.ErrNotFound)
	}
	return nil
}
