// Package repo implements the persistence gateway for users, quotes,
// moderation statuses and likes, backed by GORM. This file defines the
// driver-agnostic error vocabulary returned by every repository function.
package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique or primary key violation.
	ErrDuplicate = errors.New("duplicate")

	// ErrForeignKey indicates a reference to a missing row, or a delete
	// refused because the row is still referenced.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrCheck indicates a CHECK constraint violation.
	ErrCheck = errors.New("check constraint violation")
)

// TranslateError maps driver and GORM errors onto the repo sentinels.
// Unknown errors are returned unchanged; nil stays nil.
//
// glebarez/sqlite and pgx do not always map to gorm.ErrDuplicatedKey /
// gorm.ErrForeignKeyViolated, so the messages are inspected as well:
//   - SQLite:   "UNIQUE constraint failed", "FOREIGN KEY constraint failed", "CHECK constraint failed"
//   - Postgres: "duplicate key value violates unique constraint",
//     "violates foreign key constraint", "violates check constraint"
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrForeignKey), errors.Is(err, ErrCheck):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrCheck
	}

	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "unique constraint"),
		strings.Contains(low, "duplicate key"),
		strings.Contains(low, "primary key must be unique"):
		return ErrDuplicate
	case strings.Contains(low, "foreign key constraint"):
		return ErrForeignKey
	case strings.Contains(low, "check constraint"):
		return ErrCheck
	}
	return err
}
