// Package services implements the business rules of the quotes service:
// the access policy, the moderation state model, the like ledger and the
// feed composer, plus the quote, user and session use cases built on them.
//
// This file centralizes the service-level error taxonomy. Every error a
// service returns for an expected case either is one of the taxonomy
// sentinels below or wraps one with %w, so handlers classify with errors.Is
// and translate to HTTP results in one place.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-quotes-backend/internal/repo"
)

// Taxonomy.
var (
	// ErrUnauthenticated indicates a missing or invalid session.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden indicates an authenticated caller that may not perform
	// the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates that the resource does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a malformed filter or body field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConstraintViolation indicates a duplicate or a dangling reference.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrAlreadyLiked is returned when the caller already likes the quote.
	ErrAlreadyLiked = errors.New("quote already liked")

	// ErrNotLiked is returned when the caller does not like the quote.
	ErrNotLiked = errors.New("quote not liked")
)

// Specific errors, each wrapping a taxonomy sentinel.
var (
	ErrQuoteNotFound      = fmt.Errorf("quote %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrDuplicateQuote     = fmt.Errorf("%w: a quote with this author and quotation already exists", ErrConstraintViolation)
	ErrUnknownStatus      = fmt.Errorf("%w: unknown status", ErrInvalidArgument)
	ErrInvalidLikesFilter = fmt.Errorf("%w: likes filter must look like gt5, et0 or lt10", ErrInvalidArgument)
	ErrInvalidPage        = fmt.Errorf("%w: page and per_page must be positive integers within limits", ErrInvalidArgument)
	ErrTooManyIDs         = fmt.Errorf("%w: too many ids", ErrInvalidArgument)
	ErrNoAdmin            = fmt.Errorf("no admin user exists: %w", ErrNotFound)
)

// invalidArg builds an ErrInvalidArgument with a field-level message.
func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// translateRepoErr maps persistence sentinels onto the taxonomy. notFound
// is returned for repo.ErrNotFound; unknown errors pass through.
func translateRepoErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return notFound
	case errors.Is(err, repo.ErrDuplicate),
		errors.Is(err, repo.ErrForeignKey),
		errors.Is(err, repo.ErrCheck):
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	default:
		return err
	}
}
