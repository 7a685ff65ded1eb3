// Package services – StatusService
//
// This file implements the moderation state model. Statuses are data rows
// (seeded at startup and editable out-of-band), so the service resolves them
// by name on each use instead of hard-coding ids. Any status may move to any
// other; only admins may choose or change a status. A quote is visible to a
// caller when the caller is an admin or the quote is published.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/config"
	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/repo"
)

// StatusService resolves moderation statuses and applies visibility rules.
type StatusService struct {
	DB *gorm.DB

	// Published is the status name visible to everyone.
	Published string
	// Default is the initial status of quotes created by contributors.
	Default string
	// AdminDefault is the initial status of admin-created quotes when the
	// admin does not choose one.
	AdminDefault string
}

// NewStatusService builds a StatusService from the moderation settings.
func NewStatusService(db *gorm.DB, cfg config.QuotesConfig) *StatusService {
	return &StatusService{
		DB:           db,
		Published:    cfg.PublishedStatus,
		Default:      cfg.DefaultStatus,
		AdminDefault: cfg.AdminDefaultStatus,
	}
}

// List returns every status. Admin only.
func (s *StatusService) List(ctx context.Context, caller Caller) ([]domain.QuoteStatus, error) {
	if err := Authorize(caller, ActListStatuses); err != nil {
		return nil, err
	}
	return repo.ListStatuses(ctx, s.DB)
}

// Resolve looks a status up by name. Unknown names yield ErrUnknownStatus.
func (s *StatusService) Resolve(ctx context.Context, db *gorm.DB, name string) (*domain.QuoteStatus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrUnknownStatus
	}
	if db == nil {
		db = s.DB
	}
	st, err := repo.GetStatusByName(ctx, db, name)
	if err != nil {
		return nil, translateRepoErr(err, ErrUnknownStatus)
	}
	return st, nil
}

// PublishedStatus returns the row of the published status.
func (s *StatusService) PublishedStatus(ctx context.Context, db *gorm.DB) (*domain.QuoteStatus, error) {
	return s.Resolve(ctx, db, s.Published)
}

// InitialStatus decides the status of a new quote. Contributors always get
// the default status whatever they asked for; admins get their choice, or
// AdminDefault when they made none.
func (s *StatusService) InitialStatus(ctx context.Context, db *gorm.DB, caller Caller, requested string) (*domain.QuoteStatus, error) {
	if Authorize(caller, ActChooseStatus) != nil {
		return s.Resolve(ctx, db, s.Default)
	}
	if strings.TrimSpace(requested) == "" {
		return s.Resolve(ctx, db, s.AdminDefault)
	}
	return s.Resolve(ctx, db, requested)
}

// Visible reports whether caller may see q. q.Status must be loaded.
func (s *StatusService) Visible(caller Caller, q *domain.Quote) bool {
	return caller.Role() == RoleAdmin || q.Status.Name == s.Published
}

// VisibilityFilter returns the status id reads must be restricted to for
// caller: nil for admins, the published id for everyone else.
func (s *StatusService) VisibilityFilter(ctx context.Context, db *gorm.DB, caller Caller) (*uint, error) {
	if Authorize(caller, ActReadAnyStatus) == nil {
		return nil, nil
	}
	pub, err := s.PublishedStatus(ctx, db)
	if err != nil {
		return nil, err
	}
	return &pub.ID, nil
}
