// Package services – QuoteService
//
// This file implements the quote write path: creation (with the moderation
// rules for the initial status and optional idempotency keys), admin edits
// including status transitions, single and bulk deletion, and the admin-only
// contributor lookup. Every mutation runs through repo.WithTx so the search
// index hears about it only after the transaction commits.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/metrics"
	"github.com/tbourn/go-quotes-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxBulkDelete caps the number of ids in one bulk delete.
const MaxBulkDelete = 50

// IdempotencyScopeCreateQuote scopes Idempotency-Key values used on quote
// creation.
const IdempotencyScopeCreateQuote = "POST /quotes"

// CreateQuoteInput is the payload of QuoteService.Create. Status is honoured
// for admins only.
type CreateQuoteInput struct {
	Author         string
	Quotation      string
	Source         string
	Status         string
	IdempotencyKey string
}

// UpdateQuoteInput is a partial update; nil fields are left unchanged.
type UpdateQuoteInput struct {
	Author    *string
	Quotation *string
	Source    *string
	Status    *string
}

// BulkResult reports the outcome of deleting one id.
type BulkResult struct {
	ID      uint `json:"id"`
	Success bool `json:"success"`
}

// QuoteService implements quote mutations.
type QuoteService struct {
	DB      *gorm.DB
	Feed    *repo.ChangeFeed
	Status  *StatusService
	Metrics *metrics.Recorder

	// IdempotencyTTL is how long an Idempotency-Key replays the original
	// result. Zero disables idempotency records.
	IdempotencyTTL time.Duration
}

// NewQuoteService constructs a QuoteService.
func NewQuoteService(db *gorm.DB, feed *repo.ChangeFeed, st *StatusService, m *metrics.Recorder, idemTTL time.Duration) *QuoteService {
	return &QuoteService{DB: db, Feed: feed, Status: st, Metrics: m, IdempotencyTTL: idemTTL}
}

func quoteTracer() trace.Tracer { return otel.Tracer("services/QuoteService") }

// Create validates in and stores a new quote contributed by caller.
//
// Contributors' quotes always start in the default status; admins choose the
// status or get the admin default. When in.IdempotencyKey matches an earlier
// creation by the same caller, that quote is returned with replayed=true and
// nothing is written.
func (s *QuoteService) Create(ctx context.Context, caller Caller, in CreateQuoteInput) (view *domain.QuoteView, replayed bool, err error) {
	ctx, span := quoteTracer().Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("user.id", int64(caller.UserID))),
	)
	defer span.End()

	if err := Authorize(caller, ActCreateQuote); err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey != "" {
		prev, ok, err := s.replay(ctx, caller, in.IdempotencyKey)
		if err != nil {
			span.RecordError(err)
			return nil, false, err
		}
		if ok {
			return prev, true, nil
		}
	}

	author, err := cleanRequired("author", in.Author, MaxAuthorRunes)
	if err != nil {
		return nil, false, err
	}
	quotation, err := cleanRequired("quotation", in.Quotation, MaxQuotationRunes)
	if err != nil {
		return nil, false, err
	}
	source, err := cleanURL("source", in.Source)
	if err != nil {
		return nil, false, err
	}

	var created *domain.Quote
	err = repo.WithTx(ctx, s.DB, s.Feed, func(tx *gorm.DB, changes *repo.Changes) error {
		st, err := s.Status.InitialStatus(ctx, tx, caller, in.Status)
		if err != nil {
			return err
		}
		q := &domain.Quote{
			Author:        author,
			Quotation:     quotation,
			Source:        source,
			Slug:          Slugify(quotation),
			StatusID:      st.ID,
			ContributorID: caller.UserID,
		}
		if err := repo.CreateQuote(ctx, tx, q); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateQuote
			}
			return translateRepoErr(err, ErrUserNotFound)
		}
		if in.IdempotencyKey != "" && s.IdempotencyTTL > 0 {
			if _, err := repo.CreateIdempotency(ctx, tx, caller.UserID, IdempotencyScopeCreateQuote, in.IdempotencyKey, q.ID, 201, s.IdempotencyTTL); err != nil {
				return translateRepoErr(err, ErrNotFound)
			}
		}
		q.Status = *st
		created = q
		changes.Add(repo.QuoteChange{Op: repo.ChangeAdd, QuoteID: q.ID, Author: q.Author, Quotation: q.Quotation})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	s.Metrics.QuoteCreated(created.Status.Name)
	return &domain.QuoteView{Quote: *created}, false, nil
}

// replay returns the quote an earlier request with key created, if any. A
// missing record or a since-deleted quote is not a replay.
func (s *QuoteService) replay(ctx context.Context, caller Caller, key string) (*domain.QuoteView, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, caller.UserID, IdempotencyScopeCreateQuote, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	q, err := repo.GetQuote(ctx, s.DB, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	liked, err := repo.IsLiked(ctx, s.DB, caller.UserID, q.ID)
	if err != nil {
		return nil, false, err
	}
	return &domain.QuoteView{Quote: *q, IsLiked: liked}, true, nil
}

// HasReplay reports whether key would replay an earlier creation by caller.
func (s *QuoteService) HasReplay(ctx context.Context, caller Caller, key string) bool {
	_, err := repo.GetIdempotency(ctx, s.DB, caller.UserID, IdempotencyScopeCreateQuote, key, time.Now().UTC())
	return err == nil
}

// Update applies in to quote id. Admin only. The slug is regenerated only
// when the quotation changes.
func (s *QuoteService) Update(ctx context.Context, caller Caller, id uint, in UpdateQuoteInput) (*domain.QuoteView, error) {
	ctx, span := quoteTracer().Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("quote.id", int64(id))),
	)
	defer span.End()

	if err := Authorize(caller, ActUpdateQuote); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Author != nil {
		v, err := cleanRequired("author", *in.Author, MaxAuthorRunes)
		if err != nil {
			return nil, err
		}
		fields["author"] = v
	}
	if in.Quotation != nil {
		v, err := cleanRequired("quotation", *in.Quotation, MaxQuotationRunes)
		if err != nil {
			return nil, err
		}
		fields["quotation"] = v
	}
	if in.Source != nil {
		v, err := cleanURL("source", *in.Source)
		if err != nil {
			return nil, err
		}
		fields["source"] = v
	}

	var updated *domain.Quote
	err := repo.WithTx(ctx, s.DB, s.Feed, func(tx *gorm.DB, changes *repo.Changes) error {
		cur, err := repo.GetQuote(ctx, tx, id)
		if err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		if q, ok := fields["quotation"].(string); ok && q != cur.Quotation {
			fields["slug"] = Slugify(q)
		}
		if in.Status != nil {
			st, err := s.Status.Resolve(ctx, tx, *in.Status)
			if err != nil {
				return err
			}
			fields["status_id"] = st.ID
		}
		if len(fields) > 0 {
			if err := repo.UpdateQuoteFields(ctx, tx, id, fields); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return ErrDuplicateQuote
				}
				return translateRepoErr(err, ErrQuoteNotFound)
			}
		}
		if updated, err = repo.GetQuote(ctx, tx, id); err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		changes.Add(repo.QuoteChange{Op: repo.ChangeUpdate, QuoteID: id, Author: updated.Author, Quotation: updated.Quotation})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	liked, err := repo.IsLiked(ctx, s.DB, caller.UserID, id)
	if err != nil {
		return nil, err
	}
	return &domain.QuoteView{Quote: *updated, IsLiked: liked}, nil
}

// Delete removes quote id and its likes. Admin only.
func (s *QuoteService) Delete(ctx context.Context, caller Caller, id uint) error {
	ctx, span := quoteTracer().Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("quote.id", int64(id))),
	)
	defer span.End()

	if err := Authorize(caller, ActDeleteQuote); err != nil {
		return err
	}
	return s.delete(ctx, id)
}

func (s *QuoteService) delete(ctx context.Context, id uint) error {
	return repo.WithTx(ctx, s.DB, s.Feed, func(tx *gorm.DB, changes *repo.Changes) error {
		if err := repo.DeleteQuote(ctx, tx, id); err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		changes.Add(repo.QuoteChange{Op: repo.ChangeDelete, QuoteID: id})
		return nil
	})
}

// BulkDelete deletes each id in its own transaction and reports per-id
// success. Duplicate ids are reported once. Admin only.
func (s *QuoteService) BulkDelete(ctx context.Context, caller Caller, ids []uint) ([]BulkResult, error) {
	ctx, span := quoteTracer().Start(ctx, "BulkDelete",
		trace.WithAttributes(attribute.Int("ids", len(ids))),
	)
	defer span.End()

	if err := Authorize(caller, ActDeleteQuote); err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(ids))
	uniq := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return nil, invalidArg("ids must not be empty")
	}
	if len(uniq) > MaxBulkDelete {
		return nil, ErrTooManyIDs
	}

	out := make([]BulkResult, 0, len(uniq))
	for _, id := range uniq {
		err := s.delete(ctx, id)
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConstraintViolation) {
			loggerFrom(ctx).Error().Err(err).Uint("quote_id", id).Msg("bulk delete failed")
		}
		out = append(out, BulkResult{ID: id, Success: err == nil})
	}
	return out, nil
}

// Contributor returns the user who submitted quote id. Admin only.
func (s *QuoteService) Contributor(ctx context.Context, caller Caller, id uint) (*domain.User, error) {
	if err := Authorize(caller, ActViewContributor); err != nil {
		return nil, err
	}
	u, err := repo.GetContributor(ctx, s.DB, id)
	if err != nil {
		return nil, translateRepoErr(err, ErrQuoteNotFound)
	}
	return u, nil
}
