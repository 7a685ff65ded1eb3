// Package services – LikeService
//
// This file implements the like ledger: the (user, quote) like relation and
// the denormalized Quote.total_likes counter. Each like/unlike inserts or
// deletes the relation row and adjusts the counter in the same transaction,
// so concurrent likers of one quote serialize in the store and the counter
// always equals the number of like rows. A duplicate like or a missing like
// is reported as ErrAlreadyLiked / ErrNotLiked and changes nothing.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/metrics"
	"github.com/tbourn/go-quotes-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LikeService manages likes.
type LikeService struct {
	DB      *gorm.DB
	Status  *StatusService
	Metrics *metrics.Recorder
}

// NewLikeService constructs a LikeService.
func NewLikeService(db *gorm.DB, st *StatusService, m *metrics.Recorder) *LikeService {
	return &LikeService{DB: db, Status: st, Metrics: m}
}

// Like records that caller likes quoteID and returns the updated quote.
//
// When the caller already likes the quote, the current quote is returned
// together with ErrAlreadyLiked so handlers can answer with the quote.
func (s *LikeService) Like(ctx context.Context, caller Caller, quoteID uint) (*domain.QuoteView, error) {
	ctx, span := otel.Tracer("services/LikeService").Start(ctx, "Like",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(caller.UserID)),
			attribute.Int64("quote.id", int64(quoteID)),
		),
	)
	defer span.End()

	if err := Authorize(caller, ActLike); err != nil {
		return nil, err
	}

	var view *domain.QuoteView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.visibleQuote(ctx, tx, caller, quoteID)
		if err != nil {
			return err
		}
		if _, err := repo.InsertLike(ctx, tx, caller.UserID, quoteID); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				view = &domain.QuoteView{Quote: *q, IsLiked: true}
				return ErrAlreadyLiked
			}
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		if err := repo.IncrementLikes(ctx, tx, quoteID); err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		fresh, err := repo.GetQuote(ctx, tx, quoteID)
		if err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		view = &domain.QuoteView{Quote: *fresh, IsLiked: true}
		return nil
	})

	switch {
	case err == nil:
		s.Metrics.Like(metrics.LikeLiked)
		return view, nil
	case errors.Is(err, ErrAlreadyLiked):
		s.Metrics.Like(metrics.LikeAlreadyLiked)
		return view, err
	default:
		span.RecordError(err)
		return nil, err
	}
}

// Unlike removes caller's like of quoteID and returns the updated quote.
//
// When the caller does not like the quote, the current quote is returned
// together with ErrNotLiked.
func (s *LikeService) Unlike(ctx context.Context, caller Caller, quoteID uint) (*domain.QuoteView, error) {
	ctx, span := otel.Tracer("services/LikeService").Start(ctx, "Unlike",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(caller.UserID)),
			attribute.Int64("quote.id", int64(quoteID)),
		),
	)
	defer span.End()

	if err := Authorize(caller, ActLike); err != nil {
		return nil, err
	}

	var view *domain.QuoteView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.visibleQuote(ctx, tx, caller, quoteID)
		if err != nil {
			return err
		}
		removed, err := repo.DeleteLike(ctx, tx, caller.UserID, quoteID)
		if err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		if !removed {
			view = &domain.QuoteView{Quote: *q, IsLiked: false}
			return ErrNotLiked
		}
		changed, err := repo.DecrementLikes(ctx, tx, quoteID)
		if err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		if !changed {
			// The counter would go negative; refuse and roll the delete back.
			return errors.Join(ErrConstraintViolation, errors.New("like counter already at zero"))
		}
		fresh, err := repo.GetQuote(ctx, tx, quoteID)
		if err != nil {
			return translateRepoErr(err, ErrQuoteNotFound)
		}
		view = &domain.QuoteView{Quote: *fresh, IsLiked: false}
		return nil
	})

	switch {
	case err == nil:
		s.Metrics.Like(metrics.LikeUnliked)
		return view, nil
	case errors.Is(err, ErrNotLiked):
		s.Metrics.Like(metrics.LikeNotLiked)
		return view, err
	default:
		span.RecordError(err)
		return nil, err
	}
}

// IsLiked reports whether caller likes quoteID. Anonymous callers like
// nothing.
func (s *LikeService) IsLiked(ctx context.Context, caller Caller, quoteID uint) (bool, error) {
	if !caller.Authenticated() {
		return false, nil
	}
	return repo.IsLiked(ctx, s.DB, caller.UserID, quoteID)
}

func (s *LikeService) visibleQuote(ctx context.Context, tx *gorm.DB, caller Caller, quoteID uint) (*domain.Quote, error) {
	q, err := repo.GetQuote(ctx, tx, quoteID)
	if err != nil {
		return nil, translateRepoErr(err, ErrQuoteNotFound)
	}
	if !s.Status.Visible(caller, q) {
		return nil, ErrQuoteNotFound
	}
	return q, nil
}
