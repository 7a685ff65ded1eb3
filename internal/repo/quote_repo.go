// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Quote model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can be
// called with either the root handle or a transaction. They follow the "thin
// repository" approach: no business logic, only persistence and query
// composition. Errors are passed through TranslateError, so callers only ever
// see ErrNotFound, ErrDuplicate, ErrForeignKey, ErrCheck or an unexpected
// driver error.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// LikesOp is a whitelisted comparison operator for the likes filter.
type LikesOp string

const (
	LikesGreater LikesOp = ">"
	LikesEqual   LikesOp = "="
	LikesLess    LikesOp = "<"
)

// LikesPredicate filters quotes by total_likes.
type LikesPredicate struct {
	Op    LikesOp
	Value int64
}

// QuoteFilter narrows ListQuotes. Zero values mean "no restriction".
type QuoteFilter struct {
	StatusID      *uint
	ContributorBy string // contributor display name
	Likes         *LikesPredicate
}

// ErrInvalidOperator is returned for a LikesPredicate outside the whitelist.
var ErrInvalidOperator = errors.New("invalid likes operator")

func (f QuoteFilter) apply(q *gorm.DB) (*gorm.DB, error) {
	if f.StatusID != nil {
		q = q.Where("quotes.status_id = ?", *f.StatusID)
	}
	if f.ContributorBy != "" {
		q = q.Where("quotes.contributor_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Model(&domain.User{}).Select("id").Where("name = ?", f.ContributorBy))
	}
	if f.Likes != nil {
		switch f.Likes.Op {
		case LikesGreater, LikesEqual, LikesLess:
			q = q.Where("quotes.total_likes "+string(f.Likes.Op)+" ?", f.Likes.Value)
		default:
			return nil, ErrInvalidOperator
		}
	}
	return q, nil
}

// CreateQuote inserts q. Associations are never written through this call.
func CreateQuote(ctx context.Context, db *gorm.DB, q *domain.Quote) error {
	return TranslateError(db.WithContext(ctx).Omit(clause.Associations).Create(q).Error)
}

// GetQuote fetches a quote by id with its Status preloaded.
func GetQuote(ctx context.Context, db *gorm.DB, id uint) (*domain.Quote, error) {
	var q domain.Quote
	err := db.WithContext(ctx).Preload("Status").First(&q, id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &q, nil
}

// UpdateQuoteFields applies a partial update to quote id. Keys are column
// names. Returns ErrNotFound when no row matched.
func UpdateQuoteFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuote removes a quote and its likes. Likes are deleted explicitly so
// the result does not depend on the driver enforcing ON DELETE CASCADE.
func DeleteQuote(ctx context.Context, db *gorm.DB, id uint) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("quote_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
		return TranslateError(err)
	}
	res := tx.Delete(&domain.Quote{}, id)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListQuotes returns one page of quotes matching f, newest first, along with
// the total number of matches.
func ListQuotes(ctx context.Context, db *gorm.DB, f QuoteFilter, offset, limit int) ([]domain.Quote, int64, error) {
	base, err := f.apply(db.WithContext(ctx).Model(&domain.Quote{}))
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, TranslateError(err)
	}
	out := []domain.Quote{}
	if total == 0 || int64(offset) >= total {
		return out, total, nil
	}

	err = base.Session(&gorm.Session{}).
		Preload("Status").
		Order("quotes.created_at DESC").
		Order("quotes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, total, TranslateError(err)
}

// GetQuotesByIDs returns the quotes with the given ids (any order), limited
// to statusID when non-nil.
func GetQuotesByIDs(ctx context.Context, db *gorm.DB, ids []uint, statusID *uint) ([]domain.Quote, error) {
	out := []domain.Quote{}
	if len(ids) == 0 {
		return out, nil
	}
	q := db.WithContext(ctx).Preload("Status").Where("id IN ?", ids)
	if statusID != nil {
		q = q.Where("status_id = ?", *statusID)
	}
	err := q.Find(&out).Error
	return out, TranslateError(err)
}

// FilterQuoteIDsByStatus keeps the ids whose quote has statusID, preserving
// the input order.
func FilterQuoteIDsByStatus(ctx context.Context, db *gorm.DB, ids []uint, statusID uint) ([]uint, error) {
	if len(ids) == 0 {
		return []uint{}, nil
	}
	var found []uint
	err := db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id IN ? AND status_id = ?", ids, statusID).
		Pluck("id", &found).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	keep := make(map[uint]struct{}, len(found))
	for _, id := range found {
		keep[id] = struct{}{}
	}
	out := make([]uint, 0, len(found))
	for _, id := range ids {
		if _, ok := keep[id]; ok {
			out = append(out, id)
			delete(keep, id)
		}
	}
	return out, nil
}

// RandomQuote picks one quote with statusID uniformly at random.
func RandomQuote(ctx context.Context, db *gorm.DB, statusID uint) (*domain.Quote, error) {
	var q domain.Quote
	err := db.WithContext(ctx).
		Preload("Status").
		Where("status_id = ?", statusID).
		Order("RANDOM()").
		Take(&q).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &q, nil
}

// GetContributor returns the user that submitted quote id.
func GetContributor(ctx context.Context, db *gorm.DB, quoteID uint) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Joins("JOIN quotes ON quotes.contributor_id = users.id").
		Where("quotes.id = ?", quoteID).
		Take(&u).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &u, nil
}

// CountSubmitted returns the number of quotes contributed by userID.
func CountSubmitted(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Quote{}).Where("contributor_id = ?", userID).Count(&n).Error
	return n, TranslateError(err)
}

// EachQuoteBatch streams all quotes to fn in batches of size. Used to rebuild
// the search index at startup.
func EachQuoteBatch(ctx context.Context, db *gorm.DB, size int, fn func([]domain.Quote) error) error {
	if size <= 0 {
		size = 500
	}
	var batch []domain.Quote
	res := db.WithContext(ctx).Order("id").FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	return TranslateError(res.Error)
}
