// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Like rows and
// the denormalized Quote.total_likes counter. Counter adjustments are meant
// to run in the same transaction as the Like row mutation.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// InsertLike records that userID liked quoteID. Returns ErrDuplicate when the
// pair exists and ErrForeignKey when the user or quote does not.
func InsertLike(ctx context.Context, db *gorm.DB, userID, quoteID uint) (*domain.Like, error) {
	lk := &domain.Like{
		UserID:    userID,
		QuoteID:   quoteID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(lk).Error; err != nil {
		return nil, TranslateError(err)
	}
	return lk, nil
}

// DeleteLike removes the (userID, quoteID) pair and reports whether a row
// was deleted.
func DeleteLike(ctx context.Context, db *gorm.DB, userID, quoteID uint) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND quote_id = ?", userID, quoteID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return false, TranslateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IncrementLikes adds one to quote id's counter. Returns ErrNotFound when the
// quote does not exist.
func IncrementLikes(ctx context.Context, db *gorm.DB, quoteID uint) error {
	res := db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ?", quoteID).
		Update("total_likes", gorm.Expr("total_likes + ?", 1))
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementLikes subtracts one from quote id's counter unless it is already
// zero. It reports whether the counter changed.
func DecrementLikes(ctx context.Context, db *gorm.DB, quoteID uint) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ? AND total_likes > 0", quoteID).
		Update("total_likes", gorm.Expr("total_likes - ?", 1))
	if res.Error != nil {
		return false, TranslateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IsLiked reports whether userID likes quoteID.
func IsLiked(ctx context.Context, db *gorm.DB, userID, quoteID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND quote_id = ?", userID, quoteID).
		Count(&n).Error
	return n > 0, TranslateError(err)
}

// LikedSet returns the subset of quoteIDs liked by userID.
func LikedSet(ctx context.Context, db *gorm.DB, userID uint, quoteIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(quoteIDs))
	if userID == 0 || len(quoteIDs) == 0 {
		return out, nil
	}
	var liked []uint
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND quote_id IN ?", userID, quoteIDs).
		Pluck("quote_id", &liked).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// ListLikedQuotes returns one page of the quotes liked by userID, most
// recently liked first, limited to statusID when non-nil.
func ListLikedQuotes(ctx context.Context, db *gorm.DB, userID uint, statusID *uint, offset, limit int) ([]domain.Quote, int64, error) {
	base := db.WithContext(ctx).Model(&domain.Quote{}).
		Joins("JOIN likes ON likes.quote_id = quotes.id AND likes.user_id = ?", userID)
	if statusID != nil {
		base = base.Where("quotes.status_id = ?", *statusID)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, TranslateError(err)
	}
	out := []domain.Quote{}
	if total == 0 || int64(offset) >= total {
		return out, total, nil
	}
	err := base.
		Preload("Status").
		Order("likes.created_at DESC").
		Order("quotes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, total, TranslateError(err)
}

// CountLikesForQuote returns the live number of Like rows for quoteID.
func CountLikesForQuote(ctx context.Context, db *gorm.DB, quoteID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).Where("quote_id = ?", quoteID).Count(&n).Error
	return n, TranslateError(err)
}

// CountLikesByUser returns the number of quotes userID has liked.
func CountLikesByUser(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).Where("user_id = ?", userID).Count(&n).Error
	return n, TranslateError(err)
}
