// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// QuotesStats returns the number of quotes (limited to statusID when non-nil)
// and the greatest UpdatedAt among them. When there are no rows, count is 0
// and maxUpdatedAt is nil.
func QuotesStats(ctx context.Context, db *gorm.DB, statusID *uint) (count int64, maxUpdatedAt *time.Time, err error) {
	scoped := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&domain.Quote{})
		if statusID != nil {
			q = q.Where("status_id = ?", *statusID)
		}
		return q
	}

	if err = scoped().Count(&count).Error; err != nil {
		return 0, nil, TranslateError(err)
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = scoped().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, TranslateError(err)
	}
	return count, &row.UpdatedAt, nil
}
