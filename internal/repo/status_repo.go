package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// ListStatuses returns every moderation status ordered by id.
func ListStatuses(ctx context.Context, db *gorm.DB) ([]domain.QuoteStatus, error) {
	out := []domain.QuoteStatus{}
	err := db.WithContext(ctx).Order("id").Find(&out).Error
	return out, TranslateError(err)
}

// GetStatusByName fetches a status by its unique name.
func GetStatusByName(ctx context.Context, db *gorm.DB, name string) (*domain.QuoteStatus, error) {
	var st domain.QuoteStatus
	if err := db.WithContext(ctx).Where("name = ?", name).First(&st).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &st, nil
}

// DeleteStatus removes status id. A status still referenced by a quote is
// refused with ErrForeignKey.
func DeleteStatus(ctx context.Context, db *gorm.DB, id uint) error {
	var inUse int64
	if err := db.WithContext(ctx).Model(&domain.Quote{}).Where("status_id = ?", id).Count(&inUse).Error; err != nil {
		return TranslateError(err)
	}
	if inUse > 0 {
		return ErrForeignKey
	}
	res := db.WithContext(ctx).Delete(&domain.QuoteStatus{}, id)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
