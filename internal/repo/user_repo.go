package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// CreateUser inserts u. Returns ErrDuplicate when the identity id is taken.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return TranslateError(db.WithContext(ctx).Create(u).Error)
}

// GetUser fetches a user by primary key.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &u, nil
}

// GetUserByIdentity fetches a user by identity provider subject id.
func GetUserByIdentity(ctx context.Context, db *gorm.DB, identityID string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("identity_id = ?", identityID).First(&u).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &u, nil
}

// UpdateUserFields applies a partial update to user id.
func UpdateUserFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FirstAdmin returns the admin with the lowest id.
func FirstAdmin(ctx context.Context, db *gorm.DB) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("is_admin = ?", true).Order("id").First(&u).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &u, nil
}
