// Package domain defines the persistence models for users, quotes, moderation
// statuses, and likes. These types are mapped with GORM and form the core data
// layer of the quotes application.
package domain

import "time"

// Seeded moderation status names. The set is data-driven: these rows are
// inserted at startup, and further statuses may be added without code changes.
const (
	StatusPendingReview = "pending_review"
	StatusPublished     = "published"
	StatusSpam          = "spam"
)

// User is an identity created lazily on the first verified login.
//
// Fields:
//   - IdentityID: subject id issued by the identity provider (unique, immutable).
//   - IsAdmin: set at first login from the configured admin list or out-of-band.
type User struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	IdentityID string    `json:"-"           gorm:"type:varchar(128);not null;uniqueIndex:ux_users_identity"`
	Email      string    `json:"-"           gorm:"type:varchar(255);not null;default:''"`
	Name       string    `json:"name"        gorm:"type:varchar(255);not null;default:'';index"`
	PictureURL string    `json:"picture_url" gorm:"type:varchar(2048);not null;default:''"`
	IsAdmin    bool      `json:"is_admin"    gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// QuoteStatus is one moderation state a quote can be in.
type QuoteStatus struct {
	ID          uint   `json:"id"           gorm:"primaryKey"`
	Name        string `json:"name"         gorm:"type:varchar(25);not null;uniqueIndex:ux_quote_statuses_name"`
	DisplayName string `json:"display_name" gorm:"type:varchar(50);not null"`
}

// TableName returns the database table name for QuoteStatus.
func (QuoteStatus) TableName() string { return "quote_statuses" }

// DefaultStatuses are the rows seeded at startup.
func DefaultStatuses() []QuoteStatus {
	return []QuoteStatus{
		{Name: StatusPendingReview, DisplayName: "Pending Review"},
		{Name: StatusPublished, DisplayName: "Published"},
		{Name: StatusSpam, DisplayName: "Spam"},
	}
}

// Quote is a contributed quotation.
//
// Fields:
//   - Author + Quotation: unique together (duplicate submissions are rejected).
//   - Slug: URL-safe form of Quotation, regenerated only when Quotation changes.
//   - TotalLikes: denormalized count of Like rows; never negative.
//   - StatusID: moderation state; statuses in use cannot be deleted (RESTRICT).
//   - ContributorID: submitting user.
type Quote struct {
	ID            uint      `json:"id"            gorm:"primaryKey"`
	Author        string    `json:"author"        gorm:"type:varchar(100);not null;uniqueIndex:ux_quotes_author_quotation,priority:1"`
	Quotation     string    `json:"quotation"     gorm:"type:varchar(200);not null;uniqueIndex:ux_quotes_author_quotation,priority:2"`
	Source        string    `json:"source"        gorm:"type:varchar(2048);not null;default:''"`
	Slug          string    `json:"slug"          gorm:"type:varchar(255);not null;index"`
	TotalLikes    int64     `json:"total_likes"   gorm:"not null;default:0;check:total_likes >= 0"`
	StatusID      uint      `json:"-"             gorm:"not null;index"`
	ContributorID uint      `json:"-"             gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"    gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Status is the moderation state. Deleting a status still referenced
	// by a quote is refused by the database.
	Status QuoteStatus `json:"-" gorm:"foreignKey:StatusID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	// Contributor is the submitting user.
	Contributor User `json:"-" gorm:"foreignKey:ContributorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Quote.
func (Quote) TableName() string { return "quotes" }

// Like records that a user liked a quote. The composite primary key makes a
// (user, quote) pair appear at most once. Likes are cascade-deleted with
// their quote or user.
type Like struct {
	UserID    uint      `json:"user_id"    gorm:"primaryKey;autoIncrement:false"`
	QuoteID   uint      `json:"quote_id"   gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Quote Quote `json:"-" gorm:"foreignKey:QuoteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "likes" }
