package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// newRepoDB opens a migrated, seeded SQLite file database under t.TempDir().
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	// Release the file handle before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := SeedStatuses(context.Background(), db); err != nil {
		t.Fatalf("SeedStatuses: %v", err)
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, name string, admin bool) *domain.User {
	t.Helper()
	u := &domain.User{IdentityID: "sub-" + name, Name: name, IsAdmin: admin}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func mustStatus(t *testing.T, db *gorm.DB, name string) *domain.QuoteStatus {
	t.Helper()
	st, err := GetStatusByName(context.Background(), db, name)
	if err != nil {
		t.Fatalf("GetStatusByName(%s): %v", name, err)
	}
	return st
}

// mustQuote inserts a quote with distinct created_at values so ordering is
// deterministic.
func mustQuote(t *testing.T, db *gorm.DB, author, text string, status *domain.QuoteStatus, by *domain.User, likes int64, age time.Duration) *domain.Quote {
	t.Helper()
	q := &domain.Quote{
		Author:        author,
		Quotation:     text,
		Slug:          fmt.Sprintf("slug-%s", text),
		TotalLikes:    likes,
		StatusID:      status.ID,
		ContributorID: by.ID,
		CreatedAt:     time.Now().UTC().Add(-age),
	}
	if err := CreateQuote(context.Background(), db, q); err != nil {
		t.Fatalf("CreateQuote(%s): %v", text, err)
	}
	return q
}
