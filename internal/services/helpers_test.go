package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/config"
	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/metrics"
	"github.com/tbourn/go-quotes-backend/internal/repo"
	"github.com/tbourn/go-quotes-backend/internal/search"
)

var testQuotesCfg = config.QuotesConfig{
	PublishedStatus:    domain.StatusPublished,
	DefaultStatus:      domain.StatusPendingReview,
	AdminDefaultStatus: domain.StatusPublished,
	PerPage:            10,
	MaxPerPage:         100,
	SearchMaxResults:   1000,
}

// fixture wires every service against one SQLite file database.
type fixture struct {
	db     *gorm.DB
	feed   *repo.ChangeFeed
	index  *search.MemoryIndex
	status *StatusService
	likes  *LikeService
	feedS  *FeedService
	quotes *QuoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := repo.SeedStatuses(context.Background(), db); err != nil {
		t.Fatalf("SeedStatuses: %v", err)
	}

	m, err := metrics.New(nil)
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	feed := repo.NewChangeFeed()
	idx := search.NewMemoryIndex()
	feed.Subscribe(search.SyncHandler(db, idx))

	st := NewStatusService(db, testQuotesCfg)
	return &fixture{
		db:     db,
		feed:   feed,
		index:  idx,
		status: st,
		likes:  NewLikeService(db, st, m),
		feedS:  NewFeedService(db, idx, st, m, testQuotesCfg),
		quotes: NewQuoteService(db, feed, st, m, time.Hour),
	}
}

func (f *fixture) user(t *testing.T, name string, admin bool) Caller {
	t.Helper()
	u := &domain.User{IdentityID: "sub-" + name, Name: name, IsAdmin: admin}
	if err := repo.CreateUser(context.Background(), f.db, u); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return Caller{UserID: u.ID, Admin: admin}
}

// quote creates a quote as admin in the given status.
func (f *fixture) quote(t *testing.T, admin Caller, author, text, status string) *domain.QuoteView {
	t.Helper()
	v, _, err := f.quotes.Create(context.Background(), admin, CreateQuoteInput{
		Author:    author,
		Quotation: text,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", text, err)
	}
	return v
}
