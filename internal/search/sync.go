package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/repo"
)

// SyncHandler returns a ChangeFeed subscriber that mirrors committed quote
// changes into idx.
//
// Publishing is not ordered across concurrent transactions, so the event
// payload is only a hint: the handler re-reads the quote by id and indexes
// the committed row, or removes the document when the row is gone. Reads and
// index writes are serialized, so the last handler to run always leaves the
// latest committed state in the index.
func SyncHandler(db *gorm.DB, idx Index) repo.ChangeHandler {
	var mu sync.Mutex
	return func(ctx context.Context, ch repo.QuoteChange) error {
		switch ch.Op {
		case repo.ChangeAdd, repo.ChangeUpdate, repo.ChangeDelete:
		default:
			return fmt.Errorf("search: unknown change op %q", ch.Op)
		}

		mu.Lock()
		defer mu.Unlock()

		q, err := repo.GetQuote(ctx, db, ch.QuoteID)
		if errors.Is(err, repo.ErrNotFound) {
			return idx.Delete(ctx, ch.QuoteID)
		}
		if err != nil {
			return err
		}
		return idx.Upsert(ctx, Document{ID: q.ID, Author: q.Author, Quotation: q.Quotation})
	}
}

// Reindex loads every stored quote into idx and returns how many were
// indexed. Existing entries with the same ids are replaced.
func Reindex(ctx context.Context, db *gorm.DB, idx Index) (int, error) {
	n := 0
	err := repo.EachQuoteBatch(ctx, db, 500, func(qs []domain.Quote) error {
		for _, q := range qs {
			if err := idx.Upsert(ctx, Document{ID: q.ID, Author: q.Author, Quotation: q.Quotation}); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}
