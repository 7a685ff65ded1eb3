package repo

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ChangeOp is the kind of mutation a QuoteChange describes.
type ChangeOp string

const (
	ChangeAdd    ChangeOp = "add"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// QuoteChange is emitted after a transaction that mutated a quote commits.
// Author and Quotation are empty for deletes.
type QuoteChange struct {
	Op        ChangeOp
	QuoteID   uint
	Author    string
	Quotation string
}

// ChangeHandler consumes committed quote changes.
type ChangeHandler func(ctx context.Context, ch QuoteChange) error

// ChangeFeed fans committed quote changes out to subscribers. Publishing
// happens only after commit; a rolled back transaction emits nothing.
//
// Subscriber errors are logged and never fail the write that produced them.
type ChangeFeed struct {
	mu   sync.RWMutex
	subs []ChangeHandler
}

// NewChangeFeed returns an empty feed.
func NewChangeFeed() *ChangeFeed { return &ChangeFeed{} }

// Subscribe registers h for every subsequent publish.
func (f *ChangeFeed) Subscribe(h ChangeHandler) {
	if f == nil || h == nil {
		return
	}
	f.mu.Lock()
	f.subs = append(f.subs, h)
	f.mu.Unlock()
}

// Publish delivers changes to all subscribers in order.
func (f *ChangeFeed) Publish(ctx context.Context, changes ...QuoteChange) {
	if f == nil || len(changes) == 0 {
		return
	}
	f.mu.RLock()
	subs := make([]ChangeHandler, len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	for _, ch := range changes {
		for _, h := range subs {
			if err := h(ctx, ch); err != nil {
				log.Warn().
					Err(err).
					Str("op", string(ch.Op)).
					Uint("quote_id", ch.QuoteID).
					Msg("quote change subscriber failed")
			}
		}
	}
}

// Changes collects the quote changes made inside one transaction.
type Changes struct {
	items []QuoteChange
}

// Add records a change to publish after commit.
func (c *Changes) Add(ch QuoteChange) { c.items = append(c.items, ch) }

// Len returns the number of recorded changes.
func (c *Changes) Len() int { return len(c.items) }

// WithTx runs fn inside a transaction and publishes the changes it recorded
// once the transaction has committed. fn must use tx, never db.
// Publishes from concurrent transactions may interleave out of commit order,
// so subscribers should treat a change as "id touched" and re-read the row.
func WithTx(ctx context.Context, db *gorm.DB, feed *ChangeFeed, fn func(tx *gorm.DB, changes *Changes) error) error {
	var changes Changes
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, &changes)
	})
	if err != nil {
		return err
	}
	feed.Publish(ctx, changes.items...)
	return nil
}
