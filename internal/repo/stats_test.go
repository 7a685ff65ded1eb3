package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

func TestQuotesStats(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	bob := mustUser(t, db, "Bob", false)
	pub := mustStatus(t, db, domain.StatusPublished)
	spam := mustStatus(t, db, domain.StatusSpam)

	n, ts, err := QuotesStats(ctx, db, &pub.ID)
	if err != nil || n != 0 || ts != nil {
		t.Fatalf("empty stats: n=%d ts=%v err=%v", n, ts, err)
	}

	a := mustQuote(t, db, "A", "a", pub, bob, 0, time.Hour)
	mustQuote(t, db, "A", "b", spam, bob, 0, 0)

	n, first, err := QuotesStats(ctx, db, &pub.ID)
	if err != nil || n != 1 || first == nil {
		t.Fatalf("stats: n=%d ts=%v err=%v", n, first, err)
	}
	if all, _, _ := QuotesStats(ctx, db, nil); all != 2 {
		t.Fatalf("unfiltered count: %d", all)
	}

	time.Sleep(10 * time.Millisecond)
	if err := IncrementLikes(ctx, db, a.ID); err != nil {
		t.Fatalf("IncrementLikes: %v", err)
	}
	_, second, _ := QuotesStats(ctx, db, &pub.ID)
	if second == nil || !second.After(*first) {
		t.Fatalf("expected max updated_at to advance after a like: %v -> %v", first, second)
	}
}
