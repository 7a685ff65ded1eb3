package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/search"
)

type failingIndex struct{}

func (failingIndex) Upsert(context.Context, search.Document) error { return nil }
func (failingIndex) Delete(context.Context, uint) error            { return nil }
func (failingIndex) Search(context.Context, string, int) ([]uint, error) {
	return nil, errors.New("index offline")
}

func statusNames(items []domain.QuoteView) map[string]int {
	out := map[string]int{}
	for _, v := range items {
		out[v.Quote.Status.Name]++
	}
	return out
}

func TestList_NonAdminSeesOnlyPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	bob := f.user(t, "bob", false)
	f.quote(t, admin, "A", "one", domain.StatusPublished)
	f.quote(t, admin, "A", "two", domain.StatusPendingReview)
	f.quote(t, admin, "A", "three", domain.StatusSpam)

	for _, c := range []Caller{{}, bob} {
		page, err := f.feedS.List(ctx, c, ListParams{})
		if err != nil {
			t.Fatalf("List(%s): %v", c.Role(), err)
		}
		if page.Total != 1 || statusNames(page.Items)[domain.StatusPublished] != 1 {
			t.Fatalf("List(%s) = total %d, statuses %v", c.Role(), page.Total, statusNames(page.Items))
		}
	}

	// Explicitly asking for published is allowed, anything else is not.
	if _, err := f.feedS.List(ctx, bob, ListParams{Status: domain.StatusPublished}); err != nil {
		t.Fatalf("contributor status=published: %v", err)
	}
	if _, err := f.feedS.List(ctx, bob, ListParams{Status: domain.StatusSpam}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("contributor status=spam: %v", err)
	}

	all, err := f.feedS.List(ctx, admin, ListParams{})
	if err != nil || all.Total != 3 {
		t.Fatalf("admin list: total=%v err=%v", all, err)
	}
	spam, err := f.feedS.List(ctx, admin, ListParams{Status: domain.StatusSpam})
	if err != nil || spam.Total != 1 || spam.Items[0].Quote.Quotation != "three" {
		t.Fatalf("admin status=spam: %+v err=%v", spam, err)
	}
	if _, err := f.feedS.List(ctx, admin, ListParams{Status: "archived"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown status: %v", err)
	}
}

func TestList_LikesFilterAndAnnotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	bob := f.user(t, "bob", false)
	carol := f.user(t, "carol", false)
	liked := f.quote(t, admin, "A", "liked", domain.StatusPublished)
	f.quote(t, admin, "A", "ignored", domain.StatusPublished)

	for _, c := range []Caller{bob, carol} {
		if _, err := f.likes.Like(ctx, c, liked.Quote.ID); err != nil {
			t.Fatalf("Like: %v", err)
		}
	}

	gt1, err := f.feedS.List(ctx, bob, ListParams{Likes: "gt1"})
	if err != nil || gt1.Total != 1 || gt1.Items[0].Quote.ID != liked.Quote.ID || !gt1.Items[0].IsLiked {
		t.Fatalf("likes=gt1: %+v err=%v", gt1, err)
	}
	et0, err := f.feedS.List(ctx, bob, ListParams{Likes: "et0"})
	if err != nil || et0.Total != 1 || et0.Items[0].Quote.Quotation != "ignored" || et0.Items[0].IsLiked {
		t.Fatalf("likes=et0: %+v err=%v", et0, err)
	}
	if _, err := f.feedS.List(ctx, bob, ListParams{Likes: "gte1"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad likes filter: %v", err)
	}

	anon, err := f.feedS.List(ctx, Caller{}, ListParams{})
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	for _, v := range anon.Items {
		if v.IsLiked {
			t.Fatalf("anonymous caller sees is_liked on %d", v.Quote.ID)
		}
	}
}

func TestList_PaginationContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	for _, text := range []string{"a", "b", "c"} {
		f.quote(t, admin, "A", text, domain.StatusPublished)
	}

	p, err := f.feedS.List(ctx, Caller{}, ListParams{Page: 1, PerPage: 2})
	if err != nil || len(p.Items) != 2 || !p.HasNext() || p.HasPrev() {
		t.Fatalf("page 1: %+v err=%v", p, err)
	}
	// newest first
	if p.Items[0].Quote.Quotation != "c" {
		t.Fatalf("first item = %q, want c", p.Items[0].Quote.Quotation)
	}

	beyond, err := f.feedS.List(ctx, Caller{}, ListParams{Page: 9, PerPage: 2})
	if err != nil {
		t.Fatalf("page beyond end: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 3 {
		t.Fatalf("page beyond end: items=%d total=%d", len(beyond.Items), beyond.Total)
	}

	for _, bad := range []ListParams{{Page: -1}, {PerPage: -5}, {PerPage: 101}} {
		if _, err := f.feedS.List(ctx, Caller{}, bad); !errors.Is(err, ErrInvalidPage) {
			t.Fatalf("List(%+v) err = %v, want ErrInvalidPage", bad, err)
		}
	}
}

func TestPagination_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	q := f.quote(t, admin, "Seneca", "luck is preparation", domain.StatusPublished)
	if _, err := f.likes.Like(ctx, admin, q.Quote.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}

	const huge = 1 << 62
	check := func(name string, p *domain.Page[domain.QuoteView], err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(p.Items) != 0 || p.Items == nil || p.Total != 1 || p.HasNext() || !p.HasPrev() {
			t.Fatalf("%s: items=%d total=%d next=%v prev=%v", name, len(p.Items), p.Total, p.HasNext(), p.HasPrev())
		}
	}

	p, err := f.feedS.List(ctx, Caller{}, ListParams{Page: huge, PerPage: 4})
	check("List", p, err)
	p, err = f.feedS.Search(ctx, Caller{}, "luck", huge, 4)
	check("Search", p, err)
	p, err = f.feedS.LikedBy(ctx, admin, huge, 4)
	check("LikedBy", p, err)
}

func TestSearch_PublishedOnlyInRelevanceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	best := f.quote(t, admin, "Seneca", "luck is preparation", domain.StatusPublished)
	worse := f.quote(t, admin, "Anon", "luck happens when preparation meets opportunity", domain.StatusPublished)
	f.quote(t, admin, "Anon", "luck is preparation indeed", domain.StatusPendingReview)

	page, err := f.feedS.Search(ctx, admin, "luck preparation", 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("search total=%d items=%d, want 2", page.Total, len(page.Items))
	}
	if page.Items[0].Quote.ID != best.Quote.ID || page.Items[1].Quote.ID != worse.Quote.ID {
		t.Fatalf("order = [%d %d], want [%d %d]", page.Items[0].Quote.ID, page.Items[1].Quote.ID, best.Quote.ID, worse.Quote.ID)
	}

	if _, err := f.feedS.Search(ctx, Caller{}, "   ", 1, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("blank query: %v", err)
	}
	miss, err := f.feedS.Search(ctx, Caller{}, "zebra", 1, 10)
	if err != nil || miss.Total != 0 || len(miss.Items) != 0 {
		t.Fatalf("miss: %+v err=%v", miss, err)
	}
}

func TestSearch_IndexFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin", true)
	f.quote(t, admin, "A", "anything", domain.StatusPublished)
	f.feedS.Index = failingIndex{}

	page, err := f.feedS.Search(context.Background(), Caller{}, "anything", 1, 10)
	if err != nil {
		t.Fatalf("Search with failing index: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 || page.Items == nil {
		t.Fatalf("degraded search = %+v", page)
	}
}

func TestRandom_GetAndLikedBy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	bob := f.user(t, "bob", false)

	if _, err := f.feedS.Random(ctx, Caller{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Random on empty store: %v", err)
	}

	pub := f.quote(t, admin, "A", "published", domain.StatusPublished)
	pending := f.quote(t, admin, "A", "pending", domain.StatusPendingReview)

	for i := 0; i < 5; i++ {
		v, err := f.feedS.Random(ctx, Caller{})
		if err != nil || v.Quote.ID != pub.Quote.ID {
			t.Fatalf("Random = %+v err=%v", v, err)
		}
	}

	if _, err := f.feedS.Get(ctx, bob, pending.Quote.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get invisible: %v", err)
	}
	if v, err := f.feedS.Get(ctx, admin, pending.Quote.ID); err != nil || v.Quote.ID != pending.Quote.ID {
		t.Fatalf("admin Get pending: %+v err=%v", v, err)
	}

	if _, err := f.likes.Like(ctx, admin, pub.Quote.ID); err != nil {
		t.Fatalf("Like pub: %v", err)
	}
	if _, err := f.likes.Like(ctx, admin, pending.Quote.ID); err != nil {
		t.Fatalf("Like pending: %v", err)
	}
	liked, err := f.feedS.LikedBy(ctx, admin, 1, 10)
	if err != nil || liked.Total != 2 {
		t.Fatalf("admin LikedBy: %+v err=%v", liked, err)
	}
	// most recently liked first
	if liked.Items[0].Quote.ID != pending.Quote.ID || !liked.Items[0].IsLiked {
		t.Fatalf("LikedBy order: first=%d", liked.Items[0].Quote.ID)
	}

	if _, err := f.likes.Like(ctx, bob, pub.Quote.ID); err != nil {
		t.Fatalf("bob Like: %v", err)
	}
	if err := f.quotes.Delete(ctx, admin, pub.Quote.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	bobs, err := f.feedS.LikedBy(ctx, bob, 1, 10)
	if err != nil || bobs.Total != 0 {
		t.Fatalf("LikedBy after delete: %+v err=%v", bobs, err)
	}
	if _, err := f.feedS.LikedBy(ctx, Caller{}, 1, 10); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous LikedBy: %v", err)
	}
}

func TestListVersion_ChangesOnWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)

	n0, v0, err := f.feedS.ListVersion(ctx, Caller{})
	if err != nil || n0 != 0 || v0 != "" {
		t.Fatalf("empty version: n=%d v=%q err=%v", n0, v0, err)
	}
	f.quote(t, admin, "A", "x", domain.StatusPublished)
	n1, v1, err := f.feedS.ListVersion(ctx, Caller{})
	if err != nil || n1 != 1 || v1 == "" {
		t.Fatalf("after create: n=%d v=%q err=%v", n1, v1, err)
	}
	f.quote(t, admin, "A", "hidden", domain.StatusSpam)
	if n, _, _ := f.feedS.ListVersion(ctx, Caller{}); n != 1 {
		t.Fatalf("anonymous version counts hidden quotes: n=%d", n)
	}
	if n, _, _ := f.feedS.ListVersion(ctx, admin); n != 2 {
		t.Fatalf("admin version n=%d, want 2", n)
	}
}
