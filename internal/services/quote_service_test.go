package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/repo"
)

func strPtr(s string) *string { return &s }

func TestCreate_ContributorForcedPendingReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob", false)

	v, replayed, err := f.quotes.Create(ctx, bob, CreateQuoteInput{
		Author:    " <b>Bob</b> ",
		Quotation: "Stay   hungry",
		Status:    domain.StatusPublished,
	})
	if err != nil || replayed {
		t.Fatalf("Create: replayed=%v err=%v", replayed, err)
	}
	if v.Quote.Status.Name != domain.StatusPendingReview {
		t.Fatalf("status = %q, want pending_review", v.Quote.Status.Name)
	}
	if v.Quote.Author != "Bob" || v.Quote.Quotation != "Stay hungry" || v.Quote.Slug != "stay-hungry" {
		t.Fatalf("cleaned fields = %+v", v.Quote)
	}
	if v.Quote.ContributorID != bob.UserID {
		t.Fatalf("contributor = %d, want %d", v.Quote.ContributorID, bob.UserID)
	}
	// every quote is indexed; visibility is applied when searching
	if f.index.Len() != 1 {
		t.Fatalf("index size = %d, want 1", f.index.Len())
	}
}

func TestCreate_AdminStatusChoiceAndDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)

	v, _, err := f.quotes.Create(ctx, admin, CreateQuoteInput{Author: "A", Quotation: "default"})
	if err != nil || v.Quote.Status.Name != domain.StatusPublished {
		t.Fatalf("admin default: %+v err=%v", v, err)
	}
	v, _, err = f.quotes.Create(ctx, admin, CreateQuoteInput{Author: "A", Quotation: "spam", Status: domain.StatusSpam})
	if err != nil || v.Quote.Status.Name != domain.StatusSpam {
		t.Fatalf("admin choice: %+v err=%v", v, err)
	}
	if _, _, err := f.quotes.Create(ctx, admin, CreateQuoteInput{Author: "A", Quotation: "x", Status: "nope"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown status: %v", err)
	}
}

func TestCreate_ValidationAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob", false)

	if _, _, err := f.quotes.Create(ctx, Caller{}, CreateQuoteInput{Author: "A", Quotation: "Q"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous create: %v", err)
	}
	bad := []CreateQuoteInput{
		{Author: "", Quotation: "Q"},
		{Author: "A", Quotation: "   "},
		{Author: "A", Quotation: "Q", Source: "ftp://example.com"},
	}
	for _, in := range bad {
		if _, _, err := f.quotes.Create(ctx, bob, in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Create(%+v) err = %v, want ErrInvalidArgument", in, err)
		}
	}

	if _, _, err := f.quotes.Create(ctx, bob, CreateQuoteInput{Author: "A", Quotation: "Q"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, _, err := f.quotes.Create(ctx, bob, CreateQuoteInput{Author: "A", Quotation: "Q"})
	if !errors.Is(err, ErrConstraintViolation) || !errors.Is(err, ErrDuplicateQuote) {
		t.Fatalf("duplicate create: %v", err)
	}
	if f.index.Len() != 1 {
		t.Fatalf("rolled back create reached the index: len=%d", f.index.Len())
	}
}

func TestCreate_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob", false)
	carol := f.user(t, "carol", false)

	in := CreateQuoteInput{Author: "A", Quotation: "Q", IdempotencyKey: "k-1"}
	first, replayed, err := f.quotes.Create(ctx, bob, in)
	if err != nil || replayed {
		t.Fatalf("first: replayed=%v err=%v", replayed, err)
	}
	if !f.quotes.HasReplay(ctx, bob, "k-1") {
		t.Fatalf("HasReplay = false after keyed create")
	}
	again, replayed, err := f.quotes.Create(ctx, bob, in)
	if err != nil || !replayed || again.Quote.ID != first.Quote.ID {
		t.Fatalf("replay: v=%+v replayed=%v err=%v", again, replayed, err)
	}

	// Keys are per user.
	if _, _, err := f.quotes.Create(ctx, carol, in); !errors.Is(err, ErrDuplicateQuote) {
		t.Fatalf("other user with same key: %v", err)
	}

	// A failing is_liked lookup surfaces instead of replaying is_liked=false.
	if err := f.db.Migrator().DropTable(&domain.Like{}); err != nil {
		t.Fatalf("drop likes: %v", err)
	}
	if v, replayed, err := f.quotes.Create(ctx, bob, in); err == nil || replayed || v != nil {
		t.Fatalf("replay with broken likes table: v=%+v replayed=%v err=%v", v, replayed, err)
	}
}

func TestUpdate_StatusTransitionMakesQuoteVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	bob := f.user(t, "bob", false)

	v, _, err := f.quotes.Create(ctx, admin, CreateQuoteInput{Author: "A", Quotation: "Q", Status: domain.StatusPendingReview})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if page, _ := f.feedS.List(ctx, Caller{}, ListParams{}); page.Total != 0 {
		t.Fatalf("pending quote visible to anonymous")
	}

	if _, err := f.quotes.Update(ctx, bob, v.Quote.ID, UpdateQuoteInput{Status: strPtr(domain.StatusPublished)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("contributor update: %v", err)
	}
	up, err := f.quotes.Update(ctx, admin, v.Quote.ID, UpdateQuoteInput{Status: strPtr(domain.StatusPublished)})
	if err != nil || up.Quote.Status.Name != domain.StatusPublished {
		t.Fatalf("admin publish: %+v err=%v", up, err)
	}
	page, err := f.feedS.List(ctx, Caller{}, ListParams{})
	if err != nil || page.Total != 1 || page.Items[0].Quote.ID != v.Quote.ID {
		t.Fatalf("anonymous list after publish: %+v err=%v", page, err)
	}

	// Any state may move to any other.
	for _, st := range []string{domain.StatusSpam, domain.StatusPendingReview, domain.StatusPublished} {
		if _, err := f.quotes.Update(ctx, admin, v.Quote.ID, UpdateQuoteInput{Status: strPtr(st)}); err != nil {
			t.Fatalf("transition to %s: %v", st, err)
		}
	}
	if _, err := f.quotes.Update(ctx, admin, v.Quote.ID, UpdateQuoteInput{Status: strPtr("archived")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown status: %v", err)
	}
	if _, err := f.quotes.Update(ctx, admin, 999, UpdateQuoteInput{Author: strPtr("B")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quote: %v", err)
	}
}

func TestUpdate_SlugFollowsQuotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	v := f.quote(t, admin, "A", "First words", domain.StatusPublished)

	up, err := f.quotes.Update(ctx, admin, v.Quote.ID, UpdateQuoteInput{Author: strPtr("B")})
	if err != nil || up.Quote.Slug != "first-words" || up.Quote.Author != "B" {
		t.Fatalf("author-only update: %+v err=%v", up, err)
	}
	up, err = f.quotes.Update(ctx, admin, v.Quote.ID, UpdateQuoteInput{Quotation: strPtr("Second words")})
	if err != nil || up.Quote.Slug != "second-words" {
		t.Fatalf("quotation update: %+v err=%v", up, err)
	}
	ids, _ := f.index.Search(ctx, "second", 10)
	if len(ids) != 1 || ids[0] != v.Quote.ID {
		t.Fatalf("index not updated: %v", ids)
	}
	if ids, _ := f.index.Search(ctx, "first", 10); len(ids) != 0 {
		t.Fatalf("index still has old text: %v", ids)
	}
}

func TestDelete_RemovesLikesAndIndexEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	bob := f.user(t, "bob", false)
	v := f.quote(t, admin, "A", "Doomed", domain.StatusPublished)
	if _, err := f.likes.Like(ctx, bob, v.Quote.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}

	if err := f.quotes.Delete(ctx, bob, v.Quote.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("contributor delete: %v", err)
	}
	if err := f.quotes.Delete(ctx, admin, v.Quote.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := repo.CountLikesByUser(ctx, f.db, bob.UserID); n != 0 {
		t.Fatalf("orphan likes: %d", n)
	}
	if f.index.Len() != 0 {
		t.Fatalf("index still holds deleted quote")
	}
	if err := f.quotes.Delete(ctx, admin, v.Quote.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestBulkDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	a := f.quote(t, admin, "A", "a", domain.StatusPublished)
	b := f.quote(t, admin, "A", "b", domain.StatusPublished)

	res, err := f.quotes.BulkDelete(ctx, admin, []uint{a.Quote.ID, 999, b.Quote.ID, a.Quote.ID})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	want := []BulkResult{{a.Quote.ID, true}, {999, false}, {b.Quote.ID, true}}
	if len(res) != len(want) {
		t.Fatalf("results = %+v, want %+v", res, want)
	}
	for i := range want {
		if res[i] != want[i] {
			t.Fatalf("results[%d] = %+v, want %+v", i, res[i], want[i])
		}
	}

	tooMany := make([]uint, MaxBulkDelete+1)
	for i := range tooMany {
		tooMany[i] = uint(i + 1)
	}
	if _, err := f.quotes.BulkDelete(ctx, admin, tooMany); !errors.Is(err, ErrTooManyIDs) {
		t.Fatalf("too many ids: %v", err)
	}
	if _, err := f.quotes.BulkDelete(ctx, admin, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("no ids: %v", err)
	}
	if _, err := f.quotes.BulkDelete(ctx, Caller{UserID: 42}, []uint{1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("contributor bulk delete: %v", err)
	}
}

func TestContributor_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	bob := f.user(t, "bob", false)
	v, _, err := f.quotes.Create(ctx, bob, CreateQuoteInput{Author: "A", Quotation: "mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.quotes.Contributor(ctx, bob, v.Quote.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("contributor lookup by contributor: %v", err)
	}
	u, err := f.quotes.Contributor(ctx, admin, v.Quote.ID)
	if err != nil || u.ID != bob.UserID {
		t.Fatalf("Contributor: %+v err=%v", u, err)
	}
	if _, err := f.quotes.Contributor(ctx, admin, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quote: %v", err)
	}
}
