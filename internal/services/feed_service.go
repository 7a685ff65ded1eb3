// Package services – FeedService
//
// This file implements the feed composer: the read path that turns a
// caller, paging parameters and filters into a page of quotes annotated with
// the caller's liked status. Visibility is applied here: non-admins only ever
// see published quotes. Search is delegated to the search.Index; when the
// index fails the search degrades to an empty page instead of an error.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the caller role and paging parameters.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/config"
	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/metrics"
	"github.com/tbourn/go-quotes-backend/internal/repo"
	"github.com/tbourn/go-quotes-backend/internal/search"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ListParams are the inputs of FeedService.List. Zero Page/PerPage select
// the defaults; empty filters are not applied.
type ListParams struct {
	Page        int
	PerPage     int
	Status      string
	SubmittedBy string
	Likes       string
}

// FeedService composes quote pages.
type FeedService struct {
	DB      *gorm.DB
	Index   search.Index
	Status  *StatusService
	Metrics *metrics.Recorder

	PerPage    int // default page size
	MaxPerPage int // largest accepted page size
	SearchMax  int // ids requested from the index per search
}

// NewFeedService constructs a FeedService from the feed settings.
func NewFeedService(db *gorm.DB, idx search.Index, st *StatusService, m *metrics.Recorder, cfg config.QuotesConfig) *FeedService {
	return &FeedService{
		DB:         db,
		Index:      idx,
		Status:     st,
		Metrics:    m,
		PerPage:    cfg.PerPage,
		MaxPerPage: cfg.MaxPerPage,
		SearchMax:  cfg.SearchMaxResults,
	}
}

// paging applies defaults and bounds. It returns ErrInvalidPage for
// negative values or a page size above MaxPerPage.
func (s *FeedService) paging(page, perPage int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = s.PerPage
		if perPage <= 0 {
			perPage = 10
		}
	}
	if page < 1 || perPage < 1 || (s.MaxPerPage > 0 && perPage > s.MaxPerPage) {
		return 0, 0, ErrInvalidPage
	}
	return page, perPage, nil
}

func tracer() trace.Tracer { return otel.Tracer("services/FeedService") }

// loggerFrom returns the request-scoped logger stored in ctx, or the global
// logger when there is none.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// List returns one page of quotes matching p, newest first.
//
// Non-admins are restricted to published quotes; a non-admin asking for any
// other status gets ErrForbidden. Admins see every status unless they filter.
func (s *FeedService) List(ctx context.Context, caller Caller, p ListParams) (*domain.Page[domain.QuoteView], error) {
	ctx, span := tracer().Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("caller.role", caller.Role().String()),
			attribute.Int("page", p.Page),
			attribute.Int("per_page", p.PerPage),
		),
	)
	defer span.End()

	if err := Authorize(caller, ActReadPublished); err != nil {
		return nil, err
	}
	page, perPage, err := s.paging(p.Page, p.PerPage)
	if err != nil {
		return nil, err
	}

	var f repo.QuoteFilter
	if f.Likes, err = ParseLikesFilter(p.Likes); err != nil {
		return nil, err
	}
	f.ContributorBy = strings.TrimSpace(p.SubmittedBy)

	status := strings.TrimSpace(p.Status)
	switch {
	case status == "":
		if f.StatusID, err = s.Status.VisibilityFilter(ctx, s.DB, caller); err != nil {
			return nil, err
		}
	case Authorize(caller, ActReadAnyStatus) == nil:
		st, err := s.Status.Resolve(ctx, s.DB, status)
		if err != nil {
			return nil, err
		}
		f.StatusID = &st.ID
	case status == s.Status.Published:
		pub, err := s.Status.PublishedStatus(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		f.StatusID = &pub.ID
	default:
		return nil, ErrForbidden
	}

	out := &domain.Page[domain.QuoteView]{Page: page, PerPage: perPage}
	quotes, total, err := repo.ListQuotes(ctx, s.DB, f, out.Offset(), perPage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out.Total = total
	if out.Items, err = s.annotate(ctx, caller, quotes); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns one page of published quotes matching query, in the
// relevance order of the index. Other filters do not apply to searches.
func (s *FeedService) Search(ctx context.Context, caller Caller, query string, page, perPage int) (*domain.Page[domain.QuoteView], error) {
	ctx, span := tracer().Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("caller.role", caller.Role().String()),
			attribute.Int("page", page),
			attribute.Int("per_page", perPage),
		),
	)
	defer span.End()

	if err := Authorize(caller, ActReadPublished); err != nil {
		return nil, err
	}
	page, perPage, err := s.paging(page, perPage)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidArg("query must not be blank")
	}
	out := &domain.Page[domain.QuoteView]{Items: []domain.QuoteView{}, Page: page, PerPage: perPage}

	if s.Index == nil {
		s.Metrics.Search(metrics.SearchDegraded)
		return out, nil
	}
	ids, err := s.Index.Search(ctx, query, s.SearchMax)
	if err != nil {
		span.RecordError(err)
		loggerFrom(ctx).Warn().Err(err).Msg("search index unavailable; returning empty result")
		s.Metrics.Search(metrics.SearchDegraded)
		return out, nil
	}

	pub, err := s.Status.PublishedStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	ids, err = repo.FilterQuoteIDsByStatus(ctx, s.DB, ids, pub.ID)
	if err != nil {
		return nil, err
	}
	out.Total = int64(len(ids))
	if out.Total == 0 {
		s.Metrics.Search(metrics.SearchMiss)
		return out, nil
	}
	s.Metrics.Search(metrics.SearchHit)

	start := out.Offset()
	if start >= len(ids) {
		return out, nil
	}
	window := ids[start:min(start+perPage, len(ids))]

	quotes, err := repo.GetQuotesByIDs(ctx, s.DB, window, &pub.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]domain.Quote, len(quotes))
	for _, q := range quotes {
		byID[q.ID] = q
	}
	ordered := make([]domain.Quote, 0, len(window))
	for _, id := range window {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	if out.Items, err = s.annotate(ctx, caller, ordered); err != nil {
		return nil, err
	}
	return out, nil
}

// Random returns one uniformly chosen published quote, or ErrQuoteNotFound
// when there is none.
func (s *FeedService) Random(ctx context.Context, caller Caller) (*domain.QuoteView, error) {
	ctx, span := tracer().Start(ctx, "Random")
	defer span.End()

	if err := Authorize(caller, ActReadPublished); err != nil {
		return nil, err
	}
	pub, err := s.Status.PublishedStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	q, err := repo.RandomQuote(ctx, s.DB, pub.ID)
	if err != nil {
		return nil, translateRepoErr(err, ErrQuoteNotFound)
	}
	return s.annotateOne(ctx, caller, q)
}

// LikedBy returns the caller's liked quotes, most recently liked first.
// Non-admins only see the published ones.
func (s *FeedService) LikedBy(ctx context.Context, caller Caller, page, perPage int) (*domain.Page[domain.QuoteView], error) {
	ctx, span := tracer().Start(ctx, "LikedBy",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(caller.UserID)),
			attribute.Int("page", page),
			attribute.Int("per_page", perPage),
		),
	)
	defer span.End()

	if err := Authorize(caller, ActViewOwnLikes); err != nil {
		return nil, err
	}
	page, perPage, err := s.paging(page, perPage)
	if err != nil {
		return nil, err
	}
	statusID, err := s.Status.VisibilityFilter(ctx, s.DB, caller)
	if err != nil {
		return nil, err
	}

	out := &domain.Page[domain.QuoteView]{Page: page, PerPage: perPage}
	quotes, total, err := repo.ListLikedQuotes(ctx, s.DB, caller.UserID, statusID, out.Offset(), perPage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out.Total = total
	out.Items = make([]domain.QuoteView, len(quotes))
	for i, q := range quotes {
		out.Items[i] = domain.QuoteView{Quote: q, IsLiked: true}
	}
	return out, nil
}

// Get returns quote id if caller may see it. Invisible quotes are reported
// as not found.
func (s *FeedService) Get(ctx context.Context, caller Caller, id uint) (*domain.QuoteView, error) {
	ctx, span := tracer().Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("quote.id", int64(id))),
	)
	defer span.End()

	if err := Authorize(caller, ActReadPublished); err != nil {
		return nil, err
	}
	q, err := repo.GetQuote(ctx, s.DB, id)
	if err != nil {
		return nil, translateRepoErr(err, ErrQuoteNotFound)
	}
	if !s.Status.Visible(caller, q) {
		return nil, ErrQuoteNotFound
	}
	return s.annotateOne(ctx, caller, q)
}

// ListVersion returns the inputs of the list ETag for caller: the number of
// quotes the caller can see and the latest update among them.
func (s *FeedService) ListVersion(ctx context.Context, caller Caller) (int64, string, error) {
	statusID, err := s.Status.VisibilityFilter(ctx, s.DB, caller)
	if err != nil {
		return 0, "", err
	}
	n, ts, err := repo.QuotesStats(ctx, s.DB, statusID)
	if err != nil {
		return 0, "", err
	}
	if ts == nil {
		return n, "", nil
	}
	return n, ts.UTC().Format("20060102T150405.000000000"), nil
}

func (s *FeedService) annotate(ctx context.Context, caller Caller, quotes []domain.Quote) ([]domain.QuoteView, error) {
	out := make([]domain.QuoteView, len(quotes))
	if len(quotes) == 0 {
		return out, nil
	}
	ids := make([]uint, len(quotes))
	for i, q := range quotes {
		ids[i] = q.ID
	}
	liked, err := repo.LikedSet(ctx, s.DB, caller.UserID, ids)
	if err != nil {
		return nil, err
	}
	for i, q := range quotes {
		out[i] = domain.QuoteView{Quote: q, IsLiked: liked[q.ID]}
	}
	return out, nil
}

func (s *FeedService) annotateOne(ctx context.Context, caller Caller, q *domain.Quote) (*domain.QuoteView, error) {
	views, err := s.annotate(ctx, caller, []domain.Quote{*q})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
