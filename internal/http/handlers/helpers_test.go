package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/auth"
	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/http/middleware"
	"github.com/tbourn/go-quotes-backend/internal/services"
)

// ---------- stub services ----------

type stubFeed struct {
	list    func(services.Caller, services.ListParams) (*domain.Page[domain.QuoteView], error)
	search  func(services.Caller, string, int, int) (*domain.Page[domain.QuoteView], error)
	random  func(services.Caller) (*domain.QuoteView, error)
	likedBy func(services.Caller, int, int) (*domain.Page[domain.QuoteView], error)
	get     func(services.Caller, uint) (*domain.QuoteView, error)
	version func(services.Caller) (int64, string, error)
}

func (s *stubFeed) List(_ context.Context, c services.Caller, p services.ListParams) (*domain.Page[domain.QuoteView], error) {
	return s.list(c, p)
}

func (s *stubFeed) Search(_ context.Context, c services.Caller, q string, page, perPage int) (*domain.Page[domain.QuoteView], error) {
	return s.search(c, q, page, perPage)
}

func (s *stubFeed) Random(_ context.Context, c services.Caller) (*domain.QuoteView, error) {
	return s.random(c)
}

func (s *stubFeed) LikedBy(_ context.Context, c services.Caller, page, perPage int) (*domain.Page[domain.QuoteView], error) {
	return s.likedBy(c, page, perPage)
}

func (s *stubFeed) Get(_ context.Context, c services.Caller, id uint) (*domain.QuoteView, error) {
	return s.get(c, id)
}

func (s *stubFeed) ListVersion(_ context.Context, c services.Caller) (int64, string, error) {
	if s.version == nil {
		return 0, "", context.Canceled
	}
	return s.version(c)
}

type stubQuotes struct {
	create      func(services.Caller, services.CreateQuoteInput) (*domain.QuoteView, bool, error)
	update      func(services.Caller, uint, services.UpdateQuoteInput) (*domain.QuoteView, error)
	del         func(services.Caller, uint) error
	bulk        func(services.Caller, []uint) ([]services.BulkResult, error)
	contributor func(services.Caller, uint) (*domain.User, error)
}

func (s *stubQuotes) Create(_ context.Context, c services.Caller, in services.CreateQuoteInput) (*domain.QuoteView, bool, error) {
	return s.create(c, in)
}

func (s *stubQuotes) Update(_ context.Context, c services.Caller, id uint, in services.UpdateQuoteInput) (*domain.QuoteView, error) {
	return s.update(c, id, in)
}

func (s *stubQuotes) Delete(_ context.Context, c services.Caller, id uint) error {
	return s.del(c, id)
}

func (s *stubQuotes) BulkDelete(_ context.Context, c services.Caller, ids []uint) ([]services.BulkResult, error) {
	return s.bulk(c, ids)
}

func (s *stubQuotes) Contributor(_ context.Context, c services.Caller, id uint) (*domain.User, error) {
	return s.contributor(c, id)
}

type stubLikes struct {
	like   func(services.Caller, uint) (*domain.QuoteView, error)
	unlike func(services.Caller, uint) (*domain.QuoteView, error)
}

func (s *stubLikes) Like(_ context.Context, c services.Caller, id uint) (*domain.QuoteView, error) {
	return s.like(c, id)
}

func (s *stubLikes) Unlike(_ context.Context, c services.Caller, id uint) (*domain.QuoteView, error) {
	return s.unlike(c, id)
}

type stubUsers struct {
	login   func(string) (*services.Session, error)
	refresh func(string) (auth.Issued, error)
	revoke  func(services.Caller) error
	me      func(services.Caller) (*domain.UserProfile, error)
	get     func(services.Caller, uint) (*domain.UserProfile, error)
	update  func(services.Caller, services.ProfileInput) (*domain.UserProfile, error)
}

func (s *stubUsers) Login(_ context.Context, tok string) (*services.Session, error) {
	return s.login(tok)
}

func (s *stubUsers) Refresh(_ context.Context, tok string) (auth.Issued, error) {
	return s.refresh(tok)
}

func (s *stubUsers) Revoke(_ context.Context, c services.Caller) error { return s.revoke(c) }

func (s *stubUsers) Me(_ context.Context, c services.Caller) (*domain.UserProfile, error) {
	return s.me(c)
}

func (s *stubUsers) Get(_ context.Context, c services.Caller, id uint) (*domain.UserProfile, error) {
	return s.get(c, id)
}

func (s *stubUsers) UpdateProfile(_ context.Context, c services.Caller, in services.ProfileInput) (*domain.UserProfile, error) {
	return s.update(c, in)
}

type stubStatuses struct {
	list func(services.Caller) ([]domain.QuoteStatus, error)
}

func (s *stubStatuses) List(_ context.Context, c services.Caller) ([]domain.QuoteStatus, error) {
	return s.list(c)
}

// ---------- router + request helpers ----------

type testEnv struct {
	r      *gin.Engine
	tokens *auth.TokenCodec
}

func newTestEnv(t *testing.T, svc Services, session SessionOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenCodec("handlers-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	h := New(svc, session)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Authenticate(tokens, middleware.AuthOptions{
		CSRFProtect: session.CSRFProtect,
		Lenient: func(c *gin.Context) bool {
			return c.FullPath() == "/v1/auth/token" || c.FullPath() == "/v1/auth/refresh"
		},
	}))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))

	v1 := r.Group("/v1")
	v1.POST("/auth/token", h.Login)
	v1.POST("/auth/refresh", h.Refresh)
	v1.POST("/auth/revoke", h.Revoke)
	v1.GET("/quotes", h.ListQuotes)
	v1.POST("/quotes", h.CreateQuote)
	v1.DELETE("/quotes", h.BulkDeleteQuotes)
	v1.GET("/quotes/random", h.RandomQuote)
	v1.GET("/quotes/:id", h.GetQuote)
	v1.PATCH("/quotes/:id", h.UpdateQuote)
	v1.DELETE("/quotes/:id", h.DeleteQuote)
	v1.GET("/quotes/:id/contributor", h.QuoteContributor)
	v1.POST("/likes", h.LikeQuote)
	v1.DELETE("/likes/:quote_id", h.UnlikeQuote)
	v1.GET("/likes", h.ListLikes)
	v1.GET("/users/me", h.Me)
	v1.PATCH("/users/me", h.UpdateMe)
	v1.GET("/users/:id", h.GetUser)
	v1.GET("/quote-statuses", h.ListStatuses)

	return &testEnv{r: r, tokens: tokens}
}

// bearer returns an Authorization header value for user uid.
func (e *testEnv) bearer(t *testing.T, uid uint, admin bool) string {
	t.Helper()
	iss, err := e.tokens.Issue(uid, admin, auth.AccessToken)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + iss.Token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func sampleView(id uint, status string) *domain.QuoteView {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.QuoteView{Quote: domain.Quote{
		ID:         id,
		Author:     "Seneca",
		Quotation:  "We suffer more in imagination than in reality.",
		Slug:       "we-suffer-more-in-imagination-than-in-reality",
		TotalLikes: 2,
		Status:     domain.QuoteStatus{Name: status},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}}
}

func pageOf(items []domain.QuoteView, p, per int, total int64) *domain.Page[domain.QuoteView] {
	return &domain.Page[domain.QuoteView]{Items: items, Page: p, PerPage: per, Total: total}
}
