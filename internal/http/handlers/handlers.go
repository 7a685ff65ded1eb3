// Package handlers implements the transport-thin HTTP endpoints of the quotes
// API. Handlers validate input, build the caller from the session resolved by
// middleware, call application services, and translate results (including
// the service error taxonomy) into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/auth"
	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/http/middleware"
	"github.com/tbourn/go-quotes-backend/internal/services"
	"github.com/tbourn/go-quotes-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// FeedService composes quote pages for a caller.
type FeedService interface {
	List(ctx context.Context, caller services.Caller, p services.ListParams) (*domain.Page[domain.QuoteView], error)
	Search(ctx context.Context, caller services.Caller, query string, page, perPage int) (*domain.Page[domain.QuoteView], error)
	Random(ctx context.Context, caller services.Caller) (*domain.QuoteView, error)
	LikedBy(ctx context.Context, caller services.Caller, page, perPage int) (*domain.Page[domain.QuoteView], error)
	Get(ctx context.Context, caller services.Caller, id uint) (*domain.QuoteView, error)
	// ListVersion returns the inputs of the list ETag.
	ListVersion(ctx context.Context, caller services.Caller) (int64, string, error)
}

// QuoteService mutates quotes.
type QuoteService interface {
	Create(ctx context.Context, caller services.Caller, in services.CreateQuoteInput) (*domain.QuoteView, bool, error)
	Update(ctx context.Context, caller services.Caller, id uint, in services.UpdateQuoteInput) (*domain.QuoteView, error)
	Delete(ctx context.Context, caller services.Caller, id uint) error
	BulkDelete(ctx context.Context, caller services.Caller, ids []uint) ([]services.BulkResult, error)
	Contributor(ctx context.Context, caller services.Caller, id uint) (*domain.User, error)
}

// LikeService maintains the like ledger.
type LikeService interface {
	Like(ctx context.Context, caller services.Caller, quoteID uint) (*domain.QuoteView, error)
	Unlike(ctx context.Context, caller services.Caller, quoteID uint) (*domain.QuoteView, error)
}

// UserService manages sessions and profiles.
type UserService interface {
	Login(ctx context.Context, idToken string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Issued, error)
	Revoke(ctx context.Context, caller services.Caller) error
	Me(ctx context.Context, caller services.Caller) (*domain.UserProfile, error)
	Get(ctx context.Context, caller services.Caller, id uint) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, caller services.Caller, in services.ProfileInput) (*domain.UserProfile, error)
}

// StatusService lists moderation statuses.
type StatusService interface {
	List(ctx context.Context, caller services.Caller) ([]domain.QuoteStatus, error)
}

//
// Handler wiring
//

// Services groups the application services the handlers depend on.
type Services struct {
	Feed     FeedService
	Quotes   QuoteService
	Likes    LikeService
	Users    UserService
	Statuses StatusService
}

// SessionOptions controls how session cookies are written.
type SessionOptions struct {
	CookieSecure bool
	CSRFProtect  bool
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	svc     Services
	session SessionOptions
}

// New constructs Handlers bound to the given services. It also registers the
// custom binding validators.
func New(svc Services, session SessionOptions) *Handlers {
	registerValidators()
	return &Handlers{svc: svc, session: session}
}

// callerFrom builds the service caller from the session middleware output.
func callerFrom(c *gin.Context) services.Caller {
	uid, _ := middleware.UserID(c)
	return services.Caller{UserID: uid, Admin: middleware.IsAdmin(c)}
}

//
// DTOs
//

// QuoteResponse is the public shape of a quote.
type QuoteResponse struct {
	ID         uint      `json:"id" example:"7"`
	Author     string    `json:"author" example:"Seneca"`
	Quotation  string    `json:"quotation" example:"Luck is what happens when preparation meets opportunity."`
	Source     string    `json:"source" example:"https://en.wikiquote.org/wiki/Seneca_the_Younger"`
	TotalLikes int64     `json:"total_likes" example:"3"`
	IsLiked    bool      `json:"is_liked" example:"false"`
	Status     string    `json:"status" example:"published"`
	Slug       string    `json:"slug" example:"luck-is-what-happens-when-preparation-meets-opportunity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newQuoteResponse(v domain.QuoteView) QuoteResponse {
	q := v.Quote
	return QuoteResponse{
		ID:         q.ID,
		Author:     q.Author,
		Quotation:  q.Quotation,
		Source:     q.Source,
		TotalLikes: q.TotalLikes,
		IsLiked:    v.IsLiked,
		Status:     q.Status.Name,
		Slug:       q.Slug,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

// UserResponse is the public shape of a user profile.
type UserResponse struct {
	ID             uint   `json:"id" example:"3"`
	Name           string `json:"name" example:"Ada"`
	PictureURL     string `json:"picture_url" example:"https://example.com/ada.png"`
	IsAdmin        bool   `json:"is_admin" example:"false"`
	TotalLikes     int64  `json:"total_likes" example:"12"`
	TotalSubmitted int64  `json:"total_submitted" example:"2"`
}

func newUserResponse(p *domain.UserProfile) UserResponse {
	return UserResponse{
		ID:             p.User.ID,
		Name:           p.User.Name,
		PictureURL:     p.User.PictureURL,
		IsAdmin:        p.User.IsAdmin,
		TotalLikes:     p.TotalLikes,
		TotalSubmitted: p.TotalSubmitted,
	}
}

// ContributorResponse identifies the submitter of a quote.
type ContributorResponse struct {
	ID         uint   `json:"id" example:"3"`
	Name       string `json:"name" example:"Ada"`
	PictureURL string `json:"picture_url" example:"https://example.com/ada.png"`
	IsAdmin    bool   `json:"is_admin" example:"false"`
}

//
// Helpers
//

// queryPositive parses an optional positive integer query parameter. Absent
// yields 0 (service default); anything else that is not >= 1 is rejected.
func queryPositive(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	n, err := utils.AtoiStrict(raw, 0)
	if err != nil || (raw != "" && n < 1) {
		return 0, services.ErrInvalidPage
	}
	return n, nil
}

// pageParams reads page and per_page.
func pageParams(c *gin.Context) (page, perPage int, err error) {
	if page, err = queryPositive(c, "page"); err != nil {
		return 0, 0, err
	}
	if perPage, err = queryPositive(c, "per_page"); err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}

// pathID parses the :name path parameter as a positive id.
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := utils.AtoiStrict(c.Param(name), 0)
	if err != nil || n < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

// quotePage converts a page of views into the list envelope, with links to
// the adjacent pages of the current request.
func quotePage(c *gin.Context, p *domain.Page[domain.QuoteView]) ListResponse[QuoteResponse] {
	items := make([]QuoteResponse, 0, len(p.Items))
	for _, v := range p.Items {
		items = append(items, newQuoteResponse(v))
	}
	resp := ListResponse[QuoteResponse]{
		Data:     items,
		CurrPage: p.Page,
		PerPage:  p.PerPage,
		Total:    p.Total,
	}
	if p.HasNext() {
		s := utils.PageLink(c.Request.URL, p.Page+1)
		resp.NextPage = &s
	}
	if p.HasPrev() {
		s := utils.PageLink(c.Request.URL, p.Page-1)
		resp.PrevPage = &s
	}
	return resp
}
