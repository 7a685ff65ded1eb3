// Quote HTTP handlers.
//
// This file exposes REST endpoints for quote resources:
//   - GET    /quotes                  (list / filter / search, paginated, ETag)
//   - POST   /quotes                  (create, Idempotency-Key aware)
//   - DELETE /quotes?ids=1,2,3        (bulk delete, admin)
//   - GET    /quotes/random           (random published quote)
//   - GET    /quotes/{id}             (fetch)
//   - PATCH  /quotes/{id}             (update, admin)
//   - DELETE /quotes/{id}             (delete, admin)
//   - GET    /quotes/{id}/contributor (contributor lookup, admin)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/http/middleware"
	"github.com/tbourn/go-quotes-backend/internal/services"
	"github.com/tbourn/go-quotes-backend/internal/utils"
)

// CreateQuoteRequest is the JSON payload for creating a quote.
type CreateQuoteRequest struct {
	Author    string `json:"author" binding:"required,notblank,max=100" example:"Seneca"`
	Quotation string `json:"quotation" binding:"required,notblank,max=200" example:"Luck is what happens when preparation meets opportunity."`
	// Source optionally links to where the quote was found (http/https).
	Source string `json:"source" binding:"omitempty,max=2048" example:"https://en.wikiquote.org/wiki/Seneca_the_Younger"`
	// Status is honoured for admins only; contributors always get pending_review.
	Status string `json:"status" binding:"omitempty,max=25" example:"published"`
}

// UpdateQuoteRequest is the JSON payload for updating a quote. Absent fields
// are left unchanged.
type UpdateQuoteRequest struct {
	Author    *string `json:"author" binding:"omitempty,notblank,max=100" example:"Seneca"`
	Quotation *string `json:"quotation" binding:"omitempty,notblank,max=200"`
	Source    *string `json:"source" binding:"omitempty,max=2048"`
	Status    *string `json:"status" binding:"omitempty,notblank,max=25" example:"published"`
}

// listETag is a weak validator of the list visible to caller.
func listETag(caller services.Caller, count int64, latest string) string {
	return fmt.Sprintf(`W/"quotes:%d:%t:%d:%s"`, caller.UserID, caller.Admin, count, latest)
}

// ListQuotes godoc
// @ID          listQuotes
// @Summary     List, filter or search quotes (paginated)
// @Description Without `query`/`q`, returns quotes newest first, filtered by `status` (admin only), `submitted_by` and `likes` (gt5, et0, lt10). Supports weak ETag via If-None-Match and may return 304.
// @Description With `query`/`q`, returns published quotes in relevance order; other filters are ignored.
// @Tags        Quotes
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       query          query   string  false "Free-text search"
// @Param       q              query   string  false "Alias of query"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       per_page       query   int     false "Items per page"  minimum(1) maximum(100) default(10)
// @Param       status         query   string  false "Status name (admin only)" example(published)
// @Param       submitted_by   query   string  false "Contributor display name"
// @Param       likes          query   string  false "Likes filter"    example(gt5)
//
// @Success     200  {object} handlers.ListResponse[handlers.QuoteResponse]
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Status filter not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /quotes [get]
func (h *Handlers) ListQuotes(c *gin.Context) {
	ctx := c.Request.Context()
	caller := callerFrom(c)

	page, perPage, err := pageParams(c)
	if err != nil {
		fromService(c, err)
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		query = strings.TrimSpace(c.Query("q"))
	}
	if query != "" {
		p, err := h.svc.Feed.Search(ctx, caller, query, page, perPage)
		if err != nil {
			fromService(c, err)
			return
		}
		ok(c, http.StatusOK, quotePage(c, p))
		return
	}

	// The version is read before the page so a concurrent write can only
	// make the validator stale, never ahead of the body.
	n, latest, verr := h.svc.Feed.ListVersion(ctx, caller)

	p, err := h.svc.Feed.List(ctx, caller, services.ListParams{
		Page:        page,
		PerPage:     perPage,
		Status:      strings.TrimSpace(c.Query("status")),
		SubmittedBy: strings.TrimSpace(c.Query("submitted_by")),
		Likes:       strings.TrimSpace(c.Query("likes")),
	})
	if err != nil {
		fromService(c, err)
		return
	}

	if verr == nil {
		etag := listETag(caller, n, latest)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}
	ok(c, http.StatusOK, quotePage(c, p))
}

// CreateQuote godoc
// @ID          createQuote
// @Summary     Submit a quote
// @Description Creates a quote contributed by the current user. Contributors' quotes start in pending_review; admins may choose the status (default published).
// @Description With an Idempotency-Key, a retry by the same user returns the originally created quote with 200 and Idempotency-Replayed: true.
// @Tags        Quotes
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key"  example(2b0c6c1e-create-1)
// @Param       X-CSRF-Token     header  string  false "CSRF token (cookie sessions)"
// @Param       body             body    handlers.CreateQuoteRequest  true  "Quote"
//
// @Success     201  {object}  handlers.DataResponse[handlers.QuoteResponse]
// @Success     200  {object}  handlers.DataResponse[handlers.QuoteResponse] "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate quote"
// @Failure     429  {object}  handlers.ErrorResponse  "Too many requests"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /quotes [post]
func (h *Handlers) CreateQuote(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindError(err))
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	v, replayed, err := h.svc.Quotes.Create(c.Request.Context(), callerFrom(c), services.CreateQuoteInput{
		Author:         req.Author,
		Quotation:      req.Quotation,
		Source:         req.Source,
		Status:         req.Status,
		IdempotencyKey: key,
	})
	if err != nil {
		fromService(c, err)
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		data(c, http.StatusOK, newQuoteResponse(*v))
		return
	}
	data(c, http.StatusCreated, newQuoteResponse(*v))
}

// BulkDeleteQuotes godoc
// @ID          bulkDeleteQuotes
// @Summary     Delete several quotes (admin)
// @Description Deletes up to 50 quotes, each in its own transaction, and reports per-id success. Duplicate ids are reported once.
// @Tags        Quotes
// @Produce     json
//
// @Param       ids  query  string  true  "Comma-separated ids"  example(1,2,3)
//
// @Success     200  {object} handlers.DataResponse[[]services.BulkResult]
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Router      /quotes [delete]
func (h *Handlers) BulkDeleteQuotes(c *gin.Context) {
	ids, err := utils.ParseIDList(c.Query("ids"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	res, err := h.svc.Quotes.BulkDelete(c.Request.Context(), callerFrom(c), ids)
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, res)
}

// RandomQuote godoc
// @ID          randomQuote
// @Summary     Random published quote
// @Tags        Quotes
// @Produce     json
// @Success     200  {object} handlers.DataResponse[handlers.QuoteResponse]
// @Failure     404  {object} handlers.ErrorResponse "No published quotes"
// @Router      /quotes/random [get]
func (h *Handlers) RandomQuote(c *gin.Context) {
	v, err := h.svc.Feed.Random(c.Request.Context(), callerFrom(c))
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, newQuoteResponse(*v))
}

// GetQuote godoc
// @ID          getQuote
// @Summary     Fetch a quote
// @Description Non-admins only see published quotes; anything else is reported as not found.
// @Tags        Quotes
// @Produce     json
// @Param       id   path     int  true  "Quote ID"  minimum(1)
// @Success     200  {object} handlers.DataResponse[handlers.QuoteResponse]
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Quote not found"
// @Router      /quotes/{id} [get]
func (h *Handlers) GetQuote(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	v, err := h.svc.Feed.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, newQuoteResponse(*v))
}

// UpdateQuote godoc
// @ID          updateQuote
// @Summary     Update a quote (admin)
// @Description Updates author, quotation, source and/or moderation status. The slug is regenerated when the quotation changes.
// @Tags        Quotes
// @Accept      json
// @Produce     json
// @Param       id    path  int                           true  "Quote ID"  minimum(1)
// @Param       body  body  handlers.UpdateQuoteRequest   true  "Fields to change"
// @Success     200  {object} handlers.DataResponse[handlers.QuoteResponse]
// @Failure     400  {object} handlers.ErrorResponse "Bad request or unknown status"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     404  {object} handlers.ErrorResponse "Quote not found"
// @Failure     409  {object} handlers.ErrorResponse "Duplicate quote"
// @Router      /quotes/{id} [patch]
func (h *Handlers) UpdateQuote(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindError(err))
		return
	}
	v, err := h.svc.Quotes.Update(c.Request.Context(), callerFrom(c), id, services.UpdateQuoteInput{
		Author:    req.Author,
		Quotation: req.Quotation,
		Source:    req.Source,
		Status:    req.Status,
	})
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, newQuoteResponse(*v))
}

// DeleteQuote godoc
// @ID          deleteQuote
// @Summary     Delete a quote (admin)
// @Description Deletes the quote and its likes.
// @Tags        Quotes
// @Param       id   path  int  true  "Quote ID"  minimum(1)
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     404  {object} handlers.ErrorResponse "Quote not found"
// @Router      /quotes/{id} [delete]
func (h *Handlers) DeleteQuote(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Quotes.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		fromService(c, err)
		return
	}
	noContent(c)
}

// QuoteContributor godoc
// @ID          quoteContributor
// @Summary     Contributor of a quote (admin)
// @Tags        Quotes
// @Produce     json
// @Param       id   path  int  true  "Quote ID"  minimum(1)
// @Success     200  {object} handlers.DataResponse[handlers.ContributorResponse]
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     404  {object} handlers.ErrorResponse "Quote not found"
// @Router      /quotes/{id}/contributor [get]
func (h *Handlers) QuoteContributor(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	u, err := h.svc.Quotes.Contributor(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, ContributorResponse{
		ID:         u.ID,
		Name:       u.Name,
		PictureURL: u.PictureURL,
		IsAdmin:    u.IsAdmin,
	})
}
