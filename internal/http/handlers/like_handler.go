// Like HTTP handlers.
//
//   - POST   /likes             (like a quote)
//   - DELETE /likes/{quote_id}  (unlike)
//   - GET    /likes             (quotes liked by the caller, most recent first)
//
// Liking twice or unliking a quote that is not liked is not an HTTP error:
// the response is 200 with success=false, a code, and the current quote.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/services"
)

// LikeRequest is the JSON payload for liking a quote.
type LikeRequest struct {
	QuoteID uint `json:"quote_id" binding:"required,min=1" example:"7"`
}

// likeResult writes the outcome of a like/unlike call.
func likeResult(c *gin.Context, v *domain.QuoteView, err error) {
	switch {
	case err == nil:
		data(c, http.StatusOK, newQuoteResponse(*v))
	case v != nil && errors.Is(err, services.ErrAlreadyLiked):
		ok(c, http.StatusOK, SoftFailure[QuoteResponse]{Code: ErrCodeAlreadyLiked, Message: err.Error(), Data: newQuoteResponse(*v)})
	case v != nil && errors.Is(err, services.ErrNotLiked):
		ok(c, http.StatusOK, SoftFailure[QuoteResponse]{Code: ErrCodeNotLiked, Message: err.Error(), Data: newQuoteResponse(*v)})
	default:
		fromService(c, err)
	}
}

// LikeQuote godoc
// @ID          likeQuote
// @Summary     Like a quote
// @Description Records that the caller likes the quote and returns it with the updated counter. Liking again returns success=false with code already_liked.
// @Tags        Likes
// @Accept      json
// @Produce     json
// @Param       X-CSRF-Token  header  string  false "CSRF token (cookie sessions)"
// @Param       body  body  handlers.LikeRequest  true  "Quote to like"
// @Success     200  {object} handlers.DataResponse[handlers.QuoteResponse]
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     404  {object} handlers.ErrorResponse "Quote not found"
// @Router      /likes [post]
func (h *Handlers) LikeQuote(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindError(err))
		return
	}
	v, err := h.svc.Likes.Like(c.Request.Context(), callerFrom(c), req.QuoteID)
	likeResult(c, v, err)
}

// UnlikeQuote godoc
// @ID          unlikeQuote
// @Summary     Unlike a quote
// @Description Removes the caller's like and returns the quote with the updated counter. Unliking a quote that is not liked returns success=false with code not_liked.
// @Tags        Likes
// @Produce     json
// @Param       X-CSRF-Token  header  string  false "CSRF token (cookie sessions)"
// @Param       quote_id  path  int  true  "Quote ID"  minimum(1)
// @Success     200  {object} handlers.DataResponse[handlers.QuoteResponse]
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     404  {object} handlers.ErrorResponse "Quote not found"
// @Router      /likes/{quote_id} [delete]
func (h *Handlers) UnlikeQuote(c *gin.Context) {
	id, valid := pathID(c, "quote_id")
	if !valid {
		return
	}
	v, err := h.svc.Likes.Unlike(c.Request.Context(), callerFrom(c), id)
	likeResult(c, v, err)
}

// ListLikes godoc
// @ID          listLikes
// @Summary     Quotes liked by the caller
// @Description Most recently liked first. Non-admins only see published quotes.
// @Tags        Likes
// @Produce     json
// @Param       page      query  int  false "Page number"     minimum(1) default(1)
// @Param       per_page  query  int  false "Items per page"  minimum(1) maximum(100) default(10)
// @Success     200  {object} handlers.ListResponse[handlers.QuoteResponse]
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Router      /likes [get]
func (h *Handlers) ListLikes(c *gin.Context) {
	page, perPage, err := pageParams(c)
	if err != nil {
		fromService(c, err)
		return
	}
	p, err := h.svc.Feed.LikedBy(c.Request.Context(), callerFrom(c), page, perPage)
	if err != nil {
		fromService(c, err)
		return
	}
	ok(c, http.StatusOK, quotePage(c, p))
}
