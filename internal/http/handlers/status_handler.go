package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

// ListStatuses godoc
// @ID          listQuoteStatuses
// @Summary     Moderation statuses (admin)
// @Tags        Quotes
// @Produce     json
// @Success     200  {object} handlers.DataResponse[[]domain.QuoteStatus]
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Router      /quote-statuses [get]
func (h *Handlers) ListStatuses(c *gin.Context) {
	sts, err := h.svc.Statuses.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		fromService(c, err)
		return
	}
	if sts == nil {
		sts = []domain.QuoteStatus{}
	}
	data(c, http.StatusOK, sts)
}
