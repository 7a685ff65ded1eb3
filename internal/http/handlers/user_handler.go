// User HTTP handlers.
//
//   - GET   /users/me    (own profile)
//   - PATCH /users/me    (edit own name / picture)
//   - GET   /users/{id}  (any profile, admin; own profile for everyone)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for editing the caller's profile.
type UpdateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,notblank,max=255" example:"Ada"`
	PictureURL *string `json:"picture_url" binding:"omitempty,max=2048" example:"https://example.com/ada.png"`
}

// Me godoc
// @ID          getMe
// @Summary     Current user's profile
// @Tags        Users
// @Produce     json
// @Success     200  {object} handlers.DataResponse[handlers.UserResponse]
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	p, err := h.svc.Users.Me(c.Request.Context(), callerFrom(c))
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, newUserResponse(p))
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Edit the current user's profile
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       X-CSRF-Token  header  string  false "CSRF token (cookie sessions)"
// @Param       body  body  handlers.UpdateProfileRequest  true  "Fields to change"
// @Success     200  {object} handlers.DataResponse[handlers.UserResponse]
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Router      /users/me [patch]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindError(err))
		return
	}
	p, err := h.svc.Users.UpdateProfile(c.Request.Context(), callerFrom(c), services.ProfileInput{
		Name:       req.Name,
		PictureURL: req.PictureURL,
	})
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, newUserResponse(p))
}

// GetUser godoc
// @ID          getUser
// @Summary     A user's profile
// @Description Admins may read any profile; other callers only their own.
// @Tags        Users
// @Produce     json
// @Param       id   path  int  true  "User ID"  minimum(1)
// @Success     200  {object} handlers.DataResponse[handlers.UserResponse]
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	p, err := h.svc.Users.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		fromService(c, err)
		return
	}
	data(c, http.StatusOK, newUserResponse(p))
}
