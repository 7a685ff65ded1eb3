// Session HTTP handlers.
//
//   - POST /auth/token    (exchange an identity token for a session)
//   - POST /auth/refresh  (new access token from the refresh token)
//   - POST /auth/revoke   (end the session, clear cookies)
//
// Tokens travel in HttpOnly cookies. When CSRF protection is on, the
// matching double-submit values are set in script-readable cookies that the
// client echoes in X-CSRF-Token.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/auth"
	"github.com/tbourn/go-quotes-backend/internal/http/middleware"
	"github.com/tbourn/go-quotes-backend/internal/services"
)

// TokenRequest is the JSON payload of the login exchange.
type TokenRequest struct {
	// Token is an ID token issued by the identity provider.
	Token string `json:"token" binding:"required,notblank" example:"eyJhbGciOiJSUzI1NiIs..."`
}

// setCookie writes one session cookie. httpOnly is false for CSRF cookies.
func (h *Handlers) setCookie(c *gin.Context, name, value string, expires time.Time, httpOnly bool) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.session.CookieSecure, httpOnly)
}

func (h *Handlers) clearCookie(c *gin.Context, name string, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.session.CookieSecure, httpOnly)
}

func (h *Handlers) setAccess(c *gin.Context, iss auth.Issued) {
	h.setCookie(c, middleware.AccessCookie, iss.Token, iss.ExpiresAt, true)
	if h.session.CSRFProtect {
		h.setCookie(c, middleware.CSRFAccessCookie, iss.CSRF, iss.ExpiresAt, false)
	}
}

func (h *Handlers) setRefresh(c *gin.Context, iss auth.Issued) {
	h.setCookie(c, middleware.RefreshCookie, iss.Token, iss.ExpiresAt, true)
	if h.session.CSRFProtect {
		h.setCookie(c, middleware.CSRFRefreshCookie, iss.CSRF, iss.ExpiresAt, false)
	}
}

// Login godoc
// @ID          login
// @Summary     Start a session
// @Description Verifies an identity-provider ID token, creates the user on first login, and sets the access and refresh cookies.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.TokenRequest  true  "Identity token"
// @Success     200  {object} handlers.DataResponse[handlers.UserResponse]
// @Header      200  {string} Set-Cookie "access_token_cookie, refresh_token_cookie, csrf_access_token, csrf_refresh_token"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid identity token"
// @Router      /auth/token [post]
func (h *Handlers) Login(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindError(err))
		return
	}
	s, err := h.svc.Users.Login(c.Request.Context(), req.Token)
	if err != nil {
		fromService(c, err)
		return
	}
	h.setAccess(c, s.Access)
	h.setRefresh(c, s.Refresh)
	data(c, http.StatusOK, newUserResponse(s.Profile))
}

// Refresh godoc
// @ID          refreshSession
// @Summary     Refresh the access token
// @Description Reads the refresh token from the refresh cookie (with X-CSRF-Token matching csrf_refresh_token) or from a Bearer header, and sets a new access cookie.
// @Tags        Auth
// @Param       X-CSRF-Token  header  string  false "Refresh CSRF token (cookie sessions)"
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid refresh token"
// @Router      /auth/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	raw, csrfOK := middleware.RefreshToken(c, h.session.CSRFProtect)
	if !csrfOK {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "CSRF double submit tokens do not match")
		return
	}
	if raw == "" {
		fromService(c, services.ErrUnauthenticated)
		return
	}
	iss, err := h.svc.Users.Refresh(c.Request.Context(), raw)
	if err != nil {
		fromService(c, err)
		return
	}
	h.setAccess(c, iss)
	noContent(c)
}

// Revoke godoc
// @ID          revokeSession
// @Summary     End the session
// @Description Clears the session cookies.
// @Tags        Auth
// @Param       X-CSRF-Token  header  string  false "CSRF token (cookie sessions)"
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Router      /auth/revoke [post]
func (h *Handlers) Revoke(c *gin.Context) {
	if err := h.svc.Users.Revoke(c.Request.Context(), callerFrom(c)); err != nil {
		fromService(c, err)
		return
	}
	h.clearCookie(c, middleware.AccessCookie, true)
	h.clearCookie(c, middleware.RefreshCookie, true)
	h.clearCookie(c, middleware.CSRFAccessCookie, false)
	h.clearCookie(c, middleware.CSRFRefreshCookie, false)
	noContent(c)
}
