// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's session. A session is an access token sent
// either as "Authorization: Bearer <token>" or in the access cookie. Cookie
// sessions on unsafe methods must also pass the double-submit CSRF check:
// the X-CSRF-Token header has to match the csrf claim of the access token.
//
// Requests without credentials continue anonymously; the access policy in
// the services decides what they may do. Requests carrying a bad, expired or
// wrong-type token are rejected with 401 so clients know to refresh.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/auth"
)

const (
	// AccessCookie and RefreshCookie hold the session tokens.
	AccessCookie  = "access_token_cookie"
	RefreshCookie = "refresh_token_cookie"
	// CSRFAccessCookie and CSRFRefreshCookie are readable by scripts so the
	// client can echo them in HeaderCSRFToken.
	CSRFAccessCookie  = "csrf_access_token"
	CSRFRefreshCookie = "csrf_refresh_token"
	// HeaderCSRFToken carries the double-submit value.
	HeaderCSRFToken = "X-CSRF-Token"

	ctxKeyUserID  = "userID"
	ctxKeyIsAdmin = "isAdmin"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(raw string, want auth.TokenType) (*auth.Claims, error)
}

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// CSRFProtect enables the double-submit check for cookie sessions.
	CSRFProtect bool
	// Lenient reports requests on which a bad access token is ignored and
	// the request continues anonymously (login and refresh, where an
	// expired session is the normal case).
	Lenient func(c *gin.Context) bool
}

// Authenticate resolves the session of each request and stores the user id
// and admin flag in the Gin context (see UserID and IsAdmin).
func Authenticate(p TokenParser, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, fromCookie := accessToken(c)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := p.Parse(raw, auth.AccessToken)
		if err != nil {
			if opts.Lenient != nil && opts.Lenient(c) {
				c.Next()
				return
			}
			LoggerFrom(c).Debug().Err(err).Msg("rejected access token")
			abortUnauthorized(c, "invalid_token", "invalid or expired session")
			return
		}
		if fromCookie && opts.CSRFProtect && !isSafeMethod(c.Request.Method) {
			if got := c.GetHeader(HeaderCSRFToken); got == "" || got != claims.CSRF {
				abortUnauthorized(c, "csrf_failed", "CSRF double submit tokens do not match")
				return
			}
		}

		uid, _ := claims.UserID()
		c.Set(ctxKeyUserID, uid)
		c.Set(ctxKeyIsAdmin, claims.Admin)
		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, _ := v.(uint)
	return id, id != 0
}

// IsAdmin reports whether the session carries the admin claim.
func IsAdmin(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyIsAdmin)
	b, _ := v.(bool)
	return b
}

// RefreshToken returns the refresh token of the request, checking the CSRF
// header against the refresh CSRF cookie when the token came from a cookie.
// ok is false when the CSRF check fails.
func RefreshToken(c *gin.Context, csrfProtect bool) (token string, ok bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, found := bearer(h); found {
			return t, true
		}
	}
	t, err := c.Cookie(RefreshCookie)
	if err != nil || t == "" {
		return "", true
	}
	if csrfProtect {
		want, _ := c.Cookie(CSRFRefreshCookie)
		if got := c.GetHeader(HeaderCSRFToken); want == "" || got != want {
			return "", false
		}
	}
	return t, true
}

// accessToken returns the raw access token and whether it came from the
// cookie. The Authorization header wins over the cookie.
func accessToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := bearer(h); ok {
			return t, false
		}
	}
	if t, err := c.Cookie(AccessCookie); err == nil && t != "" {
		return t, true
	}
	return "", false
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func abortUnauthorized(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
