// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// the error envelope, the data envelope, the paginated list envelope, and the
// soft-failure body used by the like endpoints.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting, so 5xx responses are
//     logged with request context.
//   - Successful bodies wrap their payload in `data`.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "quote not found"
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "data": { "id": 7, "author": "Seneca", ... } }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quotes-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Always false
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"quote not found"`
}

// DataResponse wraps a single payload.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps one page of items.
//
// NextPage and PrevPage are request paths for the adjacent pages, or null
// at the ends.
type ListResponse[T any] struct {
	Data     []T     `json:"data"`
	CurrPage int     `json:"curr_page" example:"1"`
	NextPage *string `json:"next_page" example:"/v1/quotes?page=2&per_page=10"`
	PrevPage *string `json:"prev_page"`
	PerPage  int     `json:"per_page" example:"10"`
	Total    int64   `json:"total" example:"42"`
}

// SoftFailure is returned with 200 when a like operation is a no-op
// (already liked / not liked). Data carries the current quote.
type SoftFailure[T any] struct {
	Success bool   `json:"success" example:"false"`
	Code    string `json:"code" example:"already_liked"`
	Message string `json:"message" example:"quote already liked"`
	Data    T      `json:"data"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		ev := lg.Error().
			Int("status", status).
			Str("code", code)
		if last := c.Errors.Last(); last != nil {
			ev = ev.Err(last.Err)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// data writes {"data": v}.
func data[T any](c *gin.Context, status int, v T) {
	ok(c, status, DataResponse[T]{Data: v})
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
