// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, sessions, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/auth"
	"github.com/tbourn/go-quotes-backend/internal/config"
	_ "github.com/tbourn/go-quotes-backend/internal/docs"
	"github.com/tbourn/go-quotes-backend/internal/http/handlers"
	"github.com/tbourn/go-quotes-backend/internal/http/middleware"
	"github.com/tbourn/go-quotes-backend/internal/metrics"
	"github.com/tbourn/go-quotes-backend/internal/repo"
	"github.com/tbourn/go-quotes-backend/internal/search"
	"github.com/tbourn/go-quotes-backend/internal/services"
)

// Deps are the infrastructure pieces the API is built from.
type Deps struct {
	DB       *gorm.DB
	Index    search.Index
	Feed     *repo.ChangeFeed // may be nil: no index sync
	Verifier auth.IdentityVerifier
	Tokens   *auth.TokenCodec
	Metrics  *metrics.Recorder // may be nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, sessions, idempotency and rate limiting, health, metrics and docs
// endpoints, and then mounts the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers (also on rejected requests)
//  8. Gzip
//  9. Authenticate: resolve the session
//  10. Idempotency validator (before rate limiting to allow bypass on replay)
//  11. Rate limiter (per user/IP, bypass on replay)
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	base := cfg.APIBasePath
	if base == "/" {
		base = ""
	}

	// Dependency injection: services ← repo/db/index
	statusSvc := services.NewStatusService(deps.DB, cfg.Quotes)
	feedSvc := services.NewFeedService(deps.DB, deps.Index, statusSvc, deps.Metrics, cfg.Quotes)
	likeSvc := services.NewLikeService(deps.DB, statusSvc, deps.Metrics)
	quoteSvc := services.NewQuoteService(deps.DB, deps.Feed, statusSvc, deps.Metrics, cfg.IdempotencyTTL)
	userSvc := services.NewUserService(deps.DB, deps.Verifier, deps.Tokens, cfg.Auth)

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.Logger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		Revalidate:   true,
		EnablePolicy: true,
	}))

	// 8) Compression (promhttp negotiates its own)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 9) Sessions; login and refresh tolerate a stale access token
	lenient := map[string]bool{base + "/auth/token": true, base + "/auth/refresh": true}
	r.Use(middleware.Authenticate(deps.Tokens, middleware.AuthOptions{
		CSRFProtect: cfg.Auth.CSRFProtect,
		Lenient:     func(c *gin.Context) bool { return lenient[c.FullPath()] },
	}))

	// 10) Idempotency validation (before rate limiting)
	createPath := base + "/quotes"
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == createPath {
					return services.IdempotencyScopeCreateQuote
				}
				return ""
			},
		},
		func(ctx context.Context, userID uint, _ string, key string) (bool, error) {
			return quoteSvc.HasReplay(ctx, services.Caller{UserID: userID}, key), nil
		},
	))

	// 11) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Services{
		Feed:     feedSvc,
		Quotes:   quoteSvc,
		Likes:    likeSvc,
		Users:    userSvc,
		Statuses: statusSvc,
	}, handlers.SessionOptions{
		CookieSecure: cfg.Auth.CookieSecure,
		CSRFProtect:  cfg.Auth.CSRFProtect,
	})

	// Public API
	api := r.Group(base)
	{
		// Sessions
		api.POST("/auth/token", h.Login)
		api.POST("/auth/refresh", h.Refresh)
		api.POST("/auth/revoke", h.Revoke)

		// Quotes
		api.GET("/quotes", h.ListQuotes)
		api.POST("/quotes", h.CreateQuote)
		api.DELETE("/quotes", h.BulkDeleteQuotes)
		api.GET("/quotes/random", h.RandomQuote)
		api.GET("/quotes/:id", h.GetQuote)
		api.PATCH("/quotes/:id", h.UpdateQuote)
		api.DELETE("/quotes/:id", h.DeleteQuote)
		api.GET("/quotes/:id/contributor", h.QuoteContributor)

		// Likes
		api.GET("/likes", h.ListLikes)
		api.POST("/likes", h.LikeQuote)
		api.DELETE("/likes/:quote_id", h.UnlikeQuote)

		// Users
		api.GET("/users/me", h.Me)
		api.PATCH("/users/me", h.UpdateMe)
		api.GET("/users/:id", h.GetUser)

		// Moderation statuses
		api.GET("/quote-statuses", h.ListStatuses)
	}
}

// corsMiddleware returns the CORS handlers. Without configured origins any
// origin is allowed but credentials (cookies) are not; with an allowlist the
// listed origins may send cookie sessions.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderCSRFToken, middleware.HeaderIdempotencyKey, "If-None-Match",
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    exposeHeaders,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}
	return []gin.HandlerFunc{cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
