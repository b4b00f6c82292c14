// Package httpapi wires the Gin transport to the quote services, middleware
// and route handlers. Cross-cutting concerns are installed here in a fixed
// order:
//
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery
//  5. Body size limit
//  6. Gzip
//  7. Metrics
//  8. Idempotency validator (before the rate limiter so replays bypass it)
//  9. Rate limiter
//  10. CORS and security headers
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-quote-backend/internal/config"
	"github.com/tbourn/go-quote-backend/internal/http/handlers"
	"github.com/tbourn/go-quote-backend/internal/http/middleware"
	"github.com/tbourn/go-quote-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches middleware and every endpoint to r, serving the
// given service set under cfg.APIBasePath.
func RegisterRoutes(r *gin.Engine, svc *services.Set, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	base := strings.TrimSuffix(cfg.APIBasePath, "/")

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	createPath := base + "/quote-requests"
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == createPath {
					return services.CreateScope
				}
				return ""
			},
		},
		func(ctx context.Context, userID, _, key string) (bool, error) {
			return svc.QuoteRequests.HasIdempotencyRecord(ctx, userID, key)
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	useCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Services{
		QuoteRequests:  svc.QuoteRequests,
		Invitations:    svc.Invitations,
		Responses:      svc.Responses,
		Summaries:      svc.Summaries,
		Reports:        svc.Reports,
		Suppliers:      svc.Suppliers,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	api := groupWithPrefix(r, base)
	{
		api.POST("/suppliers", h.CreateSupplier)
		api.GET("/suppliers/:id", h.GetSupplier)

		api.POST("/quote-requests", h.CreateQuoteRequest)
		api.GET("/quote-requests", h.ListQuoteRequests)

		qr := api.Group("/quote-requests/:id")
		qr.GET("", h.GetQuoteRequest)
		qr.PATCH("", h.UpdateQuoteRequest)
		qr.DELETE("", h.DeleteQuoteRequest)
		qr.POST("/send", h.SendQuoteRequest)
		qr.POST("/complete", h.CompleteQuoteRequest)

		qr.POST("/invitations", h.InviteSupplier)
		qr.GET("/invitations", h.ListInvitations)

		qr.POST("/responses", h.SubmitResponse)
		qr.POST("/responses/decline", h.DeclineResponse)
		qr.GET("/responses", h.ListResponses)

		qr.GET("/summary", h.GetSummary)
		qr.GET("/export", h.ExportReport)
	}
}

// useCORS installs CORS. With no allowlist every origin is accepted without
// credentials; otherwise allowed origins are echoed back.
func useCORS(r *gin.Engine, origins []string) {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Location", "Content-Disposition", "Idempotency-Replayed", "Retry-After"}
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	if len(origins) == 0 {
		// ACAO: * even without an Origin header, so plain clients see it too.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody caps request bodies at maxBytes; reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
