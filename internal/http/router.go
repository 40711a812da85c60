// Package httpapi wires the HTTP transport (Gin) to the record service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CSRF
// protection, rate limiting, and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Every state-changing request passes the CSRF guard before any handler
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/pvesely/go-cleaning-log/internal/config"
	"github.com/pvesely/go-cleaning-log/internal/domain"
	"github.com/pvesely/go-cleaning-log/internal/http/handlers"
	"github.com/pvesely/go-cleaning-log/internal/http/middleware"
	"github.com/pvesely/go-cleaning-log/internal/repo"
	"github.com/pvesely/go-cleaning-log/internal/services"
	"github.com/pvesely/go-cleaning-log/internal/timefmt"
	"github.com/pvesely/go-cleaning-log/internal/web"
)

// recordRepoShim adapts the repository free functions to the
// services.RecordRepo interface expected by the RecordService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type recordRepoShim struct{}

// CreateRecord proxies repo.CreateRecord.
func (recordRepoShim) CreateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error {
	return repo.CreateRecord(ctx, db, r)
}

// GetRecord proxies repo.GetRecord.
func (recordRepoShim) GetRecord(ctx context.Context, db *gorm.DB, id uint) (*domain.CleaningRecord, error) {
	return repo.GetRecord(ctx, db, id)
}

// UpdateRecord proxies repo.UpdateRecord.
func (recordRepoShim) UpdateRecord(ctx context.Context, db *gorm.DB, r *domain.CleaningRecord) error {
	return repo.UpdateRecord(ctx, db, r)
}

// DeleteRecord proxies repo.DeleteRecord.
func (recordRepoShim) DeleteRecord(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteRecord(ctx, db, id)
}

// ListRecords proxies repo.ListRecords.
func (recordRepoShim) ListRecords(ctx context.Context, db *gorm.DB) ([]domain.CleaningRecord, error) {
	return repo.ListRecords(ctx, db)
}

// MarkAllPaid proxies repo.MarkAllPaid.
func (recordRepoShim) MarkAllPaid(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.MarkAllPaid(ctx, db)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It installs the embedded template set, configures observability
// (tracing, metrics), the CSRF guard and rate limiting, security headers,
// health and metrics endpoints, and then mounts the page routes.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything (when enabled)
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger, render the error page
//  5. Body size limiter (forms are tiny)
//  6. Gzip for the rendered pages
//  7. Metrics
//  8. Rate limiter (per IP)
//  9. CSRF guard (validates every POST before handlers)
//  10. Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.SetHTMLTemplate(web.Templates())

	// 1) Trace all HTTP requests
	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to the HTML error page (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB; the forms carry a handful of fields)
	r.Use(limitBody(64 << 10))

	// 6) Compress the rendered pages
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 9) CSRF guard. Without a configured key the token cannot survive a
	// process restart, which is acceptable for the single-process deployment.
	key := []byte(cfg.CSRFKey)
	if len(key) == 0 {
		key = []byte(uuid.NewString())
	}
	r.Use(middleware.CSRF(middleware.CSRFOptions{
		Key:    key,
		Secure: cfg.Security.EnableHSTS,
	}))

	// 10) Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Unknown paths get the error page, not a bare 404
	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, middleware.ErrorTemplateName, gin.H{
			"Title":   "Stránka nenalezena",
			"Message": "Požadovaná stránka neexistuje.",
		})
	})

	// Liveness/health with basic table stats
	r.GET("/health", func(c *gin.Context) {
		count, _, err := repo.RecordStats(c.Request.Context(), db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "records": count})
	})

	// Embedded assets; the service worker must be served from the site root
	// so its scope covers the whole app.
	r.StaticFS("/static", http.FS(web.StaticFS()))
	r.GET("/service-worker.js", func(c *gin.Context) {
		c.FileFromFS("service-worker.js", http.FS(web.StaticFS()))
	})

	// Dependency injection: handlers ← service ← repo/db
	loc := timefmt.ForName(cfg.Locale)
	svc := services.NewRecordService(db, recordRepoShim{}, loc)
	h := handlers.New(svc, loc)

	// Pages
	r.GET("/", h.ShowList)
	r.GET("/add", h.ShowCreateForm)
	r.POST("/add", h.CreateRecord)
	r.GET("/edit/:id", h.ShowEditForm)
	r.POST("/edit/:id", h.UpdateRecord)
	r.POST("/mark-all-paid", h.MarkAllPaid)
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
