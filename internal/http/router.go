// Package http exposes the control surface over fiber: link CRUD,
// search, background crawl and embed jobs, and operational endpoints.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"linkdex/internal/config"
	"linkdex/internal/crawler"
	"linkdex/internal/embed"
	"linkdex/internal/jobs"
	"linkdex/internal/metrics"
	"linkdex/internal/search"
	"linkdex/internal/store"
)

type Server struct {
	app    *fiber.App
	config *config.Config
	store  *store.Store
	logger *slog.Logger
}

// Deps bundles what the handlers need. Embedder may be nil when no
// provider is configured; vector and hybrid search then fail with a
// clear error while lexical search keeps working.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Search   *search.Service
	Fetcher  *crawler.Fetcher
	Embedder embed.Embedder
	Runner   *jobs.Runner
	Logger   *slog.Logger
}

func NewServer(d Deps) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: !d.Config.Server.Debug})

	if d.Config.Server.Debug {
		app.Use(cors.New())
	}

	// Inject dependencies into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", d.Config)
		c.Locals("store", d.Store)
		c.Locals("search", d.Search)
		c.Locals("fetcher", d.Fetcher)
		c.Locals("embedder", d.Embedder)
		c.Locals("runner", d.Runner)
		return c.Next()
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)
		if d.Logger != nil {
			c.Locals("logger", d.Logger)
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if d.Logger != nil {
			d.Logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	})

	// Redis client for rate limiting and deep health checks
	var rdb *redis.Client
	if d.Config.Redis.URL != "" {
		if opt, err := redis.ParseURL(d.Config.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		}
	}

	// Health endpoints
	app.Get("/healthz", func(c *fiber.Ctx) error {
		// Shallow health: process is up
		if c.Query("deep") != "true" {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := d.Store.DB.PingContext(ctx); err != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}

		status := "ok"
		if dbStatus != "ok" || redisStatus == "error" {
			status = "error"
		}

		return c.JSON(fiber.Map{
			"status": status,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export())
	})

	var rateMw fiber.Handler
	if rdb != nil && d.Config.RateLimit.PerMinute > 0 {
		rateMw = rateLimitMiddleware(d.Config, rdb)
	} else {
		rateMw = func(c *fiber.Ctx) error { return c.Next() }
	}

	v1 := app.Group("/v1", rateMw)
	registerV1Routes(v1)

	return &Server{
		app:    app,
		config: d.Config,
		store:  d.Store,
		logger: d.Logger,
	}
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func registerV1Routes(group fiber.Router) {
	group.Post("/links", addLinkHandler)
	group.Get("/links", listLinksHandler)
	group.Delete("/links", removeLinksHandler)
	group.Post("/links/touch", touchLinkHandler)
	group.Get("/links/:id", getLinkHandler)
	group.Delete("/links/:id", removeLinkHandler)
	group.Post("/links/:id/toggle-hidden", toggleHiddenHandler)

	group.Post("/search", hybridSearchHandler)
	group.Post("/search/text", textSearchHandler)
	group.Post("/search/vector", vectorSearchHandler)

	group.Post("/crawl", startCrawlHandler)
	group.Get("/crawl/status", jobStatusHandler(jobs.KindCrawl))
	group.Post("/crawl/cancel", cancelJobHandler(jobs.KindCrawl))
	group.Post("/embed", startEmbedHandler)
	group.Get("/embed/status", jobStatusHandler(jobs.KindEmbed))
	group.Post("/embed/cancel", cancelJobHandler(jobs.KindEmbed))

	group.Get("/db/status", dbStatusHandler)
	group.Post("/db/vector/init", vectorInitHandler)
	group.Get("/db/vector/status", vectorStatusHandler)

	group.Post("/fetch", fetchPreviewHandler)
}
