package main

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "credocarbon/config"
	"credocarbon/handlers"
	"credocarbon/metrics"
	"credocarbon/middleware"
	"credocarbon/registry"
	appserver "credocarbon/server"
)

// setupRoutes configures all API routes and middleware for the application.
// Cross-cutting middleware is installed first so every route, health
// endpoints included, passes through it.
func setupRoutes(app *fiber.App, cfg *appconfig.Config, svc *registry.Service, startTime time.Time, readyState *appserver.ReadyState) {
	// Security middleware
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge: func() int {
			if cfg.Environment == "production" {
				return 31536000
			}
			return 0
		}(),
		HSTSPreloadEnabled: cfg.Environment == "production",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// CORS configuration
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Browsers must never cache admin API responses
	app.Use(middleware.CacheControl())

	if cfg.EnableMetrics {
		app.Use(metrics.PrometheusMiddleware())
		app.Get("/metrics", func(c *fiber.Ctx) error {
			handler := promhttp.Handler()
			req := &http.Request{
				Method:     c.Method(),
				URL:        &url.URL{Path: c.Path(), RawQuery: string(c.Request().URI().QueryString())},
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader("")),
				Host:       string(c.Request().Host()),
				RequestURI: c.OriginalURL(),
			}
			c.Request().Header.VisitAll(func(key, value []byte) {
				req.Header.Add(string(key), string(value))
			})
			handler.ServeHTTP(appserver.NewFiberResponseWriter(c), req)
			return nil
		})
	}

	// Health check endpoints
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": appserver.ServiceName,
			"version": appserver.ServiceVersion,
		})
	})

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Ready endpoint - checks initialization and storage reachability
	app.Get("/api/health/ready", func(c *fiber.Ctx) error {
		health := fiber.Map{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
		}

		if !readyState.IsFullyReady() {
			health["status"] = "initializing"
			health["storage_ready"] = readyState.IsStorageReady()
			health["admin_ready"] = readyState.IsAdminReady()
			return c.Status(fiber.StatusServiceUnavailable).JSON(health)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := readyState.ProbeStorage(ctx); err != nil {
			health["status"] = "unhealthy"
			health["error"] = "storage check failed"
			return c.Status(fiber.StatusServiceUnavailable).JSON(health)
		}

		health["status"] = "ready"
		return c.JSON(health)
	})

	rateLimits := middleware.NewRateLimitConfig(cfg.RedisURL, cfg.RedisPassword)

	authHandler := handlers.NewAuthHandler(cfg)
	registryHandler := handlers.NewRegistryHandler(svc)
	insightsHandler := handlers.NewInsightsHandler(svc)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", rateLimits.LoginLimiter, authHandler.Login)

	// Everything below requires an admin token
	protected := api.Group("", middleware.RequireAuth(cfg.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	registryRoutes := protected.Group("/registry", rateLimits.CRUDLimiter)
	registryRoutes.Get("/", registryHandler.GetRegistry)
	registryRoutes.Put("/", registryHandler.ReplaceRegistry)
	registryRoutes.Post("/:type", registryHandler.CreateEntry)
	registryRoutes.Put("/:type/:id", registryHandler.UpdateEntry)
	registryRoutes.Delete("/:type/:id", registryHandler.DeleteEntry)

	insightsRoutes := protected.Group("/insights", rateLimits.CRUDLimiter)
	insightsRoutes.Get("/", insightsHandler.GetInsights)
	insightsRoutes.Put("/", insightsHandler.ReplaceInsights)
}
