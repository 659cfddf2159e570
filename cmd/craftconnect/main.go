package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iTeLLiiX/CraftConnect/internal/config"
	"github.com/iTeLLiiX/CraftConnect/internal/http/handlers"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/metrics"
	"github.com/iTeLLiiX/CraftConnect/internal/realtime"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	closer, err := applog.Setup(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatal(err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := applog.Logger()

	metrics.Register()

	db, err := repos.OpenDB(cfg.DB.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Realtime bus: in-process by default, Redis pub/sub when enabled so
	// events reach every instance behind a load balancer.
	var bus realtime.Bus = realtime.NewMemoryBus()
	if cfg.Redis.Enabled {
		client := realtime.NewRedisClient(cfg.Redis)
		if _, err := client.Ping(ctx).Result(); err != nil {
			logger.Warn().Err(err).Msg("redis connection failed, continuing with in-process bus")
		} else {
			rb, err := realtime.NewRedisBus(ctx, client, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("redis subscribe failed, continuing with in-process bus")
			} else {
				bus = rb
				logger.Info().Str("addr", cfg.Redis.Address).Msg("redis bus connected")
			}
		}
	}

	authSvc := &services.AuthService{
		Users:     repos.NewUserRepo(db),
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		Timeout:   cfg.DB.QueryTimeout,
	}

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code >= 500 {
				applog.Error(c, "server.error", err, nil)
				return c.Status(code).JSON(fiber.Map{"error": "temporary failure, please retry", "retryable": true})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if route := c.Route(); route != nil && route.Path != "/" {
			metrics.IncHTTP(c.Method() + " " + route.Path)
		}
		return err
	})
	app.Use(handlers.AttachUser(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/messages/stream") || p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	deps := handlers.NewDeps(db, cfg, authSvc, bus)

	// ---------- Auth ----------
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	})
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/login", loginLimiter, deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/me", handlers.RequireUser(), deps.AuthHandler.Me)
	app.Put("/profile", handlers.RequireUser(), deps.ProfileHandler.Update)

	// ---------- Jobs ----------
	app.Get("/jobs", deps.JobHandler.List)
	app.Post("/jobs", handlers.RequireUser(), deps.JobHandler.Create)
	app.Get("/jobs/:id", deps.JobHandler.Detail)
	app.Post("/jobs/:id/status", handlers.RequireUser(), deps.JobHandler.UpdateStatus)

	// ---------- Applications ----------
	app.Post("/jobs/:id/applications", handlers.RequireUser(), deps.ApplicationHandler.Apply)
	app.Get("/applications", handlers.RequireUser(), deps.ApplicationHandler.Mine)
	app.Post("/applications/:id/status", handlers.RequireUser(), deps.ApplicationHandler.Decide)
	app.Post("/applications/:id/withdraw", handlers.RequireUser(), deps.ApplicationHandler.Withdraw)
	app.Put("/applications/:id/schedule", handlers.RequireUser(), deps.ApplicationHandler.Schedule)
	app.Get("/schedule", handlers.RequireUser(), deps.ApplicationHandler.ScheduleList)

	// ---------- Craftsmen directory ----------
	app.Get("/craftsmen", deps.CraftsmanHandler.List)

	// ---------- Messaging ----------
	msgLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|msg"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.messages.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	app.Get("/messages", handlers.RequireUser(), deps.MessageHandler.History)
	app.Post("/messages", handlers.RequireUser(), msgLimiter, deps.MessageHandler.Send)
	app.Post("/messages/:id/read", handlers.RequireUser(), deps.MessageHandler.MarkRead)
	app.Get("/messages/unread", handlers.RequireUser(), deps.MessageHandler.Unread)
	app.Get("/messages/stream", handlers.RequireUser(), deps.StreamHandler.Stream)
	app.Get("/conversations", handlers.RequireUser(), deps.MessageHandler.Conversations)

	// ---------- Admin ----------
	admin := app.Group("/admin", handlers.RequireAdmin())
	admin.Get("/stats", deps.AdminHandler.Stats)

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.HTTP.Port
	logger.Info().Str("addr", addr).Msg("listening")
	if err := app.Listen(addr); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}

	if rb, ok := bus.(*realtime.RedisBus); ok {
		_ = rb.Close()
	} else if mb, ok := bus.(*realtime.MemoryBus); ok {
		mb.Close()
	}
	logger.Info().Msg("server stopped")
}
