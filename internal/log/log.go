// Package log keeps request logging action-oriented: every line names the
// thing that happened (auth.login.fail, message.send) plus request context
// pulled from the Fiber ctx.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/iTeLLiiX/CraftConnect/internal/config"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures the package logger from config. The returned closer is
// non-nil only when logging to a file.
func Setup(cfg config.LoggingConfig, app config.AppConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil {
		level = parsed
	}

	output := io.Writer(os.Stdout)
	var closer io.Closer
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "stderr":
		output = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = f
		closer = f
	}

	if strings.ToLower(strings.TrimSpace(cfg.Format)) == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Logger()
	return closer, nil
}

// Logger exposes the configured logger for components that log outside a
// request (realtime bus, startup).
func Logger() *zerolog.Logger { return &logger }

func event(ev *zerolog.Event, c *fiber.Ctx, action string, fields map[string]any) {
	ev.Str("action", action)
	if c != nil {
		ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev.Str("req_id", rid)
		}
	}
	for k, v := range fields {
		ev.Interface(k, v)
	}
	ev.Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	event(logger.Info(), c, action, fields)
}

// Audit records state-changing user actions (login, send, status change).
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	event(logger.Info().Str("kind", "audit"), c, action, fields)
}

// Security records denied access and validation rejections.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	event(logger.Warn().Str("kind", "security"), c, action, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	event(logger.Error().Err(err), c, action, fields)
}
