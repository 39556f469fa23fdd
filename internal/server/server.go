// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/footanalytics/datasync/internal/info"
	"github.com/footanalytics/datasync/internal/logger"
)

const (
	loggerName = "datasync:server"
)

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// Handler processes one webhook delivery.
type Handler func(ctx context.Context, headers http.Header, body []byte) error

// Server is the webhook ingestion surface used by push-based connectors.
type Server interface {
	AddRoute(method string, path string, handler Handler)
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config

	app *fiber.App
}

// NewServer builds a webhook server configured from the environment.
func NewServer(ctx context.Context) (Server, error) {
	cfg, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
		Immutable:             true, // handlers may read body and headers from goroutines after the request lifecycle
	})
	log := logger.FromContext(ctx)
	app.Use(logger.RequestMiddleware(log, []string{"/-/"}))

	statusRoutes(app, info.AppName, info.Version)

	return &impServer{
		app:    app,
		config: *cfg,
	}, nil
}

func (s *impServer) AddRoute(method string, path string, handler Handler) {
	s.app.Add(method, path, func(ctx *fiber.Ctx) error {
		if err := handler(ctx.UserContext(), ctx.GetReqHeaders(), ctx.Body()); err != nil {
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"statusCode": http.StatusInternalServerError,
				"error":      http.StatusText(http.StatusInternalServerError),
				"message":    "error processing webhook message",
			})
		}
		return ctx.SendStatus(http.StatusNoContent)
	})
}

func (s *impServer) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}

// statusRoutes registers the liveness and readiness probes under /-/.
func statusRoutes(app *fiber.App, serviceName, version string) {
	status := func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"name":    serviceName,
			"version": version,
			"status":  "OK",
		})
	}

	app.Get("/-/healthz", status)
	app.Get("/-/ready", status)
}
