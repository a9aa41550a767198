// Package server assembles the REST API and the gRPC health server.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"task-manager/backend/internal/health"
	identityhandler "task-manager/backend/internal/identity/handler"
	"task-manager/backend/internal/server/middleware"
	taskhandler "task-manager/backend/internal/task/handler"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	bodyLimit    = 1 << 20
)

// Deps holds the services the REST API is built from.
type Deps struct {
	// Auth serves /api/auth and verifies bearer tokens on /api/tasks.
	Auth interface {
		identityhandler.AuthAPI
		middleware.TokenVerifier
	}
	// Tasks serves /api/tasks.
	Tasks taskhandler.TaskAPI
	// Health backs /healthz. If nil, /healthz always reports ok.
	Health *health.Registry
}

// NewApp returns the fiber app with every route mounted:
//
//	GET    /healthz
//	POST   /api/auth/register
//	POST   /api/auth/login
//	POST   /api/tasks
//	GET    /api/tasks?page&limit
//	GET    /api/tasks/:id
//	PUT    /api/tasks/:id
//	DELETE /api/tasks/:id
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "task-manager",
		ErrorHandler:          middleware.ErrorHandler,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(middleware.Telemetry("/healthz"))

	registry := deps.Health
	if registry == nil {
		registry = &health.Registry{}
	}
	app.Get("/healthz", health.Handler(registry))

	api := app.Group("/api")
	identityhandler.NewAuthHandler(deps.Auth).Mount(api)
	taskhandler.NewTaskHandler(deps.Tasks).Mount(api, middleware.RequireAuth(deps.Auth))

	return app
}
