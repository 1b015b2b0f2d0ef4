package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/docdesk/internal/api/http/handlers"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Documents      *handlers.DocumentsHandler
	Users          *handlers.UsersHandler
	Departments    *handlers.DepartmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)

	documents := protected.Group("/documents")
	documents.Get("", cfg.Documents.List)
	documents.Get("/all", cfg.Documents.All)
	documents.Post("", auth.RequireRole(domain.RoleDirector, domain.RoleDeptHead, domain.RoleEmployee), cfg.Documents.Upload)
	documents.Get("/:id/download", cfg.Documents.Download)
	documents.Put("/:id", cfg.Documents.Update)
	documents.Delete("/:id", cfg.Documents.Delete)

	users := protected.Group("/users", auth.RequireRole(domain.RoleDirector, domain.RoleDeptHead))
	users.Get("", cfg.Users.List)
	users.Post("", auth.RequireRole(domain.RoleDirector), cfg.Users.Create)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireRole(domain.RoleDirector), cfg.Users.Delete)

	departments := protected.Group("/departments")
	departments.Get("", cfg.Departments.List)
	departments.Get("/all", cfg.Departments.All)
	departments.Post("", auth.RequireRole(domain.RoleDirector), cfg.Departments.Create)
	departments.Put("/:id", auth.RequireRole(domain.RoleDirector, domain.RoleDeptHead), cfg.Departments.Update)
	departments.Delete("/:id", auth.RequireRole(domain.RoleDirector, domain.RoleDeptHead), cfg.Departments.Delete)
}
