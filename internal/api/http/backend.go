package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/api/http/handlers"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/config"
	"github.com/spec-kit/docdesk/internal/persistence"
	"github.com/spec-kit/docdesk/internal/repository"
	"github.com/spec-kit/docdesk/internal/service"
)

// Backend is the in-memory fixture backend: a fiber app plus the
// services behind it.
type Backend struct {
	App  *fiber.App
	Auth *service.AuthService
}

// NewBackend builds and seeds the fixture backend. redis is optional and
// only feeds the readiness probe.
func NewBackend(ctx context.Context, cfg config.Config, logger *zap.Logger, redis *persistence.Redis) (*Backend, error) {
	userRepo := repository.NewUserRepository()
	departmentRepo := repository.NewDepartmentRepository()
	documentRepo := repository.NewDocumentRepository()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		Logger:         logger,
	})
	if err := authService.Seed(ctx); err != nil {
		return nil, err
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name + "-stub",
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, cfg.API.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Documents:      handlers.NewDocumentsHandler(service.NewDocumentService(documentRepo)),
		Users:          handlers.NewUsersHandler(service.NewUserService(userRepo, departmentRepo, cfg.Stub.BcryptCost)),
		Departments:    handlers.NewDepartmentsHandler(service.NewDepartmentService(departmentRepo)),
		AuthMiddleware: authMiddleware,
	})

	return &Backend{App: app, Auth: authService}, nil
}
