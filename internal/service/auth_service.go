package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/config"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/repository"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// AuthService issues tokens for the fixture backend.
type AuthService struct {
	users        repository.UserRepository
	departments  repository.DepartmentRepository
	tokenMgr     *auth.TokenManager
	bcryptCost   int
	seedPassword string
	logger       *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	Logger         *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:        deps.UserRepo,
		departments:  deps.DepartmentRepo,
		tokenMgr:     auth.NewTokenManager(cfg.Stub.JWTSecret, cfg.Stub.AccessTokenTTLMinutes),
		bcryptCost:   cfg.Stub.BcryptCost,
		seedPassword: cfg.Stub.SeedPassword,
		logger:       logger,
	}
}

// TokenManager exposes the signer for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, apperrors.NewUnauthorized("Bad credentials")
		}
		return "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("Bad credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(*user)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("issued token", zap.String("username", user.Username), zap.Time("expires_at", exp))
	return token, exp, nil
}

type seedUser struct {
	username   string
	role       domain.Role
	department string
}

var seedDepartments = []string{"Finance", "Legal"}

var seedUsers = []seedUser{
	{username: "director", role: domain.RoleDirector},
	{username: "head", role: domain.RoleDeptHead, department: "Finance"},
	{username: "alice", role: domain.RoleEmployee, department: "Finance"},
	{username: "bob", role: domain.RoleEmployee, department: "Legal"},
	{username: "guest", role: domain.RoleUser},
}

// Seed creates the demo departments and one account per role, all
// sharing the configured seed password.
func (s *AuthService) Seed(ctx context.Context) error {
	byName := make(map[string]*domain.Department, len(seedDepartments))
	for _, name := range seedDepartments {
		dept := &domain.Department{Name: name}
		if err := s.departments.Create(ctx, dept); err != nil {
			return err
		}
		byName[name] = dept
	}

	hash, err := auth.HashPassword(s.seedPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	for _, seed := range seedUsers {
		user := &domain.User{Username: seed.username, Role: seed.role, PasswordHash: hash}
		if dept, ok := byName[seed.department]; ok {
			user.Department = dept.Ref()
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
	}
	s.logger.Info("seeded fixture accounts", zap.Int("users", len(seedUsers)), zap.Int("departments", len(seedDepartments)))
	return nil
}
