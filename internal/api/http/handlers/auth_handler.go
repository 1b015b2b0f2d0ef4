package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/service"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	token, _, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: token})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	session := principal.Session()
	return c.JSON(dto.MeResponse{
		Username:   session.Username,
		Role:       session.Role,
		Department: session.Department,
		ExpiresAt:  session.ExpiresAt,
	})
}
