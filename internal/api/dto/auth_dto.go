package dto

import (
	"time"

	"github.com/spec-kit/docdesk/internal/domain"
)

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// MeResponse describes the caller of GET /api/auth/me.
type MeResponse struct {
	Username   string                `json:"username"`
	Role       domain.Role           `json:"role"`
	Department *domain.DepartmentRef `json:"department"`
	ExpiresAt  *time.Time            `json:"expiresAt,omitempty"`
}
