package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/repository"
)

// ErrStorageUnavailable marks a failed read or write of the token slot.
// It is logged and absorbed, never returned to callers.
var ErrStorageUnavailable = errors.New("token storage unavailable")

// TokenSlot is the persistence boundary for the bearer token. A failing
// backend degrades to "no token".
type TokenSlot struct {
	repo   repository.TokenRepository
	logger *zap.Logger
}

// NewTokenSlot wraps repo.
func NewTokenSlot(repo repository.TokenRepository, logger *zap.Logger) *TokenSlot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSlot{repo: repo, logger: logger}
}

// Load returns the stored token, if any.
func (s *TokenSlot) Load(ctx context.Context) (string, bool) {
	token, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.warn("load", err)
		}
		return "", false
	}
	return token, true
}

// Persist stores token.
func (s *TokenSlot) Persist(ctx context.Context, token string) {
	if err := s.repo.Set(ctx, token); err != nil {
		s.warn("persist", err)
	}
}

// Evict removes the stored token. Safe to call on an empty slot.
func (s *TokenSlot) Evict(ctx context.Context) {
	if err := s.repo.Delete(ctx); err != nil {
		s.warn("evict", err)
	}
}

func (s *TokenSlot) warn(op string, err error) {
	s.logger.Warn("token slot operation failed",
		zap.String("op", op),
		zap.Error(fmt.Errorf("%w: %v", ErrStorageUnavailable, err)))
}
