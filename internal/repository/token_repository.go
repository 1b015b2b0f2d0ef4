package repository

import (
	"context"
	"sync"
)

// TokenRepository is the single key-value slot holding the bearer token.
type TokenRepository interface {
	// Get returns the stored token or ErrNotFound.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	// Delete removes the token. Deleting an empty slot is not an error.
	Delete(ctx context.Context) error
}

type memoryTokenRepository struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenRepository keeps the token in process memory only.
func NewMemoryTokenRepository() TokenRepository {
	return &memoryTokenRepository{}
}

func (r *memoryTokenRepository) Get(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.token == "" {
		return "", ErrNotFound
	}
	return r.token, nil
}

func (r *memoryTokenRepository) Set(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
	return nil
}

func (r *memoryTokenRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = ""
	return nil
}
