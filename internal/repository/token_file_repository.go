package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fileTokenRepository struct {
	path string
}

// NewFileTokenRepository stores the token in a single owner-only file,
// the CLI equivalent of a browser's local storage slot.
func NewFileTokenRepository(path string) TokenRepository {
	return &fileTokenRepository{path: path}
}

func (r *fileTokenRepository) Get(_ context.Context) (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading token file %s: %w", r.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Set writes through a temporary file and renames it so a reader never
// sees a partial token.
func (r *fileTokenRepository) Set(_ context.Context, token string) error {
	directory := filepath.Dir(r.path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating token directory %s: %w", directory, err)
	}

	tmp, err := os.CreateTemp(directory, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if _, err := tmp.WriteString(token + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replacing token file %s: %w", r.path, err)
	}
	return nil
}

func (r *fileTokenRepository) Delete(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file %s: %w", r.path, err)
	}
	return nil
}
