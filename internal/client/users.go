package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/session"
)

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, page, size int) (domain.Page[domain.User], error) {
	var out domain.Page[domain.User]
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/users", pageQuery(page, size)), nil, &out); err != nil {
		return domain.Page[domain.User]{}, err
	}
	c.remember(session.CollectionUsers, out)
	return out, nil
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, req dto.UserRequest) (*domain.User, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser edits an account. An empty password keeps the current one.
func (c *Client) UpdateUser(ctx context.Context, id int64, req dto.UserRequest) (*domain.User, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil)
}
