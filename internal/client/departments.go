package client

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/session"
)

// ListDepartments fetches one page of departments.
func (c *Client) ListDepartments(ctx context.Context, page, size int) (domain.Page[domain.Department], error) {
	var out domain.Page[domain.Department]
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/departments", pageQuery(page, size)), nil, &out); err != nil {
		return domain.Page[domain.Department]{}, err
	}
	c.remember(session.CollectionDepartments, out)
	return out, nil
}

// AllDepartments fetches every department.
func (c *Client) AllDepartments(ctx context.Context) ([]domain.Department, error) {
	var out []domain.Department
	if err := c.doJSON(ctx, http.MethodGet, "/api/departments/all", nil, &out); err != nil {
		return nil, err
	}
	c.remember(session.CollectionAllDepartments, out)
	return out, nil
}

// CreateDepartment adds a department.
func (c *Client) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	req := dto.DepartmentRequest{Name: name}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var dept domain.Department
	if err := c.doJSON(ctx, http.MethodPost, "/api/departments", req, &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

// UpdateDepartment renames a department.
func (c *Client) UpdateDepartment(ctx context.Context, id int64, name string) (*domain.Department, error) {
	req := dto.DepartmentRequest{Name: name}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var dept domain.Department
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/departments/%d", id), req, &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

// DeleteDepartment removes a department.
func (c *Client) DeleteDepartment(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/departments/%d", id), nil, nil)
}

// Preload fills the allDocuments and allDepartments collections in parallel.
func (c *Client) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.AllDocuments(ctx)
		return err
	})
	g.Go(func() error {
		_, err := c.AllDepartments(ctx)
		return err
	})
	return g.Wait()
}
