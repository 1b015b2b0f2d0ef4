package service

import (
	"context"
	"errors"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/repository"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// DepartmentService manages departments on the fixture backend.
type DepartmentService struct {
	departments repository.DepartmentRepository
}

// NewDepartmentService builds the service.
func NewDepartmentService(departments repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departments: departments}
}

// List returns one page of departments.
func (s *DepartmentService) List(ctx context.Context, query dto.ListQuery) (domain.Page[domain.Department], error) {
	all, err := s.All(ctx)
	if err != nil {
		return domain.Page[domain.Department]{}, err
	}
	return domain.Paginate(all, query.Page, query.Size), nil
}

// All returns every department.
func (s *DepartmentService) All(ctx context.Context) ([]domain.Department, error) {
	all, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return all, nil
}

// Create adds a department. Only directors may.
func (s *DepartmentService) Create(ctx context.Context, actor *domain.User, req dto.DepartmentRequest) (*domain.Department, error) {
	if !auth.CanCreateDepartment(sessionOf(actor)) {
		return nil, apperrors.NewForbidden("only directors can create departments")
	}
	dept := &domain.Department{Name: req.Name}
	if err := s.departments.Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("department already exists", map[string]any{"name": req.Name})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// Update renames a department.
func (s *DepartmentService) Update(ctx context.Context, actor *domain.User, id int64, req dto.DepartmentRequest) (*domain.Department, error) {
	if !auth.CanEditDepartment(sessionOf(actor), id) {
		return nil, apperrors.NewForbidden("not allowed to edit this department")
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err, id)
	}
	dept.Name = req.Name
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, s.notFound(err, id)
	}
	return dept, nil
}

// Delete removes a department.
func (s *DepartmentService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if !auth.CanDeleteDepartment(sessionOf(actor), id) {
		return apperrors.NewForbidden("not allowed to delete this department")
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		return s.notFound(err, id)
	}
	return nil
}

func (s *DepartmentService) notFound(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("department", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
