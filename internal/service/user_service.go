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

// UserService manages accounts on the fixture backend.
type UserService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	bcryptCost  int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, departments repository.DepartmentRepository, bcryptCost int) *UserService {
	return &UserService{users: users, departments: departments, bcryptCost: bcryptCost}
}

// List returns the users visible to actor: everyone for a director, the
// own department for a department head.
func (s *UserService) List(ctx context.Context, actor *domain.User, query dto.ListQuery) (domain.Page[domain.User], error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return domain.Page[domain.User]{}, apperrors.MapError(err)
	}
	visible := make([]domain.User, 0, len(all))
	for _, user := range all {
		if auth.CanEditUser(sessionOf(actor), user) {
			visible = append(visible, user)
		}
	}
	return domain.Paginate(visible, query.Page, query.Size), nil
}

// Create adds an account. Only directors may.
func (s *UserService) Create(ctx context.Context, actor *domain.User, req dto.UserRequest) (*domain.User, error) {
	if !auth.CanManageUsers(sessionOf(actor)) {
		return nil, apperrors.NewForbidden("only directors can create users")
	}
	if req.Password == "" {
		return nil, apperrors.NewValidationError("password required", map[string]any{"Password": "required"})
	}
	dept, err := s.resolveDepartment(ctx, req.DepartmentID())
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Username: req.Username, Role: req.Role, Department: dept, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": req.Username})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update edits an account. Department heads may only edit users of their
// own department and may not move them elsewhere or promote them to director.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id int64, req dto.UserRequest) (*domain.User, error) {
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err, id)
	}
	session := sessionOf(actor)
	if !auth.CanEditUser(session, *target) {
		return nil, apperrors.NewForbidden("not allowed to edit this user")
	}
	if session.Role == domain.RoleDeptHead {
		if req.DepartmentID() != session.DepartmentID() || req.Role == domain.RoleDirector {
			return nil, apperrors.NewForbidden("department heads manage their own department only")
		}
	}

	dept, err := s.resolveDepartment(ctx, req.DepartmentID())
	if err != nil {
		return nil, err
	}
	target.Username = req.Username
	target.Role = req.Role
	target.Department = dept
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		target.PasswordHash = hash
	}
	if err := s.users.Update(ctx, target); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": req.Username})
		}
		return nil, s.notFound(err, id)
	}
	return target, nil
}

// Delete removes an account. Only directors may.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if !auth.CanManageUsers(sessionOf(actor)) {
		return apperrors.NewForbidden("only directors can delete users")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return s.notFound(err, id)
	}
	return nil
}

func (s *UserService) resolveDepartment(ctx context.Context, id int64) (*domain.DepartmentRef, error) {
	if id == 0 {
		return nil, nil
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": id})
		}
		return nil, apperrors.MapError(err)
	}
	return dept.Ref(), nil
}

func (s *UserService) notFound(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
