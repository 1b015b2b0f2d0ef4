package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/docdesk/internal/domain"
)

// DepartmentRepository manages the fixture backend's departments.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	mu          sync.RWMutex
	nextID      int64
	departments map[int64]domain.Department
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository() DepartmentRepository {
	return &departmentRepository{departments: make(map[int64]domain.Department)}
}

func (r *departmentRepository) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.departments {
		if existing.Name == dept.Name {
			return ErrConflict
		}
	}
	r.nextID++
	dept.ID = r.nextID
	if dept.CreatedAt.IsZero() {
		dept.CreatedAt = time.Now().UTC()
	}
	r.departments[dept.ID] = *dept
	return nil
}

func (r *departmentRepository) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.departments[dept.ID]
	if !ok {
		return ErrNotFound
	}
	dept.CreatedAt = existing.CreatedAt
	r.departments[dept.ID] = *dept
	return nil
}

func (r *departmentRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[id]; !ok {
		return ErrNotFound
	}
	delete(r.departments, id)
	return nil
}

func (r *departmentRepository) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dept, ok := r.departments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &dept, nil
}

func (r *departmentRepository) List(_ context.Context) ([]domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Department, 0, len(r.departments))
	for _, dept := range r.departments {
		result = append(result, dept)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
