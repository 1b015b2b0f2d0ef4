package dto

import "github.com/spec-kit/docdesk/internal/domain"

// DepartmentIDRef is the {id} form used when assigning a department.
type DepartmentIDRef struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// UserRequest payload for creating or updating a user. An empty password
// on update keeps the current one.
type UserRequest struct {
	Username   string           `json:"username" validate:"required,min=3,max=64"`
	Password   string           `json:"password,omitempty" validate:"omitempty,min=4"`
	Role       domain.Role      `json:"role" validate:"required,oneof=DIRECTOR DEPT_HEAD EMPLOYEE USER"`
	Department *DepartmentIDRef `json:"department"`
}

// DepartmentID returns the requested department id, or 0.
func (r UserRequest) DepartmentID() int64 {
	if r.Department == nil {
		return 0
	}
	return r.Department.ID
}
