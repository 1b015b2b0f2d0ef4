package dto

// DepartmentRequest payload for creating or renaming a department.
type DepartmentRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}
