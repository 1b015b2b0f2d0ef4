package domain

import "time"

// MaxUploadBytes is the largest file the backend accepts.
const MaxUploadBytes = 1 << 20

// Document is an uploaded file owned by a user and a department.
type Document struct {
	ID          int64          `json:"id"`
	Filename    string         `json:"filename"`
	Size        int64          `json:"size"`
	ContentType string         `json:"contentType,omitempty"`
	Owner       *UserRef       `json:"owner"`
	Department  *DepartmentRef `json:"department"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// DepartmentID returns the owning department id, or 0.
func (d Document) DepartmentID() int64 {
	if d.Department == nil {
		return 0
	}
	return d.Department.ID
}

// OwnerUsername returns the owner's username, or "".
func (d Document) OwnerUsername() string {
	if d.Owner == nil {
		return ""
	}
	return d.Owner.Username
}
