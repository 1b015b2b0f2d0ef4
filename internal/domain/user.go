package domain

import "time"

// User is an account known to the backend.
type User struct {
	ID           int64          `json:"id"`
	Username     string         `json:"username"`
	Role         Role           `json:"role"`
	Department   *DepartmentRef `json:"department"`
	PasswordHash string         `json:"-"`
	CreatedAt    time.Time      `json:"createdAt,omitzero"`
}

// UserRef is the embedded owner form used by documents.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Ref returns the embedded form of u.
func (u User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username}
}
