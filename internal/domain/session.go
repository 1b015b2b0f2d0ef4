package domain

import "time"

// Session is the authenticated identity exposed to the rest of the client.
// A nil *Session means nobody is logged in.
type Session struct {
	Username   string         `json:"username"`
	Role       Role           `json:"role"`
	Department *DepartmentRef `json:"department"`
	// ExpiresAt is nil for tokens without an exp claim.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// DepartmentID returns the session's department id, or 0 when unassigned.
func (s *Session) DepartmentID() int64 {
	if s == nil || s.Department == nil {
		return 0
	}
	return s.Department.ID
}
