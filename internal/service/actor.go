package service

import "github.com/spec-kit/docdesk/internal/domain"

// sessionOf views an authenticated user the way the permission
// predicates expect.
func sessionOf(user *domain.User) *domain.Session {
	if user == nil {
		return nil
	}
	return &domain.Session{Username: user.Username, Role: user.Role, Department: user.Department}
}
