package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/docdesk/internal/domain"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// CanEditDocument reports whether the session may rename a document.
// Directors edit anything, department heads edit documents of their own
// department, employees edit documents they own.
func CanEditDocument(s *domain.Session, doc domain.Document) bool {
	if s == nil {
		return false
	}
	switch s.Role {
	case domain.RoleDirector:
		return true
	case domain.RoleDeptHead:
		return s.DepartmentID() != 0 && s.DepartmentID() == doc.DepartmentID()
	case domain.RoleEmployee:
		return doc.OwnerUsername() != "" && doc.OwnerUsername() == s.Username
	}
	return false
}

// CanDeleteDocument follows the same rule as CanEditDocument.
func CanDeleteDocument(s *domain.Session, doc domain.Document) bool {
	return CanEditDocument(s, doc)
}

// CanManageUsers reports whether the session may create or delete users.
func CanManageUsers(s *domain.Session) bool {
	return s != nil && s.Role == domain.RoleDirector
}

// CanEditUser reports whether the session may edit target.
func CanEditUser(s *domain.Session, target domain.User) bool {
	if s == nil {
		return false
	}
	switch s.Role {
	case domain.RoleDirector:
		return true
	case domain.RoleDeptHead:
		return target.Department != nil && s.DepartmentID() != 0 && s.DepartmentID() == target.Department.ID
	}
	return false
}

// CanCreateDepartment reports whether the session may create departments.
func CanCreateDepartment(s *domain.Session) bool {
	return s != nil && s.Role == domain.RoleDirector
}

// CanEditDepartment reports whether the session may edit the department.
func CanEditDepartment(s *domain.Session, departmentID int64) bool {
	if s == nil {
		return false
	}
	switch s.Role {
	case domain.RoleDirector:
		return true
	case domain.RoleDeptHead:
		return s.DepartmentID() != 0 && s.DepartmentID() == departmentID
	}
	return false
}

// CanDeleteDepartment follows the same rule as CanEditDepartment.
func CanDeleteDepartment(s *domain.Session, departmentID int64) bool {
	return CanEditDepartment(s, departmentID)
}

// CountByDepartment counts documents per department id.
func CountByDepartment(docs []domain.Document) map[int64]int {
	counts := make(map[int64]int)
	for _, doc := range docs {
		if id := doc.DepartmentID(); id != 0 {
			counts[id]++
		}
	}
	return counts
}

// CountByOwner counts documents per owner id.
func CountByOwner(docs []domain.Document) map[int64]int {
	counts := make(map[int64]int)
	for _, doc := range docs {
		if doc.Owner != nil {
			counts[doc.Owner.ID]++
		}
	}
	return counts
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
