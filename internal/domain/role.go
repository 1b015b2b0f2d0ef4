package domain

// Role is the RBAC role carried in the token claims.
type Role string

const (
	RoleDirector Role = "DIRECTOR"
	RoleDeptHead Role = "DEPT_HEAD"
	RoleEmployee Role = "EMPLOYEE"
	RoleUser     Role = "USER"
)

// Roles lists every role in descending order of privilege.
var Roles = []Role{RoleDirector, RoleDeptHead, RoleEmployee, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleDeptHead, RoleEmployee, RoleUser:
		return true
	}
	return false
}

// Label returns a human readable name.
func (r Role) Label() string {
	switch r {
	case RoleDirector:
		return "Director"
	case RoleDeptHead:
		return "Department head"
	case RoleEmployee:
		return "Employee"
	case RoleUser:
		return "User"
	}
	return string(r)
}
