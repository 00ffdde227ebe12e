package auth

import "github.com/frahmantamala/hr-portal/internal/core/user"

// IsAllowed is the single role inclusion check used by guards and action permissions.
func IsAllowed(role user.Role, allowed ...user.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

var (
	employeeWriters  = []user.Role{user.RoleAdmin, user.RoleEditor}
	employeeDeleters = []user.Role{user.RoleAdmin}
)

// PermissionChecker answers which employee actions a role may perform.
type PermissionChecker interface {
	CanCreateEmployee(role user.Role) bool
	CanEditEmployee(role user.Role) bool
	CanDeleteEmployee(role user.Role) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) CanCreateEmployee(role user.Role) bool {
	return IsAllowed(role, employeeWriters...)
}

func (c *DefaultPermissionChecker) CanEditEmployee(role user.Role) bool {
	return IsAllowed(role, employeeWriters...)
}

func (c *DefaultPermissionChecker) CanDeleteEmployee(role user.Role) bool {
	return IsAllowed(role, employeeDeleters...)
}

// EmployeeWriters lists the roles allowed to open the employee form.
func EmployeeWriters() []user.Role {
	return append([]user.Role(nil), employeeWriters...)
}
