package constants

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin      Role = "admin" // superadmin, cross-tenant
	RoleSostenedor Role = "sostenedor"
	RoleDirector   Role = "director"
	RoleUTP        Role = "utp"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleApoderado  Role = "apoderado"
)

var AllRoles = []Role{
	RoleAdmin,
	RoleSostenedor,
	RoleDirector,
	RoleUTP,
	RoleTeacher,
	RoleStudent,
	RoleApoderado,
}

// ParseRole returns false for anything outside AllRoles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// IsStaff: tenant-wide visibility.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleSostenedor, RoleDirector, RoleUTP:
		return true
	}
	return false
}

// IsAdminTier: roles that review approval workflows.
func (r Role) IsAdminTier() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleUTP:
		return true
	}
	return false
}

// Plantilla del mensaje de rol no permitido
const (
	ErrRoleNotAllowed = "❌ Tu rol (%s) no tiene permiso para %s."
)

func RoleError(role Role, action string) string {
	if role == "" {
		role = "desconocido"
	}
	return fmt.Sprintf(ErrRoleNotAllowed, role, action)
}
