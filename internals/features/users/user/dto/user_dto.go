package dto

import (
	"github.com/samber/lo"

	"colegio_backend/internals/constants"
)

// staff roles manageable through /api/users; student and apoderado accounts
// are provisioned by the enrollment workflow.
var manageable = []constants.Role{
	constants.RoleAdmin, constants.RoleSostenedor, constants.RoleDirector,
	constants.RoleUTP, constants.RoleTeacher,
}

type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	FullName string  `json:"fullName" validate:"required,min=3,max=150"`
	Role     string  `json:"role" validate:"required"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=3,max=150"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// CanAssign: may caller give target to an account. Only admin hands out admin;
// only admin and sostenedor hand out sostenedor.
func CanAssign(caller constants.Role, target string) (constants.Role, bool) {
	r, ok := constants.ParseRole(target)
	if !ok || !lo.Contains(manageable, r) {
		return "", false
	}
	switch r {
	case constants.RoleAdmin:
		return r, caller == constants.RoleAdmin
	case constants.RoleSostenedor:
		return r, caller == constants.RoleAdmin || caller == constants.RoleSostenedor
	}
	return r, true
}
