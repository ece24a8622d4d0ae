package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"colegio_backend/internals/constants"
)

func TestCanAssign(t *testing.T) {
	cases := []struct {
		caller constants.Role
		target string
		ok     bool
	}{
		{constants.RoleAdmin, "admin", true},
		{constants.RoleSostenedor, "admin", false},
		{constants.RoleSostenedor, "sostenedor", true},
		{constants.RoleDirector, "sostenedor", false},
		{constants.RoleDirector, "Teacher", true},
		{constants.RoleDirector, "utp", true},
		{constants.RoleAdmin, "student", false},
		{constants.RoleAdmin, "apoderado", false},
		{constants.RoleAdmin, "secretary", false},
	}
	for _, tc := range cases {
		_, ok := CanAssign(tc.caller, tc.target)
		assert.Equal(t, tc.ok, ok, "%s → %s", tc.caller, tc.target)
	}
}
