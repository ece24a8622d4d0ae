package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" UTP ")
	assert.True(t, ok)
	assert.Equal(t, RoleUTP, r)

	_, ok = ParseRole("secretary")
	assert.False(t, ok, "secretary is not part of the user role enum")

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestOnlyAdminTierReviews(t *testing.T) {
	assert.ElementsMatch(t,
		[]Role{RoleAdmin, RoleDirector, RoleUTP},
		RolesWith(CapApprovalReview))
	for _, r := range AllRoles {
		assert.Equal(t, r.IsAdminTier(), Can(r, CapApprovalReview), "role %s", r)
	}
}

func TestOnlySostenedorOverridesDebt(t *testing.T) {
	assert.Equal(t, []Role{RoleSostenedor}, RolesWith(CapDebtOverride))
}

func TestTeacherCapabilities(t *testing.T) {
	assert.True(t, Can(RoleTeacher, CapApprovalSubmit))
	assert.True(t, Can(RoleTeacher, CapEvaluationWrite))
	assert.False(t, Can(RoleTeacher, CapApprovalReview))
	assert.False(t, Can(RoleTeacher, CapEnrollmentWrite))
}

func TestUnknownRoleHasNothing(t *testing.T) {
	assert.False(t, Can(Role("secretary"), CapMessageSend))
	assert.False(t, Can(Role(""), CapReportRead))
}

func TestStaffFlags(t *testing.T) {
	assert.True(t, RoleSostenedor.IsStaff())
	assert.False(t, RoleSostenedor.IsAdminTier())
	assert.False(t, RoleTeacher.IsStaff())
	assert.False(t, RoleApoderado.IsStaff())
}

func TestCapabilitiesOf(t *testing.T) {
	got := CapabilitiesOf(RoleStudent)
	assert.Equal(t, []Capability{CapMessageSend}, got)
	assert.Empty(t, CapabilitiesOf(Role("secretary")))

	all := CapabilitiesOf(RoleAdmin)
	assert.IsIncreasing(t, all)
	assert.Contains(t, all, CapTenantManage)
}
