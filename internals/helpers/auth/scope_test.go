package helper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/constants"
)

type fakeLinks struct {
	guardianStudents map[uuid.UUID][]uuid.UUID // by user id
	teacherCourses   map[uuid.UUID][]uuid.UUID
	studentCourses   map[uuid.UUID][]uuid.UUID
}

func (f fakeLinks) GuardianStudentIDs(_ context.Context, _ uuid.UUID, cl Claims) ([]uuid.UUID, error) {
	return f.guardianStudents[cl.UserID], nil
}

func (f fakeLinks) TeacherCourseIDs(_ context.Context, _ uuid.UUID, uid uuid.UUID) ([]uuid.UUID, error) {
	return f.teacherCourses[uid], nil
}

func (f fakeLinks) StudentCourseIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range ids {
		out = append(out, f.studentCourses[id]...)
	}
	return out, nil
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestAdminScopeIsUnrestricted(t *testing.T) {
	s, err := ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), Role: constants.RoleAdmin}, "")
	require.NoError(t, err)
	assert.Nil(t, s.TenantID)
	assert.Empty(t, s.Conds(Columns{Tenant: "x_tenant_id", Student: "x_student_id"}))

	tid := uuid.New()
	s, err = ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), Role: constants.RoleAdmin}, tid.String())
	require.NoError(t, err)
	require.NotNil(t, s.TenantID)
	assert.Equal(t, tid, *s.TenantID)

	_, err = ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), Role: constants.RoleAdmin}, "nope")
	assert.Error(t, err)
}

func TestNonAdminIgnoresRequestedTenant(t *testing.T) {
	own, other := uuid.New(), uuid.New()
	for _, role := range []constants.Role{constants.RoleSostenedor, constants.RoleDirector, constants.RoleUTP} {
		s, err := ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), TenantID: ptr(own), Role: role}, other.String())
		require.NoError(t, err)
		require.NotNil(t, s.TenantID)
		assert.Equal(t, own, *s.TenantID, role)
		conds := s.Conds(Columns{Tenant: "estudiante_tenant_id"})
		require.Len(t, conds, 1)
		assert.Equal(t, own, conds[0].Args[0])
	}
}

func TestEveryNonAdminScopeCarriesTenantFilter(t *testing.T) {
	tid := uuid.New()
	teacher, guardian, student := uuid.New(), uuid.New(), uuid.New()
	links := fakeLinks{
		teacherCourses:   map[uuid.UUID][]uuid.UUID{teacher: {uuid.New()}},
		guardianStudents: map[uuid.UUID][]uuid.UUID{guardian: {student}},
		studentCourses:   map[uuid.UUID][]uuid.UUID{student: {uuid.New()}},
	}
	claims := []Claims{
		{UserID: uuid.New(), TenantID: ptr(tid), Role: constants.RoleDirector},
		{UserID: teacher, TenantID: ptr(tid), Role: constants.RoleTeacher},
		{UserID: guardian, TenantID: ptr(tid), Role: constants.RoleApoderado},
		{UserID: uuid.New(), TenantID: ptr(tid), Role: constants.RoleStudent, ProfileID: ptr(student)},
	}
	for _, cl := range claims {
		s, err := ResolveScope(context.Background(), links, cl, "")
		require.NoError(t, err)
		conds := s.Conds(Columns{Tenant: "grade_tenant_id", Student: "grade_estudiante_id"})
		require.NotEmpty(t, conds, cl.Role)
		assert.Equal(t, "grade_tenant_id = ?", conds[0].SQL, cl.Role)
		assert.Equal(t, tid, conds[0].Args[0], cl.Role)
	}
}

func TestStudentWithoutProfileSeesNothing(t *testing.T) {
	s, err := ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), TenantID: ptr(uuid.New()), Role: constants.RoleStudent}, "")
	require.NoError(t, err)
	assert.True(t, s.Empty)
	assert.Equal(t, []Cond{{SQL: "1 = 0"}}, s.Conds(Columns{Tenant: "t", Student: "s"}))
}

func TestUnlinkedGuardianSeesNothing(t *testing.T) {
	s, err := ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), TenantID: ptr(uuid.New()), Role: constants.RoleApoderado}, "")
	require.NoError(t, err)
	assert.True(t, s.Empty)
	assert.False(t, s.HasStudent(uuid.New()))
}

func TestTeacherWithoutAssignmentsSeesNothing(t *testing.T) {
	s, err := ResolveScope(context.Background(), fakeLinks{}, Claims{UserID: uuid.New(), TenantID: ptr(uuid.New()), Role: constants.RoleTeacher}, "")
	require.NoError(t, err)
	assert.True(t, s.Empty)
	assert.Equal(t, "1 = 0", s.Conds(Columns{Tenant: "t", Course: "c"})[0].SQL)
}

func TestTeacherScopedByCourses(t *testing.T) {
	tid, teacher, c1, c2 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	links := fakeLinks{teacherCourses: map[uuid.UUID][]uuid.UUID{teacher: {c1, c2, c1}}}
	s, err := ResolveScope(context.Background(), links, Claims{UserID: teacher, TenantID: ptr(tid), Role: constants.RoleTeacher}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{c1, c2}, s.CourseIDs)

	conds := s.Conds(Columns{Tenant: "evaluation_tenant_id", Course: "evaluation_course_id"})
	require.Len(t, conds, 2)
	assert.Equal(t, "evaluation_course_id IN ?", conds[1].SQL)

	// student-owned rows without a course column go through enrollments
	conds = s.Conds(Columns{Tenant: "estudiante_tenant_id", Student: "estudiante_id"})
	require.Len(t, conds, 2)
	assert.Contains(t, conds[1].SQL, "enrollment_course_id IN ?")

	assert.True(t, s.HasCourse(c1))
	assert.False(t, s.HasCourse(uuid.New()))
}

func TestGuardianScopedByLinkedStudents(t *testing.T) {
	tid, guardian, kid, course := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	links := fakeLinks{
		guardianStudents: map[uuid.UUID][]uuid.UUID{guardian: {kid}},
		studentCourses:   map[uuid.UUID][]uuid.UUID{kid: {course}},
	}
	s, err := ResolveScope(context.Background(), links, Claims{UserID: guardian, TenantID: ptr(tid), Role: constants.RoleApoderado}, "")
	require.NoError(t, err)
	assert.True(t, s.HasStudent(kid))
	assert.False(t, s.HasStudent(uuid.New()))
	assert.Equal(t, []uuid.UUID{course}, s.CourseIDs)

	// school-wide events stay visible
	conds := s.Conds(Columns{Tenant: "event_tenant_id", Course: "event_course_id", CourseNullable: true})
	assert.Equal(t, "(event_course_id IS NULL OR event_course_id IN ?)", conds[1].SQL)
}
