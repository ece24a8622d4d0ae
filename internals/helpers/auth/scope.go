package helper

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
)

// LinkResolver answers the profile-link questions visibility depends on.
type LinkResolver interface {
	// students the guardian user is linked to (Apoderado → Estudiante)
	GuardianStudentIDs(ctx context.Context, tenantID uuid.UUID, cl Claims) ([]uuid.UUID, error)
	// courses where the teacher has a subject assignment or is head teacher
	TeacherCourseIDs(ctx context.Context, tenantID, teacherUserID uuid.UUID) ([]uuid.UUID, error)
	// courses the given students are enrolled in
	StudentCourseIDs(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID) ([]uuid.UUID, error)
}

// Scope is the per-request visibility window.
type Scope struct {
	Role       constants.Role
	UserID     uuid.UUID
	TenantID   *uuid.UUID // nil = every tenant (admin only)
	StudentIDs []uuid.UUID
	CourseIDs  []uuid.UUID
	Empty      bool // restricted role without links: nothing visible
}

// Restricted: role is narrowed below tenant-wide.
func (s Scope) Restricted() bool {
	switch s.Role {
	case constants.RoleStudent, constants.RoleApoderado, constants.RoleTeacher:
		return true
	}
	return false
}

// ResolveScope evaluates the visibility rules once for the request.
//   - admin: unrestricted, optionally narrowed by requestedTenant
//   - everyone else: token tenant, never the client-supplied one
//   - student: own profile; apoderado: linked students; teacher: assigned courses
//   - missing links ⇒ Empty (never unrestricted)
func ResolveScope(ctx context.Context, links LinkResolver, cl Claims, requestedTenant string) (Scope, error) {
	s := Scope{Role: cl.Role, UserID: cl.UserID}

	if cl.Role == constants.RoleAdmin {
		if raw := strings.TrimSpace(requestedTenant); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return s, fiber.NewError(fiber.StatusBadRequest, "tenantId inválido")
			}
			s.TenantID = &id
		}
		return s, nil
	}

	if cl.TenantID == nil {
		// non-admin without tenant cannot see anything
		s.Empty = true
		return s, nil
	}
	tid := *cl.TenantID
	s.TenantID = &tid

	switch cl.Role {
	case constants.RoleStudent:
		if cl.ProfileID == nil {
			s.Empty = true
			return s, nil
		}
		s.StudentIDs = []uuid.UUID{*cl.ProfileID}
		courses, err := links.StudentCourseIDs(ctx, tid, s.StudentIDs)
		if err != nil {
			return s, err
		}
		s.CourseIDs = courses

	case constants.RoleApoderado:
		ids, err := links.GuardianStudentIDs(ctx, tid, cl)
		if err != nil {
			return s, err
		}
		s.StudentIDs = lo.Uniq(ids)
		if len(s.StudentIDs) == 0 {
			s.Empty = true
			return s, nil
		}
		courses, err := links.StudentCourseIDs(ctx, tid, s.StudentIDs)
		if err != nil {
			return s, err
		}
		s.CourseIDs = courses

	case constants.RoleTeacher:
		ids, err := links.TeacherCourseIDs(ctx, tid, cl.UserID)
		if err != nil {
			return s, err
		}
		s.CourseIDs = lo.Uniq(ids)
		if len(s.CourseIDs) == 0 {
			s.Empty = true
		}

	case constants.RoleSostenedor, constants.RoleDirector, constants.RoleUTP:
		// tenant-wide

	default:
		s.Empty = true
	}
	return s, nil
}

/* =======================================================================
   Conditions
======================================================================= */

// Columns names the scoping columns of a table. Empty = table has no such column.
type Columns struct {
	Tenant  string
	Student string
	Course  string
	// rows with NULL course are tenant-wide (e.g. school events)
	CourseNullable bool
}

type Cond struct {
	SQL  string
	Args []any
}

// Conds builds the WHERE fragments for a table under this scope.
func (s Scope) Conds(cols Columns) []Cond {
	if s.Empty {
		return []Cond{{SQL: "1 = 0"}}
	}
	out := make([]Cond, 0, 2)
	if s.TenantID != nil && cols.Tenant != "" {
		out = append(out, Cond{SQL: cols.Tenant + " = ?", Args: []any{*s.TenantID}})
	}
	if !s.Restricted() {
		return out
	}

	switch s.Role {
	case constants.RoleStudent, constants.RoleApoderado:
		switch {
		case cols.Student != "":
			out = append(out, Cond{SQL: cols.Student + " IN ?", Args: []any{s.StudentIDs}})
		case cols.Course != "":
			out = append(out, s.courseCond(cols))
		default:
			out = append(out, Cond{SQL: "1 = 0"})
		}

	case constants.RoleTeacher:
		switch {
		case cols.Course != "":
			out = append(out, s.courseCond(cols))
		case cols.Student != "":
			out = append(out, Cond{
				SQL: cols.Student + ` IN (SELECT enrollment_estudiante_id FROM enrollments
					WHERE enrollment_course_id IN ? AND enrollment_deleted_at IS NULL)`,
				Args: []any{s.CourseIDs},
			})
		default:
			out = append(out, Cond{SQL: "1 = 0"})
		}
	}
	return out
}

func (s Scope) courseCond(cols Columns) Cond {
	if len(s.CourseIDs) == 0 {
		if cols.CourseNullable {
			return Cond{SQL: cols.Course + " IS NULL"}
		}
		return Cond{SQL: "1 = 0"}
	}
	if cols.CourseNullable {
		return Cond{SQL: "(" + cols.Course + " IS NULL OR " + cols.Course + " IN ?)", Args: []any{s.CourseIDs}}
	}
	return Cond{SQL: cols.Course + " IN ?", Args: []any{s.CourseIDs}}
}

// Apply narrows q by the scope.
func (s Scope) Apply(q *gorm.DB, cols Columns) *gorm.DB {
	for _, c := range s.Conds(cols) {
		q = q.Where(c.SQL, c.Args...)
	}
	return q
}

// HasStudent: can the caller see this student at all.
func (s Scope) HasStudent(id uuid.UUID) bool {
	if s.Empty {
		return false
	}
	if s.Role == constants.RoleStudent || s.Role == constants.RoleApoderado {
		return lo.Contains(s.StudentIDs, id)
	}
	return true
}

// HasCourse: can the caller see this course at all.
func (s Scope) HasCourse(id uuid.UUID) bool {
	if s.Empty {
		return false
	}
	if s.Restricted() {
		return lo.Contains(s.CourseIDs, id)
	}
	return true
}

// InTenant: row belongs to a tenant visible in this scope.
func (s Scope) InTenant(id uuid.UUID) bool {
	return s.TenantID == nil || *s.TenantID == id
}
