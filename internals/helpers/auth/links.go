package helper

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBLinks resolves profile links straight from the tables.
type DBLinks struct {
	DB *gorm.DB
}

func NewDBLinks(db *gorm.DB) *DBLinks { return &DBLinks{DB: db} }

func (l *DBLinks) GuardianStudentIDs(ctx context.Context, tenantID uuid.UUID, cl Claims) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := l.DB.WithContext(ctx).
		Table("apoderados").
		Where("apoderado_tenant_id = ? AND apoderado_deleted_at IS NULL AND apoderado_estudiante_id IS NOT NULL", tenantID)
	if cl.ProfileID != nil {
		q = q.Where("(apoderado_user_id = ? OR apoderado_id = ?)", cl.UserID, *cl.ProfileID)
	} else {
		q = q.Where("apoderado_user_id = ?", cl.UserID)
	}
	err := q.Pluck("apoderado_estudiante_id", &ids).Error
	return ids, err
}

func (l *DBLinks) TeacherCourseIDs(ctx context.Context, tenantID, teacherUserID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := l.DB.WithContext(ctx).Raw(`
		SELECT subject_course_id FROM subjects
		 WHERE subject_tenant_id = ? AND subject_teacher_user_id = ? AND subject_deleted_at IS NULL
		UNION
		SELECT course_id FROM courses
		 WHERE course_tenant_id = ? AND course_head_teacher_user_id = ? AND course_deleted_at IS NULL
	`, tenantID, teacherUserID, tenantID, teacherUserID).Scan(&ids).Error
	return ids, err
}

func (l *DBLinks) StudentCourseIDs(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := l.DB.WithContext(ctx).
		Table("enrollments").
		Distinct("enrollment_course_id").
		Where("enrollment_tenant_id = ? AND enrollment_estudiante_id IN ? AND enrollment_deleted_at IS NULL", tenantID, studentIDs).
		Where("enrollment_status IN ?", []string{"pre-matricula", "confirmada"}).
		Pluck("enrollment_course_id", &ids).Error
	return ids, err
}

// ScopeFromCtx: claims + scope for list endpoints (?tenantId= honoured for admin only).
func ScopeFromCtx(c *fiber.Ctx, links LinkResolver) (Claims, Scope, error) {
	cl, err := GetClaims(c)
	if err != nil {
		return cl, Scope{}, err
	}
	s, err := ResolveScope(c.UserContext(), links, cl, c.Query("tenantId"))
	return cl, s, err
}
