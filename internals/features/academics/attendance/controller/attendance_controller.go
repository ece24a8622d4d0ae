package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"colegio_backend/internals/features/academics/attendance/dto"
	"colegio_backend/internals/features/academics/attendance/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type AttendanceController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var attendanceCols = helperAuth.Columns{
	Tenant:  "attendance_tenant_id",
	Student: "attendance_estudiante_id",
	Course:  "attendance_course_id",
}

// GET /api/attendance?courseId=&estudianteId=&from=&to=&status=
func (h *AttendanceController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Attendance{}), attendanceCols)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where("attendance_course_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("estudianteId"))); err == nil {
		q = q.Where("attendance_estudiante_id = ?", id)
	}
	if d, err := time.Parse(dto.DateLayout, c.Query("from")); err == nil {
		q = q.Where("attendance_date >= ?", d)
	}
	if d, err := time.Parse(dto.DateLayout, c.Query("to")); err == nil {
		q = q.Where("attendance_date <= ?", d)
	}
	if s := strings.TrimSpace(c.Query("status")); model.IsValidStatus(s) {
		q = q.Where("attendance_status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 100, 1000)
	var rows []model.Attendance
	if err := q.Order("attendance_date DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// POST /api/attendance/bulk: upsert per (course, subject, date, estudiante).
func (h *AttendanceController) Bulk(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.BulkAttendanceRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if !scope.HasCourse(req.CourseID) {
		return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
	}
	date := req.ParsedDate()
	ids := lo.Uniq(lo.Map(req.Marks, func(m dto.AttendanceMark, _ int) uuid.UUID { return m.EstudianteID }))
	if len(ids) != len(req.Marks) {
		return helper.JsonError(c, fiber.StatusBadRequest, "estudiante repetido en la lista")
	}

	var created, updated int
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))",
			"attendance:"+req.CourseID.String()+":"+req.Date).Error; err != nil {
			return err
		}

		var enrolled []uuid.UUID
		if err := tx.Table("enrollments").
			Where("enrollment_tenant_id = ? AND enrollment_course_id = ? AND enrollment_estudiante_id IN ?", tenantID, req.CourseID, ids).
			Where("enrollment_deleted_at IS NULL AND enrollment_status NOT IN ('retirada','anulada')").
			Pluck("enrollment_estudiante_id", &enrolled).Error; err != nil {
			return err
		}
		if missing, _ := lo.Difference(ids, enrolled); len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "estudiante no matriculado en el curso: "+missing[0].String())
		}

		q := tx.Where("attendance_tenant_id = ? AND attendance_course_id = ? AND attendance_date = ?", tenantID, req.CourseID, date)
		if req.SubjectID != nil {
			q = q.Where("attendance_subject_id = ?", *req.SubjectID)
		} else {
			q = q.Where("attendance_subject_id IS NULL")
		}
		var existing []model.Attendance
		if err := q.Find(&existing).Error; err != nil {
			return err
		}
		byStudent := lo.KeyBy(existing, func(a model.Attendance) uuid.UUID { return a.AttendanceEstudianteID })

		for _, m := range req.Marks {
			if row, ok := byStudent[m.EstudianteID]; ok {
				row.AttendanceStatus = m.Status
				row.AttendanceNote = m.Note
				row.AttendanceRecordedBy = cl.UserID
				if err := tx.Save(&row).Error; err != nil {
					return err
				}
				updated++
				continue
			}
			row := model.Attendance{
				AttendanceTenantID:     tenantID,
				AttendanceCourseID:     req.CourseID,
				AttendanceSubjectID:    req.SubjectID,
				AttendanceEstudianteID: m.EstudianteID,
				AttendanceDate:         date,
				AttendanceStatus:       m.Status,
				AttendanceNote:         m.Note,
				AttendanceRecordedBy:   cl.UserID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "asistencia registrada", fiber.Map{"created": created, "updated": updated})
}

// PATCH /api/attendance/:id
func (h *AttendanceController) Patch(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateAttendanceRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	var row model.Attendance
	if err := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Attendance{}), attendanceCols).
		Where("attendance_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "registro de asistencia no encontrado")
		}
		return helper.DBError(c, err)
	}
	row.AttendanceStatus = req.Status
	row.AttendanceNote = req.Note
	row.AttendanceRecordedBy = cl.UserID
	if err := h.DB.WithContext(c.UserContext()).Save(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "asistencia actualizada", row)
}
