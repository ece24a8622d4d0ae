package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "colegio_backend/internals/features/academics/courses/model"
	"colegio_backend/internals/features/academics/schedules/dto"
	"colegio_backend/internals/features/academics/schedules/model"
	subjectModel "colegio_backend/internals/features/academics/subjects/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type ScheduleController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewScheduleController(db *gorm.DB) *ScheduleController {
	return &ScheduleController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var scheduleCols = helperAuth.Columns{Tenant: "schedule_tenant_id", Course: "schedule_course_id"}

const notFound = "bloque de horario no encontrado"

// guard validates s against its course and the blocks already stored for that course.
// Runs inside tx after an advisory lock on the course.
func guard(tx *gorm.DB, s model.Schedule) error {
	if s.ScheduleEndTime <= s.ScheduleStartTime {
		return fiber.NewError(fiber.StatusBadRequest, "endTime debe ser posterior a startTime")
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "schedule:"+s.ScheduleCourseID.String()).Error; err != nil {
		return err
	}

	var n int64
	if err := tx.Model(&courseModel.Course{}).
		Where("course_id = ? AND course_tenant_id = ?", s.ScheduleCourseID, s.ScheduleTenantID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusNotFound, "curso no encontrado")
	}
	if err := tx.Model(&subjectModel.Subject{}).
		Where("subject_id = ? AND subject_course_id = ?", s.ScheduleSubjectID, s.ScheduleCourseID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "la asignatura no pertenece al curso")
	}

	var sameDay []model.Schedule
	if err := tx.Where("schedule_course_id = ? AND schedule_day_of_week = ?", s.ScheduleCourseID, s.ScheduleDayOfWeek).
		Find(&sameDay).Error; err != nil {
		return err
	}
	if o := dto.FirstOverlap(s, sameDay); o != nil {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("el bloque choca con %s-%s del %s",
			o.ScheduleStartTime, o.ScheduleEndTime, dbtime.DayName(o.ScheduleDayOfWeek)))
	}
	return nil
}

// GET /api/schedules?courseId=&subjectId=&day=
func (h *ScheduleController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Schedule{}), scheduleCols)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where("schedule_course_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("subjectId"))); err == nil {
		q = q.Where("schedule_subject_id = ?", id)
	}
	if d, err := strconv.Atoi(c.Query("day")); err == nil && d >= 1 && d <= 7 {
		q = q.Where("schedule_day_of_week = ?", d)
	}

	var rows []model.Schedule
	if err := q.Order("schedule_day_of_week ASC, schedule_start_time ASC").Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /api/schedules
func (h *ScheduleController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateScheduleRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	row := req.ToModel(tenantID)
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := guard(tx, row); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "bloque creado", row)
}

// PATCH /api/schedules/:id
func (h *ScheduleController) Patch(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateScheduleRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var row model.Schedule
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("schedule_id = ?", id)
		if tenantID != nil {
			q = q.Where("schedule_tenant_id = ?", *tenantID)
		}
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		req.Apply(&row)
		if err := guard(tx, row); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "bloque actualizado", row)
}

// DELETE /api/schedules/:id
func (h *ScheduleController) Delete(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := h.DB.WithContext(c.UserContext()).Where("schedule_id = ?", id)
	if tenantID != nil {
		q = q.Where("schedule_tenant_id = ?", *tenantID)
	}
	res := q.Delete(&model.Schedule{})
	if res.Error != nil {
		return helper.DBError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, notFound)
	}
	return helper.JsonDeleted(c, "bloque eliminado", fiber.Map{"id": id})
}
