package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "colegio_backend/internals/features/academics/courses/model"
	"colegio_backend/internals/features/academics/subjects/dto"
	"colegio_backend/internals/features/academics/subjects/model"
	userService "colegio_backend/internals/features/users/user/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type SubjectController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewSubjectController(db *gorm.DB) *SubjectController {
	return &SubjectController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var subjectCols = helperAuth.Columns{Tenant: "subject_tenant_id", Course: "subject_course_id"}

const notFound = "asignatura no encontrada"

func (h *SubjectController) checkTeacher(tx *gorm.DB, c *fiber.Ctx, tenantID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := userService.IsTeachingStaff(c.UserContext(), tx, tenantID, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "teacherId no es un docente del colegio")
	}
	return nil
}

// GET /api/subjects?courseId=&teacherId=&q=
func (h *SubjectController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Subject{}), subjectCols)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where("subject_course_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("teacherId"))); err == nil {
		q = q.Where("subject_teacher_user_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("subject_name ILIKE ? OR subject_code ILIKE ?", "%"+s+"%", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 200)
	var rows []model.Subject
	if err := q.Order("subject_name ASC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/subjects/:id
func (h *SubjectController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Subject
	if err := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Subject{}), subjectCols).
		Where("subject_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", row)
}

// POST /api/subjects
func (h *SubjectController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateSubjectRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	row := req.ToModel(tenantID)

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&courseModel.Course{}).
			Where("course_id = ? AND course_tenant_id = ?", row.SubjectCourseID, tenantID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "curso no encontrado")
		}
		if err := h.checkTeacher(tx, c, tenantID, row.SubjectTeacherUserID); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "asignatura creada", row)
}

// PATCH /api/subjects/:id
func (h *SubjectController) Patch(c *fiber.Ctx) error {
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
	var req dto.UpdateSubjectRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var row model.Subject
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("subject_id = ?", id)
		if tenantID != nil {
			q = q.Where("subject_tenant_id = ?", *tenantID)
		}
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		req.Apply(&row)
		if err := h.checkTeacher(tx, c, row.SubjectTenantID, row.SubjectTeacherUserID); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "asignatura actualizada", row)
}

// DELETE /api/subjects/:id: also drops its schedule blocks.
func (h *SubjectController) Delete(c *fiber.Ctx) error {
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
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var row model.Subject
		q := tx.Where("subject_id = ?", id)
		if tenantID != nil {
			q = q.Where("subject_tenant_id = ?", *tenantID)
		}
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		if err := tx.Exec(`UPDATE schedules SET schedule_deleted_at = NOW()
			WHERE schedule_subject_id = ? AND schedule_deleted_at IS NULL`, id).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "asignatura eliminada", fiber.Map{"id": id})
}
