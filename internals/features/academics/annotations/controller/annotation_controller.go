package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"colegio_backend/internals/features/academics/annotations/dto"
	"colegio_backend/internals/features/academics/annotations/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type AnnotationController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewAnnotationController(db *gorm.DB) *AnnotationController {
	return &AnnotationController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var annotationCols = helperAuth.Columns{
	Tenant:  "annotation_tenant_id",
	Student: "annotation_estudiante_id",
	Course:  "annotation_course_id",
}

// GET /api/annotations?estudianteId=&courseId=&type=&unsigned=true
func (h *AnnotationController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Annotation{}), annotationCols)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("estudianteId"))); err == nil {
		q = q.Where("annotation_estudiante_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where("annotation_course_id = ?", id)
	}
	if t := strings.ToLower(strings.TrimSpace(c.Query("type"))); model.IsValidType(t) {
		q = q.Where("annotation_type = ?", t)
	}
	if c.QueryBool("unsigned") {
		q = q.Where("annotation_signed_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Annotation
	if err := q.Order("annotation_date DESC, annotation_created_at DESC").
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// POST /api/annotations
func (h *AnnotationController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateAnnotationRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	row := req.ToModel(tenantID, cl.UserID, dbtime.StartOfDay(dbtime.Now(c)))

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		// default to the student's live enrollment course
		if row.AnnotationCourseID == nil {
			var courseID uuid.UUID
			if err := tx.Table("enrollments").
				Select("enrollment_course_id").
				Where("enrollment_tenant_id = ? AND enrollment_estudiante_id = ?", tenantID, row.AnnotationEstudianteID).
				Where("enrollment_deleted_at IS NULL AND enrollment_status NOT IN ('retirada','anulada')").
				Order("enrollment_created_at DESC").Limit(1).
				Scan(&courseID).Error; err != nil {
				return err
			}
			if courseID != uuid.Nil {
				row.AnnotationCourseID = &courseID
			}
		}
		if row.AnnotationCourseID == nil || !scope.HasCourse(*row.AnnotationCourseID) {
			return fiber.NewError(fiber.StatusNotFound, "estudiante no encontrado en tus cursos")
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "anotación registrada", row)
}

// POST /api/annotations/:id/sign: guardian (own students) or staff acknowledgement.
func (h *AnnotationController) Sign(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var row model.Annotation
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := scope.Apply(tx.Model(&model.Annotation{}), annotationCols).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("annotation_id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "anotación no encontrada")
			}
			return err
		}
		if row.AnnotationSignedAt != nil {
			return fiber.NewError(fiber.StatusConflict, "la anotación ya fue firmada")
		}
		now := dbtime.Now(c)
		uid := cl.UserID
		row.AnnotationSignedByUserID = &uid
		row.AnnotationSignedAt = &now
		return tx.Model(&row).Updates(map[string]any{
			"annotation_signed_by_user_id": uid,
			"annotation_signed_at":         now,
		}).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "anotación firmada", row)
}

// DELETE /api/annotations/:id: author or admin tier.
func (h *AnnotationController) Delete(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Annotation
	if err := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Annotation{}), annotationCols).
		Where("annotation_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "anotación no encontrada")
		}
		return helper.DBError(c, err)
	}
	if row.AnnotationAuthorUserID != cl.UserID && !cl.Role.IsAdminTier() {
		return helper.JsonError(c, fiber.StatusForbidden, "sólo el autor puede eliminar la anotación")
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "anotación eliminada", fiber.Map{"id": id})
}
