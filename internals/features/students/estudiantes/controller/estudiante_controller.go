// file: internals/features/students/estudiantes/controller/estudiante_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/students/estudiantes/dto"
	"colegio_backend/internals/features/students/estudiantes/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/storage"
)

const photoSize = 512

type EstudianteController struct {
	DB      *gorm.DB
	Links   helperAuth.LinkResolver
	Storage *storage.Service
}

func NewEstudianteController(db *gorm.DB, st *storage.Service) *EstudianteController {
	return &EstudianteController{DB: db, Links: helperAuth.NewDBLinks(db), Storage: st}
}

var estudianteCols = helperAuth.Columns{Tenant: "estudiante_tenant_id", Student: "estudiante_id"}

var estudianteSort = map[string]string{
	"last_name":  "estudiante_last_name",
	"first_name": "estudiante_first_name",
	"created_at": "estudiante_created_at",
}

func (ctl *EstudianteController) find(c *fiber.Ctx, scope helperAuth.Scope, id uuid.UUID) (model.Estudiante, error) {
	var e model.Estudiante
	q := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.Estudiante{}), estudianteCols)
	if err := q.Where("estudiante_id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e, fiber.NewError(fiber.StatusNotFound, "estudiante no encontrado")
		}
		return e, err
	}
	return e, nil
}

/* ============================ LIST ============================ */
// GET /api/estudiantes?q=&courseId=&active=
func (ctl *EstudianteController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.Estudiante{}), estudianteCols)

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + s + "%"
		q = q.Where(`estudiante_first_name ILIKE ? OR estudiante_last_name ILIKE ?
			OR estudiante_rut ILIKE ? OR estudiante_email ILIKE ?`, like, like, like, like)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where(`estudiante_id IN (SELECT enrollment_estudiante_id FROM enrollments
			WHERE enrollment_course_id = ? AND enrollment_deleted_at IS NULL
			AND enrollment_status NOT IN ('retirada','anulada'))`, id)
	}
	if v := strings.TrimSpace(c.Query("active")); v != "" {
		q = q.Where("estudiante_is_active = ?", v == "true" || v == "1")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Estudiante
	if err := q.Order(helper.ResolveSort(c, estudianteSort, "last_name", "asc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

/* ============================ GET ============================ */
func (ctl *EstudianteController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	e, err := ctl.find(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", e)
}

/* ============================ CREATE ============================ */
func (ctl *EstudianteController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateEstudianteRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	e := req.ToModel(tenantID)
	if err := ctl.DB.WithContext(c.UserContext()).Create(&e).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "ya existe un estudiante con ese RUT o número de matrícula")
		}
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "estudiante creado", e)
}

/* ============================ PATCH ============================ */
func (ctl *EstudianteController) Patch(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateEstudianteRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	e, err := ctl.find(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req.Apply(&e)
	if err := ctl.DB.WithContext(c.UserContext()).Save(&e).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "ya existe un estudiante con ese RUT o número de matrícula")
		}
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "estudiante actualizado", e)
}

/* ============================ DELETE ============================ */
// Soft delete; enrollments, grades and payments stay for history.
func (ctl *EstudianteController) Delete(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	e, err := ctl.find(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.DB.WithContext(c.UserContext()).Delete(&e).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "estudiante eliminado", fiber.Map{"id": id})
}

/* ============================ PHOTO ============================ */
// POST /api/estudiantes/:id/photo (multipart: photo) → square WebP
func (ctl *EstudianteController) UploadPhoto(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if ctl.Storage == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "almacenamiento no configurado")
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		if fh, err = c.FormFile("file"); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "photo requerido")
		}
	}
	e, err := ctl.find(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	dir := "estudiantes/" + e.EstudianteTenantID.String()
	url, err := ctl.Storage.UploadPhotoWebP(c.UserContext(), dir, fh, photoSize)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	old := e.EstudiantePhotoURL
	if err := ctl.DB.WithContext(c.UserContext()).Model(&e).Update("estudiante_photo_url", url).Error; err != nil {
		_ = ctl.Storage.DeleteByURL(c.UserContext(), url)
		return helper.DBError(c, err)
	}
	if old != nil && *old != "" {
		if err := ctl.Storage.DeleteByURL(c.UserContext(), *old); err != nil {
			log.Printf("[WARN] delete old photo %s: %v", *old, err)
		}
	}
	e.EstudiantePhotoURL = &url
	return helper.JsonUpdated(c, "foto actualizada", e)
}
