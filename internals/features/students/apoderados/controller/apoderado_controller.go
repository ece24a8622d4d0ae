package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	paymentService "colegio_backend/internals/features/finance/payments/service"
	"colegio_backend/internals/features/students/apoderados/dto"
	"colegio_backend/internals/features/students/apoderados/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type ApoderadoController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewApoderadoController(db *gorm.DB) *ApoderadoController {
	return &ApoderadoController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var apoderadoCols = helperAuth.Columns{Tenant: "apoderado_tenant_id", Student: "apoderado_estudiante_id"}

func (ctl *ApoderadoController) find(c *fiber.Ctx, scope helperAuth.Scope, id uuid.UUID) (model.Apoderado, error) {
	var a model.Apoderado
	q := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.Apoderado{}), apoderadoCols)
	if err := q.Where("apoderado_id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a, fiber.NewError(fiber.StatusNotFound, "apoderado no encontrado")
		}
		return a, err
	}
	return a, nil
}

// GET /api/apoderados?estudianteId=&financialStatus=&q=
func (ctl *ApoderadoController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.Apoderado{}), apoderadoCols)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("estudianteId"))); err == nil {
		q = q.Where("apoderado_estudiante_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("financialStatus")); s != "" {
		q = q.Where("apoderado_financial_status = ?", s)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + s + "%"
		q = q.Where("apoderado_first_name ILIKE ? OR apoderado_last_name ILIKE ? OR apoderado_rut ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Apoderado
	if err := q.Order("apoderado_last_name ASC, apoderado_first_name ASC").
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/apoderados/:id
func (ctl *ApoderadoController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := ctl.find(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", a)
}

// POST /api/apoderados
func (ctl *ApoderadoController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateApoderadoRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	a := req.ToModel(tenantID)
	if a.ApoderadoEstudianteID != nil {
		var n int64
		if err := scope.Apply(ctl.DB.WithContext(c.UserContext()).Table("estudiantes"),
			helperAuth.Columns{Tenant: "estudiante_tenant_id", Student: "estudiante_id"}).
			Where("estudiante_id = ? AND estudiante_deleted_at IS NULL", *a.ApoderadoEstudianteID).
			Count(&n).Error; err != nil {
			return helper.DBError(c, err)
		}
		if n == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "estudiante no encontrado")
		}
	}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&a).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "el estudiante ya tiene un apoderado de ese tipo")
		}
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "apoderado creado", a)
}

// PATCH /api/apoderados/:id
func (ctl *ApoderadoController) Patch(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateApoderadoRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var out model.Apoderado
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var a model.Apoderado
		q := scope.Apply(tx.Model(&model.Apoderado{}), apoderadoCols)
		if err := q.Where("apoderado_id = ?", id).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "apoderado no encontrado")
			}
			return err
		}
		req.Apply(&a)
		now := dbtime.Now(c)
		resync := false
		if req.FinancialStatus != nil {
			if *req.FinancialStatus == model.FinancialExento {
				a.ApoderadoFinancialStatus = model.FinancialExento
				a.ApoderadoFinancialStatusAt = &now
			} else if a.ApoderadoFinancialStatus == model.FinancialExento {
				// leaving exento: let the sync decide
				a.ApoderadoFinancialStatus = model.FinancialSolvente
				resync = true
			}
		}
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		if resync {
			status, err := paymentService.SyncFinancialStatus(c.UserContext(), paymentService.NewGormFinancialStore(tx), a.ApoderadoID, now)
			if err != nil {
				return err
			}
			a.ApoderadoFinancialStatus = status
		}
		out = a
		return nil
	})
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "el estudiante ya tiene un apoderado de ese tipo")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "apoderado actualizado", out)
}

// DELETE /api/apoderados/:id
func (ctl *ApoderadoController) Delete(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := ctl.find(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.DB.WithContext(c.UserContext()).Delete(&a).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "apoderado eliminado", fiber.Map{"id": id})
}

// POST /api/apoderados/:id/sync-financial-status
func (ctl *ApoderadoController) SyncFinancialStatus(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.find(c, scope, id); err != nil {
		return helper.FromFiberError(c, err)
	}

	var status string
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = paymentService.SyncFinancialStatus(c.UserContext(), paymentService.NewGormFinancialStore(tx), id, dbtime.Now(c))
		return err
	})
	if err != nil {
		if errors.Is(err, paymentService.ErrGuardianNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, err.Error())
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "estado financiero sincronizado", dto.SyncResponse{ID: id, FinancialStatus: status})
}
