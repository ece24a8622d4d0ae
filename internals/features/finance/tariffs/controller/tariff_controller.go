// file: internals/features/finance/tariffs/controller/tariff_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/finance/tariffs/dto"
	"colegio_backend/internals/features/finance/tariffs/model"
	svc "colegio_backend/internals/features/finance/tariffs/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type TariffController struct {
	DB *gorm.DB
}

func NewTariffController(db *gorm.DB) *TariffController {
	return &TariffController{DB: db}
}

var tariffSort = map[string]string{
	"name":       "tariff_name",
	"amount":     "tariff_amount",
	"created_at": "tariff_created_at",
}

func (ctl *TariffController) tenant(c *fiber.Ctx) (*uuid.UUID, error) {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return nil, err
	}
	return helperAuth.ReadTenantID(c, cl)
}

func (ctl *TariffController) find(c *fiber.Ctx, tenantID *uuid.UUID, id uuid.UUID) (model.Tariff, error) {
	var t model.Tariff
	q := ctl.DB.WithContext(c.UserContext()).Where("tariff_id = ?", id)
	if tenantID != nil {
		q = q.Where("tariff_tenant_id = ?", *tenantID)
	}
	if err := q.First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, fiber.NewError(fiber.StatusNotFound, "arancel no encontrado")
		}
		return t, err
	}
	return t, nil
}

/* ============================ LIST ============================ */
// GET /api/tariffs?active=true&q=
func (ctl *TariffController) List(c *fiber.Ctx) error {
	tenantID, err := ctl.tenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := ctl.DB.WithContext(c.UserContext()).Model(&model.Tariff{})
	if tenantID != nil {
		q = q.Where("tariff_tenant_id = ?", *tenantID)
	}
	if v := strings.TrimSpace(c.Query("active")); v != "" {
		q = q.Where("tariff_is_active = ?", v == "true" || v == "1")
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("tariff_name ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 200)
	var rows []model.Tariff
	if err := q.Order(helper.ResolveSort(c, tariffSort, "name", "asc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

/* ============================ GET ============================ */
func (ctl *TariffController) GetByID(c *fiber.Ctx) error {
	tenantID, err := ctl.tenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := ctl.find(c, tenantID, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", t)
}

/* ============================ CREATE ============================ */
func (ctl *TariffController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateTariffRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if req.Amount.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"amount": {"amount no puede ser negativo"}})
	}
	t := req.ToModel(tenantID)
	if err := ctl.DB.WithContext(c.UserContext()).Create(&t).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "arancel creado", t)
}

/* ============================ PATCH ============================ */
func (ctl *TariffController) Patch(c *fiber.Ctx) error {
	tenantID, err := ctl.tenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateTariffRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	t, err := ctl.find(c, tenantID, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req.Apply(&t)
	if t.TariffAmount.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"amount": {"amount no puede ser negativo"}})
	}
	if err := ctl.DB.WithContext(c.UserContext()).Save(&t).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "arancel actualizado", t)
}

/* ============================ DELETE ============================ */
// Soft delete; payments already generated keep their tariff id.
func (ctl *TariffController) Delete(c *fiber.Ctx) error {
	tenantID, err := ctl.tenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := ctl.find(c, tenantID, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.DB.WithContext(c.UserContext()).Delete(&t).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "arancel eliminado", fiber.Map{"id": t.TariffID})
}

/* ============================ BULK ASSIGN ============================ */
// POST /api/tariffs/bulk-assign
func (ctl *TariffController) BulkAssign(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.BulkAssignRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	res, err := svc.BulkAssign(c.UserContext(), ctl.DB, tenantID, req, cl.UserID, dbtime.Now(c))
	switch {
	case errors.Is(err, svc.ErrTariffNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, svc.ErrTariffInactive):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case err != nil:
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "cobros generados", res)
}
