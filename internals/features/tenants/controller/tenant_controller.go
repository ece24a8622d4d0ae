// file: internals/features/tenants/controller/tenant_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/tenants/dto"
	"colegio_backend/internals/features/tenants/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/storage"
)

const slugMaxLen = 100

type TenantController struct {
	DB      *gorm.DB
	Storage *storage.Service
}

func NewTenantController(db *gorm.DB, st *storage.Service) *TenantController {
	return &TenantController{DB: db, Storage: st}
}

var tenantSort = map[string]string{
	"name":       "tenant_name",
	"created_at": "tenant_created_at",
}

func (ctl *TenantController) find(c *fiber.Ctx, id uuid.UUID) (model.Tenant, error) {
	var t model.Tenant
	if err := ctl.DB.WithContext(c.UserContext()).First(&t, "tenant_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, fiber.NewError(fiber.StatusNotFound, "colegio no encontrado")
		}
		return t, err
	}
	return t, nil
}

// canManage: admin any tenant; sostenedor only its own.
func canManage(cl helperAuth.Claims, id uuid.UUID) bool {
	if cl.Role == constants.RoleAdmin {
		return true
	}
	return cl.Role == constants.RoleSostenedor && cl.TenantID != nil && *cl.TenantID == id
}

/* ============================ LIST (admin) ============================ */
// GET /api/tenants?q=&active=
func (ctl *TenantController) List(c *fiber.Ctx) error {
	q := ctl.DB.WithContext(c.UserContext()).Model(&model.Tenant{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("tenant_name ILIKE ? OR tenant_slug ILIKE ?", "%"+s+"%", "%"+s+"%")
	}
	if v := strings.TrimSpace(c.Query("active")); v != "" {
		q = q.Where("tenant_is_active = ?", v == "true" || v == "1")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 100)
	var rows []model.Tenant
	if err := q.Order(helper.ResolveSort(c, tenantSort, "name", "asc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

/* ============================ CURRENT ============================ */
// GET /api/tenants/current
func (ctl *TenantController) Current(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := ctl.find(c, tenantID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", t)
}

// GET /api/tenants/:id
func (ctl *TenantController) GetByID(c *fiber.Ctx) error {
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := ctl.find(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", t)
}

/* ============================ CREATE ============================ */
// POST /api/tenants
func (ctl *TenantController) Create(c *fiber.Ctx) error {
	var req dto.CreateTenantRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if req.AnnualFee != nil && req.AnnualFee.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"annualFee": {"annualFee no puede ser negativo"}})
	}

	ctx := c.UserContext()
	slug, err := helper.EnsureUniqueSlug(ctx, ctl.DB, "tenants", "tenant_slug", helper.Slugify(req.Name, slugMaxLen), slugMaxLen)
	if err != nil {
		return helper.DBError(c, err)
	}
	t := req.ToModel(slug)
	if err := ctl.DB.WithContext(ctx).Create(&t).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "slug o dominio ya registrado")
		}
		return helper.DBError(c, err)
	}
	log.Printf("[INFO] tenant created id=%s slug=%s", t.TenantID, t.TenantSlug)
	return helper.JsonCreated(c, "colegio creado", t)
}

/* ============================ PATCH ============================ */
// PATCH /api/tenants/:id
func (ctl *TenantController) Patch(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !canManage(cl, id) {
		return helper.JsonError(c, fiber.StatusNotFound, "colegio no encontrado")
	}
	var req dto.UpdateTenantRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if req.AnnualFee != nil && req.AnnualFee.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"annualFee": {"annualFee no puede ser negativo"}})
	}
	// only admin may flip billing mode or activation
	if cl.Role != constants.RoleAdmin && (req.PaymentType != nil || req.IsActive != nil) {
		return helper.JsonError(c, fiber.StatusForbidden, "sólo admin puede cambiar paymentType o isActive")
	}

	t, err := ctl.find(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if req.Apply(&t) {
		base := helper.Slugify(t.TenantName, slugMaxLen)
		if base != t.TenantSlug {
			slug, err := helper.EnsureUniqueSlug(c.UserContext(), ctl.DB, "tenants", "tenant_slug", base, slugMaxLen)
			if err != nil {
				return helper.DBError(c, err)
			}
			t.TenantSlug = slug
		}
	}
	if err := ctl.DB.WithContext(c.UserContext()).Save(&t).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "slug o dominio ya registrado")
		}
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "colegio actualizado", t)
}

/* ============================ LOGO ============================ */
// POST /api/tenants/:id/logo (multipart: file)
func (ctl *TenantController) UploadLogo(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !canManage(cl, id) {
		return helper.JsonError(c, fiber.StatusNotFound, "colegio no encontrado")
	}
	if ctl.Storage == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "almacenamiento no configurado")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "file requerido")
	}
	t, err := ctl.find(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	url, err := ctl.Storage.UploadPhotoWebP(c.UserContext(), "tenants/"+id.String()+"/logo", fh, 256)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	old := t.TenantLogoURL
	if err := ctl.DB.WithContext(c.UserContext()).Model(&t).Update("tenant_logo_url", url).Error; err != nil {
		_ = ctl.Storage.DeleteByURL(c.UserContext(), url)
		return helper.DBError(c, err)
	}
	if old != nil && *old != "" {
		if err := ctl.Storage.DeleteByURL(c.UserContext(), *old); err != nil {
			log.Printf("[WARN] delete old logo %s: %v", *old, err)
		}
	}
	t.TenantLogoURL = &url
	return helper.JsonUpdated(c, "logo actualizado", t)
}

/* ============================ DELETE ============================ */
// DELETE /api/tenants/:id (soft)
func (ctl *TenantController) Delete(c *fiber.Ctx) error {
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res := ctl.DB.WithContext(c.UserContext()).Delete(&model.Tenant{}, "tenant_id = ?", id)
	if res.Error != nil {
		return helper.DBError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "colegio no encontrado")
	}
	return helper.JsonDeleted(c, "colegio eliminado", fiber.Map{"id": id})
}
