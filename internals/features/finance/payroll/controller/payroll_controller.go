// file: internals/features/finance/payroll/controller/payroll_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/finance/payroll/dto"
	"colegio_backend/internals/features/finance/payroll/model"
	userModel "colegio_backend/internals/features/users/user/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type PayrollController struct {
	DB *gorm.DB
}

func NewPayrollController(db *gorm.DB) *PayrollController {
	return &PayrollController{DB: db}
}

var defaultPayrollRoles = []string{
	string(constants.RoleDirector), string(constants.RoleUTP), string(constants.RoleTeacher),
}

func (ctl *PayrollController) find(c *fiber.Ctx, cl helperAuth.Claims, id uuid.UUID) (model.Payroll, error) {
	var p model.Payroll
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return p, err
	}
	q := ctl.DB.WithContext(c.UserContext()).Where("payroll_id = ?", id)
	if tenantID != nil {
		q = q.Where("payroll_tenant_id = ?", *tenantID)
	}
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, fiber.NewError(fiber.StatusNotFound, "liquidación no encontrada")
		}
		return p, err
	}
	return p, nil
}

// GET /api/payrolls?period=&userId=&status=
func (ctl *PayrollController) List(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := ctl.DB.WithContext(c.UserContext()).Model(&model.Payroll{})
	if tenantID != nil {
		q = q.Where("payroll_tenant_id = ?", *tenantID)
	}
	if v := strings.TrimSpace(c.Query("period")); v != "" {
		q = q.Where("payroll_period = ?", v)
	}
	if v, err := uuid.Parse(c.Query("userId")); err == nil {
		q = q.Where("payroll_user_id = ?", v)
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		q = q.Where("payroll_status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 500)
	var rows []model.Payroll
	if err := q.Order("payroll_period DESC, payroll_created_at ASC").
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

func (ctl *PayrollController) GetByID(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := ctl.find(c, cl, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", p)
}

// POST /api/payrolls
func (ctl *PayrollController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreatePayrollRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	userID := uuid.MustParse(req.UserID)

	var n int64
	ctl.DB.WithContext(c.UserContext()).Model(&userModel.User{}).
		Where("user_id = ? AND user_tenant_id = ?", userID, tenantID).Count(&n)
	if n == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "usuario no encontrado")
	}

	p := model.Payroll{
		PayrollTenantID:   tenantID,
		PayrollUserID:     userID,
		PayrollPeriod:     req.Period,
		PayrollBaseSalary: req.BaseSalary,
		PayrollBonuses:    dto.OrZero(req.Bonuses),
		PayrollDeductions: dto.OrZero(req.Deductions),
		PayrollNotes:      req.Notes,
	}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&p).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "liquidación creada", p)
}

// PATCH /api/payrolls/:id
func (ctl *PayrollController) Patch(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdatePayrollRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	p, err := ctl.find(c, cl, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if p.PayrollStatus == model.PayrollPaid && (req.BaseSalary != nil || req.Bonuses != nil || req.Deductions != nil) {
		return helper.JsonError(c, fiber.StatusConflict, "liquidación pagada: montos bloqueados")
	}

	if req.BaseSalary != nil {
		p.PayrollBaseSalary = *req.BaseSalary
	}
	if req.Bonuses != nil {
		p.PayrollBonuses = *req.Bonuses
	}
	if req.Deductions != nil {
		p.PayrollDeductions = *req.Deductions
	}
	if req.Notes != nil {
		p.PayrollNotes = req.Notes
	}
	if req.Status != nil && *req.Status != p.PayrollStatus {
		p.PayrollStatus = *req.Status
		if p.PayrollStatus == model.PayrollPaid {
			now := dbtime.Now(c)
			p.PayrollPaidAt = &now
		} else {
			p.PayrollPaidAt = nil
		}
	}
	if err := ctl.DB.WithContext(c.UserContext()).Save(&p).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "liquidación actualizada", p)
}

func (ctl *PayrollController) Delete(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := ctl.find(c, cl, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if p.PayrollStatus == model.PayrollPaid {
		return helper.JsonError(c, fiber.StatusConflict, "no se puede eliminar una liquidación pagada")
	}
	if err := ctl.DB.WithContext(c.UserContext()).Delete(&p).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "liquidación eliminada", fiber.Map{"id": p.PayrollID})
}

// POST /api/payrolls/bulk
func (ctl *PayrollController) Bulk(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.BulkPayrollRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	roles := req.Roles
	if len(roles) == 0 {
		roles = defaultPayrollRoles
	}

	var res dto.BulkPayrollResponse
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var userIDs []uuid.UUID
		if err := tx.Model(&userModel.User{}).
			Where("user_tenant_id = ? AND user_is_active = TRUE AND user_role IN ?", tenantID, lo.Uniq(roles)).
			Pluck("user_id", &userIDs).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		rows := lo.Map(userIDs, func(uid uuid.UUID, _ int) model.Payroll {
			return model.Payroll{
				PayrollTenantID:   tenantID,
				PayrollUserID:     uid,
				PayrollPeriod:     req.Period,
				PayrollBaseSalary: req.BaseSalary,
				PayrollBonuses:    dto.OrZero(req.Bonuses),
				PayrollDeductions: dto.OrZero(req.Deductions),
			}
		})
		r := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		if r.Error != nil {
			return r.Error
		}
		res.Created = int(r.RowsAffected)
		res.Skipped = len(rows) - res.Created
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "liquidaciones generadas", res)
}
