// file: internals/features/finance/promises/controller/payment_promise_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	auditModel "colegio_backend/internals/features/audit/model"
	auditService "colegio_backend/internals/features/audit/service"
	"colegio_backend/internals/features/finance/promises/dto"
	"colegio_backend/internals/features/finance/promises/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type PaymentPromiseController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewPaymentPromiseController(db *gorm.DB) *PaymentPromiseController {
	return &PaymentPromiseController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var promiseCols = helperAuth.Columns{Tenant: "payment_promise_tenant_id", Student: "payment_promise_estudiante_id"}

// GET /api/payment-promises
func (ctl *PaymentPromiseController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var lq dto.ListQuery
	_ = c.QueryParser(&lq)

	q := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.PaymentPromise{}), promiseCols)
	if id, err := uuid.Parse(strings.TrimSpace(lq.EstudianteID)); err == nil {
		q = q.Where("payment_promise_estudiante_id = ?", id)
	}
	if s := strings.TrimSpace(lq.Status); s != "" {
		q = q.Where("payment_promise_status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 100)
	var rows []model.PaymentPromise
	if err := q.Order("payment_promise_date ASC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// PATCH /api/payment-promises/:id/status
func (ctl *PaymentPromiseController) UpdateStatus(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdatePromiseStatusRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var p model.PaymentPromise
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		q := scope.Apply(tx.Clauses(clause.Locking{Strength: "UPDATE"}), promiseCols)
		if err := q.First(&p, "payment_promise_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "compromiso de pago no encontrado")
			}
			return err
		}
		prev := p.PaymentPromiseStatus
		p.PaymentPromiseStatus = req.Status
		if req.Notes != nil {
			p.PaymentPromiseNotes = req.Notes
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		return auditService.Record(tx, auditService.Entry{
			TenantID: p.PaymentPromiseTenantID,
			ActorID:  &cl.UserID,
			Action:   auditModel.ActionStatus,
			Entity:   "payment_promise",
			EntityID: auditService.Ptr(p.PaymentPromiseID),
			Meta:     map[string]any{"from": prev, "to": p.PaymentPromiseStatus},
		})
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "compromiso actualizado", p)
}
