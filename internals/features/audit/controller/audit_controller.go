package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/audit/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type AuditController struct {
	DB *gorm.DB
}

func NewAuditController(db *gorm.DB) *AuditController {
	return &AuditController{DB: db}
}

// GET /api/audit-logs?entity=&entityId=&actorId=&action=&from=&to=
func (h *AuditController) List(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := h.DB.WithContext(c.UserContext()).Model(&model.AuditLog{})
	if tenantID != nil {
		q = q.Where("audit_log_tenant_id = ?", *tenantID)
	}
	if s := strings.TrimSpace(c.Query("entity")); s != "" {
		q = q.Where("audit_log_entity = ?", s)
	}
	if s := strings.TrimSpace(c.Query("action")); s != "" {
		q = q.Where("audit_log_action = ?", s)
	}
	if id, err := uuid.Parse(c.Query("entityId")); err == nil {
		q = q.Where("audit_log_entity_id = ?", id)
	}
	if id, err := uuid.Parse(c.Query("actorId")); err == nil {
		q = q.Where("audit_log_actor_user_id = ?", id)
	}
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		q = q.Where("audit_log_created_at >= ?", t)
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		q = q.Where("audit_log_created_at < ?", t.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 500)
	var rows []model.AuditLog
	if err := q.Order("audit_log_created_at DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}
