package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/features/communication/notifications/dto"
	"colegio_backend/internals/features/communication/notifications/model"
	"colegio_backend/internals/features/communication/notifications/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type NotificationController struct {
	DB       *gorm.DB
	Notifier *service.Notifier
}

func NewNotificationController(db *gorm.DB, n *service.Notifier) *NotificationController {
	return &NotificationController{DB: db, Notifier: n}
}

// GET /api/notifications?unread=true: own inbox.
func (h *NotificationController) List(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := h.DB.WithContext(c.UserContext()).Model(&model.Notification{}).
		Where("notification_user_id = ?", cl.UserID)
	if c.QueryBool("unread") {
		q = q.Where("notification_read_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 100)
	var rows []model.Notification
	if err := q.Order("notification_created_at DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// PATCH /api/notifications/:id/read
func (h *NotificationController) MarkRead(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Notification
	if err := h.DB.WithContext(c.UserContext()).
		Where("notification_id = ? AND notification_user_id = ?", id, cl.UserID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "notificación no encontrada")
		}
		return helper.DBError(c, err)
	}
	if row.NotificationReadAt == nil {
		now := dbtime.Now(c)
		row.NotificationReadAt = &now
		if err := h.DB.WithContext(c.UserContext()).Model(&row).
			Update("notification_read_at", now).Error; err != nil {
			return helper.DBError(c, err)
		}
	}
	return helper.JsonUpdated(c, "notificación leída", row)
}

// PATCH /api/notifications/read-all
func (h *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res := h.DB.WithContext(c.UserContext()).Model(&model.Notification{}).
		Where("notification_user_id = ? AND notification_read_at IS NULL", cl.UserID).
		Update("notification_read_at", dbtime.Now(c))
	if res.Error != nil {
		return helper.DBError(c, res.Error)
	}
	return helper.JsonUpdated(c, "notificaciones leídas", fiber.Map{"updated": res.RowsAffected})
}

// POST /api/notifications/send-institutional-list
func (h *NotificationController) SendInstitutionalList(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.InstitutionalListRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	list, err := service.InstitutionalRecipients(c.UserContext(), h.DB, tenantID, req.CourseIDs, req.Audience)
	if err != nil {
		return helper.DBError(c, err)
	}
	msgs := service.Messages(list)
	if len(msgs) == 0 {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "no hay destinatarios con e-mail")
	}
	sent := h.Notifier.EmailList(c.UserContext(), tenantID, msgs, req.Title, req.Body)
	return helper.JsonOK(c, "envío en curso", dto.InstitutionalListResponse{Recipients: sent})
}
