package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/communication/messages/dto"
	"colegio_backend/internals/features/communication/messages/model"
	notifModel "colegio_backend/internals/features/communication/notifications/model"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	userModel "colegio_backend/internals/features/users/user/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type MessageController struct {
	DB       *gorm.DB
	Notifier *notifService.Notifier
}

func NewMessageController(db *gorm.DB, n *notifService.Notifier) *MessageController {
	return &MessageController{DB: db, Notifier: n}
}

const notFound = "mensaje no encontrado"

// GET /api/messages?box=inbox|sent&unread=true&courseId=
func (h *MessageController) List(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := h.DB.WithContext(c.UserContext()).Model(&model.Message{})
	if c.Query("box") == "sent" {
		q = q.Where("message_sender_user_id = ?", cl.UserID)
	} else {
		q = q.Where("message_recipient_user_id = ?", cl.UserID)
		if c.QueryBool("unread") {
			q = q.Where("message_read_at IS NULL")
		}
	}
	if id, err := uuid.Parse(c.Query("courseId")); err == nil {
		q = q.Where("message_course_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 100)
	var rows []model.Message
	if err := q.Order("message_created_at DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/messages/:id: sender or recipient.
func (h *MessageController) GetByID(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Message
	if err := h.DB.WithContext(c.UserContext()).
		Where("message_id = ?", id).
		Where("message_sender_user_id = ? OR message_recipient_user_id = ?", cl.UserID, cl.UserID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", row)
}

// POST /api/messages
func (h *MessageController) Send(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.SendMessageRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if req.RecipientID == cl.UserID {
		return helper.JsonError(c, fiber.StatusBadRequest, "no puedes enviarte mensajes a ti mismo")
	}

	var recipient userModel.User
	if err := h.DB.WithContext(c.UserContext()).
		Where("user_id = ? AND user_tenant_id = ? AND user_is_active = TRUE", req.RecipientID, tenantID).
		First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "destinatario no encontrado")
		}
		return helper.DBError(c, err)
	}
	if !dto.CanMessage(cl.Role, recipient.UserRole) {
		return helper.JsonError(c, fiber.StatusForbidden, "no puedes enviar mensajes a este destinatario")
	}

	row := req.ToModel(tenantID, cl.UserID)
	if err := h.DB.WithContext(c.UserContext()).Create(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	if h.Notifier != nil {
		h.Notifier.NotifyUsersAsync(tenantID, []uuid.UUID{recipient.UserID}, notifService.Notice{
			Type:  notifModel.TypeMessage,
			Title: "Nuevo mensaje: " + row.MessageSubject,
			Body:  row.MessageBody,
			Path:  "/mensajes/" + row.MessageID.String(),
		})
	}
	return helper.JsonCreated(c, "mensaje enviado", row)
}

// PATCH /api/messages/:id/read: recipient only.
func (h *MessageController) MarkRead(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Message
	if err := h.DB.WithContext(c.UserContext()).
		Where("message_id = ? AND message_recipient_user_id = ?", id, cl.UserID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	if row.MessageReadAt == nil {
		now := dbtime.Now(c)
		row.MessageReadAt = &now
		if err := h.DB.WithContext(c.UserContext()).Model(&row).Update("message_read_at", now).Error; err != nil {
			return helper.DBError(c, err)
		}
	}
	return helper.JsonUpdated(c, "mensaje leído", row)
}
