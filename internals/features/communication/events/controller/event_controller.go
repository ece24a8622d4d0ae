package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/communication/events/dto"
	"colegio_backend/internals/features/communication/events/model"
	notifModel "colegio_backend/internals/features/communication/notifications/model"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type EventController struct {
	DB       *gorm.DB
	Links    helperAuth.LinkResolver
	Notifier *notifService.Notifier
}

func NewEventController(db *gorm.DB, n *notifService.Notifier) *EventController {
	return &EventController{DB: db, Links: helperAuth.NewDBLinks(db), Notifier: n}
}

var eventCols = helperAuth.Columns{Tenant: "event_tenant_id", Course: "event_course_id", CourseNullable: true}

const notFound = "evento no encontrado"

// visible narrows by scope, and non-staff callers by audience (empty = everyone).
func visible(q *gorm.DB, scope helperAuth.Scope) *gorm.DB {
	q = scope.Apply(q, eventCols)
	if !scope.Role.IsStaff() {
		q = q.Where("(cardinality(event_audience) = 0 OR ? = ANY(event_audience))", string(scope.Role))
	}
	return q
}

// GET /api/events?from=&to=&courseId=
func (h *EventController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := visible(h.DB.WithContext(c.UserContext()).Model(&model.Event{}), scope)
	if t, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		q = q.Where("event_starts_at >= ?", t)
	} else if d, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		q = q.Where("event_starts_at >= ?", d)
	}
	if t, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		q = q.Where("event_starts_at <= ?", t)
	} else if d, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		q = q.Where("event_starts_at < ?", d.AddDate(0, 0, 1))
	}
	if id, err := uuid.Parse(c.Query("courseId")); err == nil {
		q = q.Where("event_course_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 500)
	var rows []model.Event
	if err := q.Order("event_starts_at ASC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/events/:id
func (h *EventController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Event
	if err := visible(h.DB.WithContext(c.UserContext()).Model(&model.Event{}), scope).
		Where("event_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", row)
}

// POST /api/events
func (h *EventController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateEventRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	row := req.ToModel(tenantID, cl.UserID)
	if row.EventCourseID != nil && !scope.HasCourse(*row.EventCourseID) {
		return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	if req.Notify {
		h.notify(c, row)
	}
	return helper.JsonCreated(c, "evento creado", row)
}

// notify fans the event out to the users of its audience; course events only reach
// that course's students and guardians.
func (h *EventController) notify(c *fiber.Ctx, e model.Event) {
	if h.Notifier == nil {
		return
	}
	q := h.DB.WithContext(c.UserContext()).Table("users").
		Where("user_tenant_id = ? AND user_is_active = TRUE AND user_deleted_at IS NULL", e.EventTenantID)
	if len(e.EventAudience) > 0 {
		q = q.Where("user_role IN ?", []string(e.EventAudience))
	}
	if e.EventCourseID != nil {
		q = q.Where(`(user_role NOT IN ('student','apoderado')
			OR user_profile_id IN (SELECT enrollment_estudiante_id FROM enrollments
				WHERE enrollment_course_id = ? AND enrollment_deleted_at IS NULL)
			OR user_id IN (SELECT a.apoderado_user_id FROM apoderados a
				JOIN enrollments en ON en.enrollment_estudiante_id = a.apoderado_estudiante_id
				WHERE en.enrollment_course_id = ? AND en.enrollment_deleted_at IS NULL AND a.apoderado_deleted_at IS NULL))`,
			*e.EventCourseID, *e.EventCourseID)
	}
	var ids []uuid.UUID
	if err := q.Pluck("user_id", &ids).Error; err != nil {
		return
	}
	body := e.EventStartsAt.Format("02-01-2006 15:04")
	if e.EventLocation != nil {
		body += " · " + *e.EventLocation
	}
	h.Notifier.NotifyUsersAsync(e.EventTenantID, ids, notifService.Notice{
		Type:  notifModel.TypeInstitution,
		Title: e.EventTitle,
		Body:  body,
		Path:  "/eventos/" + e.EventID.String(),
	})
}

// PATCH /api/events/:id
func (h *EventController) Patch(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateEventRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	var row model.Event
	if err := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Event{}), eventCols).
		Where("event_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	req.Apply(&row)
	if dto.EndsBeforeStart(row) {
		return helper.JsonValidationError(c, map[string][]string{"endsAt": {"endsAt debe ser posterior a startsAt"}})
	}
	if err := h.DB.WithContext(c.UserContext()).Save(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "evento actualizado", row)
}

// DELETE /api/events/:id
func (h *EventController) Delete(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res := scope.Apply(h.DB.WithContext(c.UserContext()), eventCols).
		Where("event_id = ?", id).Delete(&model.Event{})
	if res.Error != nil {
		return helper.DBError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, notFound)
	}
	return helper.JsonDeleted(c, "evento eliminado", fiber.Map{"id": id})
}
