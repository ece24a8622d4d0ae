package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/academics/plannings/dto"
	"colegio_backend/internals/features/academics/plannings/model"
	"colegio_backend/internals/features/approvals"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type PlanningController struct {
	DB       *gorm.DB
	Links    helperAuth.LinkResolver
	Notifier approvals.Notifier
}

func NewPlanningController(db *gorm.DB, n approvals.Notifier) *PlanningController {
	return &PlanningController{DB: db, Links: helperAuth.NewDBLinks(db), Notifier: n}
}

const notFound = "planificación no encontrada"

func owned(scope helperAuth.Scope) func(*gorm.DB) *gorm.DB {
	return approvals.Owned(scope, "planning_tenant_id", "planning_teacher_user_id")
}

func actorOf(cl helperAuth.Claims) approvals.Actor {
	return approvals.Actor{UserID: cl.UserID, Role: cl.Role}
}

// GET /api/plannings
func (h *PlanningController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tx := owned(scope)(h.DB.WithContext(c.UserContext()).Model(&model.Planning{}))
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		tx = tx.Where("planning_course_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		tx = tx.Where("planning_status = ?", s)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Planning
	if err := tx.Order("planning_created_at DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/plannings/:id
func (h *PlanningController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var p model.Planning
	if err := owned(scope)(h.DB.WithContext(c.UserContext()).Model(&model.Planning{})).
		Where("planning_id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", p)
}

// POST /api/plannings (teachers)
func (h *PlanningController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreatePlanningRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	p := req.ToModel(tenantID, cl.UserID)
	if !dto.DatesInOrder(p) {
		return helper.JsonValidationError(c, map[string][]string{"endDate": {"endDate no puede ser anterior a startDate"}})
	}
	if !scope.HasCourse(p.PlanningCourseID) {
		return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
	}
	p.Status = approvals.StatusDraft
	if err := h.DB.WithContext(c.UserContext()).Create(&p).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "planificación creada", p)
}

// PATCH /api/plannings/:id
func (h *PlanningController) Patch(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdatePlanningRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	p, err := approvals.Transition(c.UserContext(), h.DB, owned(scope), "planning_id", id, notFound, func(p *model.Planning) error {
		if err := p.CanEdit(p.PlanningTeacherUserID, actorOf(cl)); err != nil {
			return err
		}
		req.Apply(p)
		if !dto.DatesInOrder(*p) {
			return fiber.NewError(fiber.StatusBadRequest, "endDate no puede ser anterior a startDate")
		}
		return nil
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "planificación actualizada", p)
}

// DELETE /api/plannings/:id
func (h *PlanningController) Delete(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var p model.Planning
		if err := owned(scope)(tx.Model(&model.Planning{})).Where("planning_id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		if err := p.CanEdit(p.PlanningTeacherUserID, actorOf(cl)); err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonDeleted(c, "planificación eliminada", fiber.Map{"id": id})
}

// POST /api/plannings/:id/submit
func (h *PlanningController) Submit(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := approvals.Transition(c.UserContext(), h.DB, owned(scope), "planning_id", id, notFound, func(p *model.Planning) error {
		return p.Submit(p.PlanningTeacherUserID, actorOf(cl), dbtime.Now(c))
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "planificación enviada a revisión", p)
}

// POST /api/plannings/:id/review
func (h *PlanningController) Review(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.Can(cl.Role, constants.CapApprovalReview) {
		return approvals.WriteError(c, approvals.ErrNotReviewer)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req approvals.ReviewRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	p, err := approvals.Transition(c.UserContext(), h.DB, owned(scope), "planning_id", id, notFound, func(p *model.Planning) error {
		return p.Review(req.Decision, req.Comment, actorOf(cl), dbtime.Now(c))
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	if h.Notifier != nil {
		h.Notifier.NotifyUsersAsync(p.PlanningTenantID, []uuid.UUID{p.PlanningTeacherUserID},
			approvals.ReviewNotice("planificación", p.PlanningTitle, p.Approval, "/planificaciones/"+p.PlanningID.String()))
	}
	return helper.JsonUpdated(c, "revisión registrada", p)
}
