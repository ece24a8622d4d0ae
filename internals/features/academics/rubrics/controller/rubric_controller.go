package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"colegio_backend/internals/features/academics/rubrics/dto"
	"colegio_backend/internals/features/academics/rubrics/model"
	"colegio_backend/internals/features/approvals"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type RubricController struct {
	DB       *gorm.DB
	Links    helperAuth.LinkResolver
	Notifier approvals.Notifier
}

func NewRubricController(db *gorm.DB, n approvals.Notifier) *RubricController {
	return &RubricController{DB: db, Links: helperAuth.NewDBLinks(db), Notifier: n}
}

const notFound = "rúbrica no encontrada"

func scoped(scope helperAuth.Scope) func(*gorm.DB) *gorm.DB {
	return approvals.Owned(scope, "rubric_tenant_id", "rubric_teacher_user_id")
}

// GET /api/rubrics
func (h *RubricController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tx := scoped(scope)(h.DB.WithContext(c.UserContext()).Model(&model.Rubric{}))
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("evaluationId"))); err == nil {
		tx = tx.Where("rubric_evaluation_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		tx = tx.Where("rubric_course_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		tx = tx.Where("rubric_status = ?", s)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Rubric
	if err := tx.Order("rubric_created_at DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", lo.Map(rows, func(r model.Rubric, _ int) dto.RubricResponse {
		return dto.FromModel(r)
	}), helper.BuildPagination(total, pg))
}

// GET /api/rubrics/:id
func (h *RubricController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var r model.Rubric
	if err := scoped(scope)(h.DB.WithContext(c.UserContext()).Model(&model.Rubric{})).
		Where("rubric_id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(r))
}

// POST /api/rubrics
func (h *RubricController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateRubricRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	r := req.ToModel(tenantID, cl.UserID)
	if r.RubricCourseID != nil && !scope.HasCourse(*r.RubricCourseID) {
		return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
	}
	r.Status = approvals.StatusDraft
	if err := h.DB.WithContext(c.UserContext()).Create(&r).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "rúbrica creada", dto.FromModel(r))
}

// PATCH /api/rubrics/:id
func (h *RubricController) Patch(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateRubricRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	actor := approvals.Actor{UserID: cl.UserID, Role: cl.Role}
	r, err := approvals.Transition(c.UserContext(), h.DB, scoped(scope), "rubric_id", id, notFound, func(r *model.Rubric) error {
		if err := r.CanEdit(r.RubricTeacherUserID, actor); err != nil {
			return err
		}
		req.Apply(r)
		return nil
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "rúbrica actualizada", dto.FromModel(r))
}

// DELETE /api/rubrics/:id
func (h *RubricController) Delete(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor := approvals.Actor{UserID: cl.UserID, Role: cl.Role}
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var r model.Rubric
		if err := scoped(scope)(tx.Model(&model.Rubric{})).Where("rubric_id = ?", id).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		if err := r.CanEdit(r.RubricTeacherUserID, actor); err != nil {
			return err
		}
		return tx.Delete(&r).Error
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonDeleted(c, "rúbrica eliminada", fiber.Map{"id": id})
}

// POST /api/rubrics/:id/submit
func (h *RubricController) Submit(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor := approvals.Actor{UserID: cl.UserID, Role: cl.Role}
	r, err := approvals.Transition(c.UserContext(), h.DB, scoped(scope), "rubric_id", id, notFound, func(r *model.Rubric) error {
		return r.Submit(r.RubricTeacherUserID, actor, dbtime.Now(c))
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "rúbrica enviada a revisión", dto.FromModel(r))
}

// POST /api/rubrics/:id/review
func (h *RubricController) Review(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req approvals.ReviewRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	actor := approvals.Actor{UserID: cl.UserID, Role: cl.Role}
	r, err := approvals.Transition(c.UserContext(), h.DB, scoped(scope), "rubric_id", id, notFound, func(r *model.Rubric) error {
		return r.Review(req.Decision, req.Comment, actor, dbtime.Now(c))
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	if h.Notifier != nil {
		h.Notifier.NotifyUsersAsync(r.RubricTenantID, []uuid.UUID{r.RubricTeacherUserID},
			approvals.ReviewNotice("rúbrica", r.RubricTitle, r.Approval, "/rubricas/"+r.RubricID.String()))
	}
	return helper.JsonUpdated(c, "revisión registrada", dto.FromModel(r))
}
