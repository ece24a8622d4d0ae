package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/academics/questions/dto"
	"colegio_backend/internals/features/academics/questions/model"
	"colegio_backend/internals/features/approvals"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type QuestionController struct {
	DB       *gorm.DB
	Links    helperAuth.LinkResolver
	Notifier approvals.Notifier
}

func NewQuestionController(db *gorm.DB, n approvals.Notifier) *QuestionController {
	return &QuestionController{DB: db, Links: helperAuth.NewDBLinks(db), Notifier: n}
}

const notFound = "pregunta no encontrada"

// writable: rows the caller may mutate (own for teachers, tenant for staff).
func writable(scope helperAuth.Scope) func(*gorm.DB) *gorm.DB {
	return approvals.Owned(scope, "question_tenant_id", "question_teacher_user_id")
}

// readable widens writable for teachers with the tenant's approved bank.
func readable(scope helperAuth.Scope) func(*gorm.DB) *gorm.DB {
	if scope.Role != constants.RoleTeacher || scope.Empty || scope.TenantID == nil {
		return writable(scope)
	}
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("question_tenant_id = ?", *scope.TenantID).
			Where("question_teacher_user_id = ? OR question_status = ?", scope.UserID, approvals.StatusApproved)
	}
}

/* =========================================================
   Queries
========================================================= */

// GET /api/questions?courseId=&subjectId=&type=&status=&q=
func (h *QuestionController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tx := readable(scope)(h.DB.WithContext(c.UserContext()).Model(&model.Question{}))
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		tx = tx.Where("question_course_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("subjectId"))); err == nil {
		tx = tx.Where("question_subject_id = ?", id)
	}
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		tx = tx.Where("question_type = ?", t)
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		tx = tx.Where("question_status = ?", s)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		tx = tx.Where("question_statement ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 500)
	var rows []model.Question
	if err := tx.Order("question_created_at DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/questions/:id
func (h *QuestionController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var q model.Question
	if err := readable(scope)(h.DB.WithContext(c.UserContext()).Model(&model.Question{})).
		Where("question_id = ?", id).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, notFound)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", q)
}

/* =========================================================
   Commands
========================================================= */

// POST /api/questions
func (h *QuestionController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateQuestionRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	q := req.ToModel(tenantID, cl.UserID)
	if fe := dto.Check(q); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if q.QuestionCourseID != nil && !scope.HasCourse(*q.QuestionCourseID) {
		return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
	}
	q.Status = approvals.StatusDraft
	if err := h.DB.WithContext(c.UserContext()).Create(&q).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "pregunta creada", q)
}

// PATCH /api/questions/:id
func (h *QuestionController) Patch(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateQuestionRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var invalid map[string][]string
	q, err := approvals.Transition(c.UserContext(), h.DB, writable(scope), "question_id", id, notFound, func(q *model.Question) error {
		if err := q.CanEdit(q.QuestionTeacherUserID, approvals.Actor{UserID: cl.UserID, Role: cl.Role}); err != nil {
			return err
		}
		req.Apply(q)
		if invalid = dto.Check(*q); invalid != nil {
			return fiber.ErrBadRequest
		}
		return nil
	})
	if invalid != nil {
		return helper.JsonValidationError(c, invalid)
	}
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "pregunta actualizada", q)
}

// DELETE /api/questions/:id
func (h *QuestionController) Delete(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var q model.Question
		if err := writable(scope)(tx.Model(&model.Question{})).Where("question_id = ?", id).First(&q).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		if err := q.CanEdit(q.QuestionTeacherUserID, approvals.Actor{UserID: cl.UserID, Role: cl.Role}); err != nil {
			return err
		}
		return tx.Delete(&q).Error
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonDeleted(c, "pregunta eliminada", fiber.Map{"id": id})
}

// POST /api/questions/:id/submit
func (h *QuestionController) Submit(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q, err := approvals.Transition(c.UserContext(), h.DB, writable(scope), "question_id", id, notFound, func(q *model.Question) error {
		return q.Submit(q.QuestionTeacherUserID, approvals.Actor{UserID: cl.UserID, Role: cl.Role}, dbtime.Now(c))
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "pregunta enviada a revisión", q)
}

// POST /api/questions/:id/review
func (h *QuestionController) Review(c *fiber.Ctx) error {
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
	q, err := approvals.Transition(c.UserContext(), h.DB, writable(scope), "question_id", id, notFound, func(q *model.Question) error {
		return q.Review(req.Decision, req.Comment, approvals.Actor{UserID: cl.UserID, Role: cl.Role}, dbtime.Now(c))
	})
	if err != nil {
		return approvals.WriteError(c, err)
	}
	if h.Notifier != nil {
		title := q.QuestionStatement
		if r := []rune(title); len(r) > 60 {
			title = string(r[:60]) + "…"
		}
		h.Notifier.NotifyUsersAsync(q.QuestionTenantID, []uuid.UUID{q.QuestionTeacherUserID},
			approvals.ReviewNotice("pregunta", title, q.Approval, "/banco-preguntas/"+q.QuestionID.String()))
	}
	return helper.JsonUpdated(c, "revisión registrada", q)
}
