// file: internals/features/academics/evaluations/controller/evaluation_controller.go
package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"colegio_backend/internals/constants"
	courseModel "colegio_backend/internals/features/academics/courses/model"
	"colegio_backend/internals/features/academics/evaluations/dto"
	"colegio_backend/internals/features/academics/evaluations/model"
	svc "colegio_backend/internals/features/academics/evaluations/service"
	"colegio_backend/internals/features/academics/evaluations/sheet"
	questionModel "colegio_backend/internals/features/academics/questions/model"
	subjectModel "colegio_backend/internals/features/academics/subjects/model"
	"colegio_backend/internals/features/approvals"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	tenantModel "colegio_backend/internals/features/tenants/model"
	userModel "colegio_backend/internals/features/users/user/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type EvaluationController struct {
	DB       *gorm.DB
	Links    helperAuth.LinkResolver
	Notifier approvals.Notifier
}

func NewEvaluationController(db *gorm.DB, n approvals.Notifier) *EvaluationController {
	return &EvaluationController{DB: db, Links: helperAuth.NewDBLinks(db), Notifier: n}
}

var evaluationCols = helperAuth.Columns{Tenant: "evaluation_tenant_id", Course: "evaluation_course_id"}

var evaluationSort = map[string]string{
	"date":       "evaluation_date",
	"created_at": "evaluation_created_at",
	"title":      "evaluation_title",
}

// students and guardians only ever see approved evaluations
func visible(q *gorm.DB, scope helperAuth.Scope) *gorm.DB {
	if scope.Role == constants.RoleStudent || scope.Role == constants.RoleApoderado {
		return q.Where("evaluation_status = ?", approvals.StatusApproved)
	}
	return q
}

func (h *EvaluationController) find(tx *gorm.DB, scope helperAuth.Scope, id uuid.UUID, lock bool) (model.Evaluation, error) {
	var ev model.Evaluation
	q := visible(scope.Apply(tx.Model(&model.Evaluation{}), evaluationCols), scope)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("evaluation_id = ?", id).First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ev, fiber.NewError(fiber.StatusNotFound, "evaluación no encontrada")
		}
		return ev, err
	}
	return ev, nil
}

func writeErr(c *fiber.Ctx, err error) error {
	var ce *svc.CheckError
	if errors.As(err, &ce) {
		var data any
		if ce.Code == svc.CodeScheduleConflict {
			data = fiber.Map{"conflictId": ce.ConflictID}
		}
		return helper.JsonErrorCode(c, fiber.StatusBadRequest, ce.Code, ce.Message, data)
	}
	if errors.Is(err, svc.ErrSubjectNotInCourse) {
		return helper.JsonValidationError(c, map[string][]string{"subjectId": {err.Error()}})
	}
	return approvals.WriteError(c, err)
}

/* =========================================================
   READ
========================================================= */

// GET /api/evaluations
func (h *EvaluationController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query inválido")
	}

	tx := visible(scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Evaluation{}), evaluationCols), scope)
	if id, err := uuid.Parse(strings.TrimSpace(q.CourseID)); err == nil {
		tx = tx.Where("evaluation_course_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.SubjectID)); err == nil {
		tx = tx.Where("evaluation_subject_id = ?", id)
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		tx = tx.Where("evaluation_status = ?", s)
	}
	if d, err := time.ParseInLocation("2006-01-02", q.From, dbtime.Location(c)); err == nil {
		tx = tx.Where("evaluation_date >= ?", d)
	}
	if d, err := time.ParseInLocation("2006-01-02", q.To, dbtime.Location(c)); err == nil {
		tx = tx.Where("evaluation_date < ?", d.AddDate(0, 0, 1))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Evaluation
	if err := tx.Order(helper.ResolveSort(c, evaluationSort, "date", "asc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/evaluations/:id
func (h *EvaluationController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ev, err := h.find(h.DB.WithContext(c.UserContext()), scope, id, false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", ev)
}

/* =========================================================
   WRITE
========================================================= */

// POST /api/evaluations
func (h *EvaluationController) Create(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateEvaluationRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	ev := req.ToModel(tenantID, cl.UserID)
	if !scope.HasCourse(ev.EvaluationCourseID) {
		return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
	}
	var subject subjectModel.Subject
	if err := h.DB.WithContext(c.UserContext()).
		First(&subject, "subject_id = ? AND subject_course_id = ? AND subject_tenant_id = ?",
			ev.EvaluationSubjectID, ev.EvaluationCourseID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonValidationError(c, map[string][]string{"subjectId": {"la asignatura no pertenece al curso"}})
		}
		return helper.DBError(c, err)
	}

	// owner: teachers create their own; staff may assign, else the subject teacher
	if cl.Role != constants.RoleTeacher {
		switch {
		case req.TeacherID != nil:
			ev.EvaluationTeacherUserID = uuid.MustParse(*req.TeacherID)
		case subject.SubjectTeacherUserID != nil:
			ev.EvaluationTeacherUserID = *subject.SubjectTeacherUserID
		}
	}
	ev.Status = approvals.InitialStatus(cl.Role, true)

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := svc.Guard(c.UserContext(), svc.NewGormGuardStore(tx), ev, dbtime.Location(c)); err != nil {
			return err
		}
		return tx.Create(&ev).Error
	})
	if err != nil {
		return writeErr(c, err)
	}
	return helper.JsonCreated(c, "evaluación creada", ev)
}

// PATCH /api/evaluations/:id
func (h *EvaluationController) Patch(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateEvaluationRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var ev model.Evaluation
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		if ev, err = h.find(tx, scope, id, true); err != nil {
			return err
		}
		if err := ev.CanEdit(ev.EvaluationTeacherUserID, approvals.Actor{UserID: cl.UserID, Role: cl.Role}); err != nil {
			return err
		}
		if req.Apply(&ev) {
			if err := svc.Guard(c.UserContext(), svc.NewGormGuardStore(tx), ev, dbtime.Location(c)); err != nil {
				return err
			}
		}
		return tx.Save(&ev).Error
	})
	if err != nil {
		return writeErr(c, err)
	}
	return helper.JsonUpdated(c, "evaluación actualizada", ev)
}

// DELETE /api/evaluations/:id
func (h *EvaluationController) Delete(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ev, err := h.find(h.DB.WithContext(c.UserContext()), scope, id, false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ev.CanEdit(ev.EvaluationTeacherUserID, approvals.Actor{UserID: cl.UserID, Role: cl.Role}); err != nil {
		return writeErr(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(&model.Evaluation{}, "evaluation_id = ?", ev.EvaluationID).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "evaluación eliminada", fiber.Map{"id": ev.EvaluationID})
}

/* =========================================================
   APPROVAL
========================================================= */

// POST /api/evaluations/:id/submit
func (h *EvaluationController) Submit(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var ev model.Evaluation
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		if ev, err = h.find(tx, scope, id, true); err != nil {
			return err
		}
		if err := ev.Submit(ev.EvaluationTeacherUserID, approvals.Actor{UserID: cl.UserID, Role: cl.Role}, dbtime.Now(c)); err != nil {
			return err
		}
		return tx.Save(&ev).Error
	})
	if err != nil {
		return writeErr(c, err)
	}
	return helper.JsonUpdated(c, "evaluación enviada a revisión", ev)
}

// POST /api/evaluations/:id/review
func (h *EvaluationController) Review(c *fiber.Ctx) error {
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

	var ev model.Evaluation
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		if ev, err = h.find(tx, scope, id, true); err != nil {
			return err
		}
		if err := ev.Review(req.Decision, req.Comment, approvals.Actor{UserID: cl.UserID, Role: cl.Role}, dbtime.Now(c)); err != nil {
			return err
		}
		return tx.Save(&ev).Error
	})
	if err != nil {
		return writeErr(c, err)
	}

	h.notifyReview(c, ev)
	return helper.JsonUpdated(c, "revisión registrada", ev)
}

// owner always hears the result; enrolled students hear about approved evaluations
func (h *EvaluationController) notifyReview(c *fiber.Ctx, ev model.Evaluation) {
	if h.Notifier == nil {
		return
	}
	path := "/evaluaciones/" + ev.EvaluationID.String()
	h.Notifier.NotifyUsersAsync(ev.EvaluationTenantID, []uuid.UUID{ev.EvaluationTeacherUserID},
		approvals.ReviewNotice("evaluación", ev.EvaluationTitle, ev.Approval, path))

	if ev.Status != approvals.StatusApproved {
		return
	}
	var userIDs []uuid.UUID
	if err := h.DB.WithContext(c.UserContext()).Raw(`
		SELECT e.estudiante_user_id
		  FROM enrollments en
		  JOIN estudiantes e ON e.estudiante_id = en.enrollment_estudiante_id AND e.estudiante_deleted_at IS NULL
		 WHERE en.enrollment_course_id = ? AND en.enrollment_deleted_at IS NULL
		   AND en.enrollment_status IN ('pre-matricula', 'confirmada')
		   AND e.estudiante_user_id IS NOT NULL`, ev.EvaluationCourseID).Scan(&userIDs).Error; err != nil {
		log.Printf("[WARN] destinatarios evaluación %s: %v", ev.EvaluationID, err)
		return
	}
	if len(userIDs) == 0 {
		return
	}
	h.Notifier.NotifyUsersAsync(ev.EvaluationTenantID, userIDs, notifService.Notice{
		Type:  "evaluation",
		Title: "Nueva evaluación: " + ev.EvaluationTitle,
		Body:  fmt.Sprintf("Tienes una evaluación programada para el %s.", ev.EvaluationDate.In(dbtime.Location(c)).Format("02-01-2006 15:04")),
		Path:  path,
		Meta:  map[string]any{"evaluationId": ev.EvaluationID},
	})
}

/* =========================================================
   PRINT
========================================================= */

// GET /api/evaluations/:id/print
func (h *EvaluationController) Print(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if scope.Role == constants.RoleStudent || scope.Role == constants.RoleApoderado {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleError(scope.Role, "imprimir evaluaciones"))
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := h.DB.WithContext(c.UserContext())
	ev, err := h.find(db, scope, id, false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var (
		t       tenantModel.Tenant
		course  courseModel.Course
		subject subjectModel.Subject
		teacher userModel.User
	)
	db.First(&t, "tenant_id = ?", ev.EvaluationTenantID)
	db.First(&course, "course_id = ?", ev.EvaluationCourseID)
	db.First(&subject, "subject_id = ?", ev.EvaluationSubjectID)
	db.First(&teacher, "user_id = ?", ev.EvaluationTeacherUserID)

	// questions in the order stored on the evaluation
	var questions []questionModel.Question
	ids := lo.FilterMap([]string(ev.EvaluationQuestionIDs), func(s string, _ int) (uuid.UUID, bool) {
		id, err := uuid.Parse(s)
		return id, err == nil
	})
	if len(ids) > 0 {
		var found []questionModel.Question
		if err := db.Where("question_id IN ? AND question_tenant_id = ?", ids, ev.EvaluationTenantID).Find(&found).Error; err != nil {
			return helper.DBError(c, err)
		}
		byID := lo.KeyBy(found, func(q questionModel.Question) uuid.UUID { return q.QuestionID })
		for _, id := range ids {
			if q, ok := byID[id]; ok {
				questions = append(questions, q)
			}
		}
	}

	desc := ""
	if ev.EvaluationDescription != nil {
		desc = *ev.EvaluationDescription
	}
	pdf, err := sheet.Render(sheet.Sheet{
		SchoolName:  t.TenantName,
		CourseLabel: course.Label(),
		SubjectName: subject.SubjectName,
		TeacherName: teacher.UserFullName,
		Title:       ev.EvaluationTitle,
		Description: desc,
		Type:        ev.EvaluationType,
		Date:        ev.EvaluationDate.In(dbtime.Location(c)).Format("02-01-2006 15:04"),
		Questions:   questions,
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="evaluacion-%s.pdf"`, helper.Slugify(ev.EvaluationTitle, 60)))
	return c.Send(pdf)
}
