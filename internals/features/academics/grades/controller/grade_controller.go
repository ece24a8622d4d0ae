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
	evalModel "colegio_backend/internals/features/academics/evaluations/model"
	"colegio_backend/internals/features/academics/grades/dto"
	"colegio_backend/internals/features/academics/grades/model"
	svc "colegio_backend/internals/features/academics/grades/service"
	"colegio_backend/internals/features/approvals"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type GradeController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewGradeController(db *gorm.DB) *GradeController {
	return &GradeController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

const joinEvaluations = "JOIN evaluations ON evaluations.evaluation_id = grades.grade_evaluation_id AND evaluations.evaluation_deleted_at IS NULL"

var gradeCols = helperAuth.Columns{
	Tenant:  "grades.grade_tenant_id",
	Student: "grades.grade_estudiante_id",
	Course:  "evaluations.evaluation_course_id",
}

// students and guardians see grades of approved evaluations only
func visible(q *gorm.DB, scope helperAuth.Scope) *gorm.DB {
	q = scope.Apply(q.Joins(joinEvaluations), gradeCols)
	if scope.Role == constants.RoleStudent || scope.Role == constants.RoleApoderado {
		q = q.Where("evaluations.evaluation_status = ?", approvals.StatusApproved)
	}
	return q
}

// GET /api/grades?evaluationId=&estudianteId=&courseId=
func (h *GradeController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := visible(h.DB.WithContext(c.UserContext()).Model(&model.Grade{}), scope)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("evaluationId"))); err == nil {
		q = q.Where("grades.grade_evaluation_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("estudianteId"))); err == nil {
		q = q.Where("grades.grade_estudiante_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where("evaluations.evaluation_course_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 500)
	var rows []model.Grade
	if err := q.Select("grades.*").Order("evaluations.evaluation_date DESC, grades.grade_created_at ASC").
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// upsert writes items for one evaluation. The evaluation must be visible to the
// caller and every student must hold a live enrollment in its course.
func (h *GradeController) upsert(c *fiber.Ctx, evaluationID uuid.UUID, items []dto.BulkGradeItem) ([]model.Grade, error) {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return nil, err
	}
	var out []model.Grade
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var ev evalModel.Evaluation
		if err := scope.Apply(tx.Model(&evalModel.Evaluation{}), helperAuth.Columns{
			Tenant: "evaluation_tenant_id", Course: "evaluation_course_id",
		}).Where("evaluation_id = ?", evaluationID).First(&ev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "evaluación no encontrada")
			}
			return err
		}

		ids := lo.Uniq(lo.Map(items, func(it dto.BulkGradeItem, _ int) uuid.UUID { return it.EstudianteID }))
		if len(ids) != len(items) {
			return fiber.NewError(fiber.StatusBadRequest, "estudiante repetido en la lista")
		}
		var enrolled []uuid.UUID
		if err := tx.Table("enrollments").
			Where("enrollment_course_id = ? AND enrollment_estudiante_id IN ?", ev.EvaluationCourseID, ids).
			Where("enrollment_deleted_at IS NULL AND enrollment_status NOT IN ('retirada','anulada')").
			Pluck("enrollment_estudiante_id", &enrolled).Error; err != nil {
			return err
		}
		if missing, _ := lo.Difference(ids, enrolled); len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "estudiante no matriculado en el curso: "+missing[0].String())
		}

		out = make([]model.Grade, len(items))
		for i, it := range items {
			out[i] = model.Grade{
				GradeTenantID:     ev.EvaluationTenantID,
				GradeEvaluationID: ev.EvaluationID,
				GradeEstudianteID: it.EstudianteID,
				GradeScore:        dto.RoundScore(it.Score),
				GradeComment:      it.Comment,
				GradeRecordedBy:   cl.UserID,
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "grade_evaluation_id"}, {Name: "grade_estudiante_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"grade_score":       gorm.Expr("EXCLUDED.grade_score"),
				"grade_comment":     gorm.Expr("EXCLUDED.grade_comment"),
				"grade_recorded_by": gorm.Expr("EXCLUDED.grade_recorded_by"),
				"grade_updated_at":  gorm.Expr("NOW()"),
				"grade_deleted_at":  nil,
			}),
		}).Create(&out).Error
	})
	return out, err
}

// PUT /api/grades
func (h *GradeController) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertGradeRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	rows, err := h.upsert(c, req.EvaluationID, req.Items())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "nota registrada", rows[0])
}

// POST /api/grades/bulk
func (h *GradeController) Bulk(c *fiber.Ctx) error {
	var req dto.BulkGradeRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	rows, err := h.upsert(c, req.EvaluationID, req.Grades)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "notas registradas", fiber.Map{"count": len(rows), "grades": rows})
}

// DELETE /api/grades/:id
func (h *GradeController) Delete(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var g model.Grade
	if err := visible(h.DB.WithContext(c.UserContext()).Model(&model.Grade{}), scope).
		Where("grades.grade_id = ?", id).Select("grades.*").First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "nota no encontrada")
		}
		return helper.DBError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(&g).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "nota eliminada", fiber.Map{"id": id})
}

// GET /api/grades/average/:estudianteId?courseId=
func (h *GradeController) Average(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	estudianteID, err := helperAuth.ParseUUIDParam(c, "estudianteId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !scope.HasStudent(estudianteID) {
		return helper.JsonError(c, fiber.StatusNotFound, "estudiante no encontrado")
	}

	q := visible(h.DB.WithContext(c.UserContext()).Model(&model.Grade{}), scope).
		Joins("JOIN subjects ON subjects.subject_id = evaluations.evaluation_subject_id").
		Where("grades.grade_estudiante_id = ?", estudianteID)
	if id, err := uuid.Parse(strings.TrimSpace(c.Query("courseId"))); err == nil {
		q = q.Where("evaluations.evaluation_course_id = ?", id)
	}
	var rows []svc.ScoreRow
	if err := q.Select(`subjects.subject_id AS subject_id, subjects.subject_name AS subject_name,
		grades.grade_score AS score, evaluations.evaluation_weight AS weight`).
		Scan(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", svc.Report(estudianteID, rows))
}
