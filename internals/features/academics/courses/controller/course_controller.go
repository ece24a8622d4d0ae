package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/academics/courses/dto"
	"colegio_backend/internals/features/academics/courses/model"
	userService "colegio_backend/internals/features/users/user/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type CourseController struct {
	DB    *gorm.DB
	Links helperAuth.LinkResolver
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{DB: db, Links: helperAuth.NewDBLinks(db)}
}

var courseCols = helperAuth.Columns{Tenant: "course_tenant_id", Course: "course_id"}

var courseSort = map[string]string{
	"name":       "course_name",
	"year":       "course_year",
	"created_at": "course_created_at",
}

type enrolledCount struct {
	CourseID uuid.UUID
	N        int64
}

// withCounts attaches live enrollment counts (retirada/anulada excluded).
func (ctl *CourseController) withCounts(c *fiber.Ctx, rows []model.Course) ([]dto.CourseResponse, error) {
	out := make([]dto.CourseResponse, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].CourseID
	}
	var counts []enrolledCount
	if err := ctl.DB.WithContext(c.UserContext()).Raw(`
		SELECT enrollment_course_id AS course_id, COUNT(*) AS n
		FROM enrollments
		WHERE enrollment_course_id IN ? AND enrollment_deleted_at IS NULL
		  AND enrollment_status NOT IN ('retirada','anulada')
		GROUP BY enrollment_course_id`, ids).Scan(&counts).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int64, len(counts))
	for _, ct := range counts {
		byID[ct.CourseID] = ct.N
	}
	for i := range rows {
		out[i] = dto.CourseResponse{Course: rows[i], Label: rows[i].Label(), Enrolled: byID[rows[i].CourseID]}
	}
	return out, nil
}

func (ctl *CourseController) checkHeadTeacher(c *fiber.Ctx, tenantID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := userService.IsTeachingStaff(c.UserContext(), ctl.DB, tenantID, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "headTeacherId no es un docente del colegio")
	}
	return nil
}

// GET /api/courses?year=&q=
func (ctl *CourseController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.Course{}), courseCols)
	if y, err := strconv.Atoi(strings.TrimSpace(c.Query("year"))); err == nil {
		q = q.Where("course_year = ?", y)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("course_name ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 50, 200)
	var rows []model.Course
	if err := q.Order(helper.ResolveSort(c, courseSort, "name", "asc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	out, err := ctl.withCounts(c, rows)
	if err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", out, helper.BuildPagination(total, pg))
}

// GET /api/courses/:id
func (ctl *CourseController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, ctl.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.Course
	if err := scope.Apply(ctl.DB.WithContext(c.UserContext()).Model(&model.Course{}), courseCols).
		Where("course_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
		}
		return helper.DBError(c, err)
	}
	out, err := ctl.withCounts(c, []model.Course{row})
	if err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", out[0])
}

// POST /api/courses
func (ctl *CourseController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateCourseRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	row := req.ToModel(tenantID)
	if err := ctl.checkHeadTeacher(c, tenantID, row.CourseHeadTeacherUserID); err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "curso creado", dto.CourseResponse{Course: row, Label: row.Label()})
}

// PATCH /api/courses/:id
func (ctl *CourseController) Patch(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateCourseRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var row model.Course
	q := ctl.DB.WithContext(c.UserContext()).Where("course_id = ?", id)
	if tenantID != nil {
		q = q.Where("course_tenant_id = ?", *tenantID)
	}
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "curso no encontrado")
		}
		return helper.DBError(c, err)
	}
	req.Apply(&row)
	if err := ctl.checkHeadTeacher(c, row.CourseTenantID, row.CourseHeadTeacherUserID); err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.DB.WithContext(c.UserContext()).Save(&row).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "curso actualizado", dto.CourseResponse{Course: row, Label: row.Label()})
}

// DELETE /api/courses/:id: refused while live enrollments exist.
func (ctl *CourseController) Delete(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var row model.Course
		q := tx.Where("course_id = ?", id)
		if tenantID != nil {
			q = q.Where("course_tenant_id = ?", *tenantID)
		}
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "curso no encontrado")
			}
			return err
		}
		var live int64
		if err := tx.Table("enrollments").
			Where("enrollment_course_id = ? AND enrollment_deleted_at IS NULL AND enrollment_status NOT IN ('retirada','anulada')", id).
			Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return fiber.NewError(fiber.StatusConflict, "el curso tiene matrículas vigentes")
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "curso eliminado", fiber.Map{"id": id})
}
