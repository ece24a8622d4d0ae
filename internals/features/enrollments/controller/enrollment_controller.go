// file: internals/features/enrollments/controller/enrollment_controller.go
package controller

import (
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	courseModel "colegio_backend/internals/features/academics/courses/model"
	auditModel "colegio_backend/internals/features/audit/model"
	auditService "colegio_backend/internals/features/audit/service"
	"colegio_backend/internals/features/enrollments/certificate"
	"colegio_backend/internals/features/enrollments/dto"
	"colegio_backend/internals/features/enrollments/model"
	"colegio_backend/internals/features/enrollments/repository"
	svc "colegio_backend/internals/features/enrollments/service"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
	"colegio_backend/internals/helpers/storage"
	"colegio_backend/internals/middlewares/metrics"
)

type EnrollmentController struct {
	DB          *gorm.DB
	Links       helperAuth.LinkResolver
	Service     *svc.Service
	Storage     *storage.Service
	FrontendURL string
}

// NewEnrollmentController wires the workflow to Postgres, object storage and the debtor mailer.
func NewEnrollmentController(db *gorm.DB, store *storage.Service, debtors svc.DebtorNotifier, defaultPassword, frontendURL string) *EnrollmentController {
	s := &svc.Service{
		Store:           repository.NewGormStore(db),
		Debtors:         debtors,
		DefaultPassword: defaultPassword,
		OnDebtBlock:     metrics.DebtBlocks.Inc,
	}
	if store != nil {
		s.Files = store
	}
	return &EnrollmentController{
		DB:          db,
		Links:       helperAuth.NewDBLinks(db),
		Service:     s,
		Storage:     store,
		FrontendURL: frontendURL,
	}
}

var enrollmentCols = helperAuth.Columns{
	Tenant:  "enrollment_tenant_id",
	Student: "enrollment_estudiante_id",
	Course:  "enrollment_course_id",
}

var enrollmentSort = map[string]string{
	"created_at": "enrollment_created_at",
	"period":     "enrollment_period",
	"status":     "enrollment_status",
}

func (h *EnrollmentController) load(c *fiber.Ctx, scope helperAuth.Scope, id uuid.UUID) (model.Enrollment, error) {
	var e model.Enrollment
	q := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Enrollment{}), enrollmentCols)
	if err := q.Where("enrollment_id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e, fiber.NewError(fiber.StatusNotFound, "matrícula no encontrada")
		}
		return e, err
	}
	return e, nil
}

// attach student/course/guardian summaries to a page of enrollments
func (h *EnrollmentController) hydrate(c *fiber.Ctx, rows []model.Enrollment) []dto.EnrollmentResponse {
	db := h.DB.WithContext(c.UserContext())
	studentIDs := make([]uuid.UUID, 0, len(rows))
	courseIDs := make([]uuid.UUID, 0, len(rows))
	guardianIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		studentIDs = append(studentIDs, r.EnrollmentEstudianteID)
		courseIDs = append(courseIDs, r.EnrollmentCourseID)
		if r.EnrollmentApoderadoID != nil {
			guardianIDs = append(guardianIDs, *r.EnrollmentApoderadoID)
		}
	}

	students := map[uuid.UUID]*estudianteModel.Estudiante{}
	courses := map[uuid.UUID]*courseModel.Course{}
	guardians := map[uuid.UUID]*apoderadoModel.Apoderado{}
	if len(studentIDs) > 0 {
		var list []estudianteModel.Estudiante
		db.Where("estudiante_id IN ?", studentIDs).Find(&list)
		for i := range list {
			students[list[i].EstudianteID] = &list[i]
		}
		var cl []courseModel.Course
		db.Where("course_id IN ?", courseIDs).Find(&cl)
		for i := range cl {
			courses[cl[i].CourseID] = &cl[i]
		}
	}
	if len(guardianIDs) > 0 {
		var gl []apoderadoModel.Apoderado
		db.Where("apoderado_id IN ?", guardianIDs).Find(&gl)
		for i := range gl {
			guardians[gl[i].ApoderadoID] = &gl[i]
		}
	}

	out := make([]dto.EnrollmentResponse, 0, len(rows))
	for _, r := range rows {
		var g *apoderadoModel.Apoderado
		if r.EnrollmentApoderadoID != nil {
			g = guardians[*r.EnrollmentApoderadoID]
		}
		out = append(out, dto.NewEnrollmentResponse(r, students[r.EnrollmentEstudianteID], courses[r.EnrollmentCourseID], g))
	}
	return out
}

/* =========================================================
   CREATE
========================================================= */

// POST /api/enrollments
// JSON body, or multipart with the JSON in "payload" and files under documents[]/files[].
func (h *EnrollmentController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreateEnrollmentRequest
	var files []*multipart.FileHeader
	if storage.IsMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "multipart inválido")
		}
		raw := strings.TrimSpace(c.FormValue("payload"))
		if raw == "" {
			return helper.JsonError(c, fiber.StatusBadRequest, "campo payload requerido")
		}
		if err := sonic.UnmarshalString(raw, &req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "payload inválido: "+err.Error())
		}
		files = storage.CollectUploadFiles(form, storage.DocumentFields)
		if len(files) > 0 && h.Storage == nil {
			return helper.JsonError(c, fiber.StatusServiceUnavailable, "almacenamiento no configurado")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "body inválido")
	}

	req.Normalize()
	if fields := helper.ValidateStruct(&req); fields != nil {
		return helper.JsonValidationError(c, fields)
	}
	if fields := req.Check(); fields != nil {
		return helper.JsonValidationError(c, fields)
	}

	out, err := h.Service.Create(c.UserContext(), svc.Actor{UserID: cl.UserID, Role: cl.Role, TenantID: tenantID},
		svc.CreateInput{Request: req, Files: files}, dbtime.Now(c))
	if err != nil {
		return h.writeCreateError(c, err)
	}
	log.Printf("[ENROLL] matrícula %s creada tenant=%s estudiante=%s", out.EnrollmentID, tenantID, out.EnrollmentEstudianteID)
	return helper.JsonCreated(c, "matrícula creada", out)
}

func (h *EnrollmentController) writeCreateError(c *fiber.Ctx, err error) error {
	var blk *svc.DebtBlockError
	switch {
	case errors.As(err, &blk):
		return helper.JsonErrorCode(c, fiber.StatusForbidden, "DEBT_BLOCK", blk.Error(), dto.DebtBlockData{
			OverdueCount: blk.Summary.OverdueCount,
			TotalDebt:    blk.Summary.TotalDebt,
			HasOldDebt:   blk.Summary.HasOldDebt,
		})
	case errors.Is(err, svc.ErrCourseNotFound),
		errors.Is(err, svc.ErrStudentNotFound),
		errors.Is(err, svc.ErrGuardianNotFound),
		errors.Is(err, svc.ErrTariffNotFound),
		errors.Is(err, svc.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, svc.ErrDuplicateEnrollment):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	}
	log.Printf("[ERROR] crear matrícula: %v", err)
	return helper.DBError(c, err)
}

/* =========================================================
   LIST / GET
========================================================= */

// GET /api/enrollments
func (h *EnrollmentController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query inválido")
	}

	tx := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Enrollment{}), enrollmentCols)
	if id, err := uuid.Parse(strings.TrimSpace(q.CourseID)); err == nil {
		tx = tx.Where("enrollment_course_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.EstudianteID)); err == nil {
		tx = tx.Where("enrollment_estudiante_id = ?", id)
	}
	if p := strings.TrimSpace(q.Period); p != "" {
		tx = tx.Where("enrollment_period = ?", p)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Status)); s != "" {
		if !model.IsValidStatus(s) {
			return helper.JsonError(c, fiber.StatusBadRequest, "status inválido")
		}
		tx = tx.Where("enrollment_status = ?", s)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Enrollment
	if err := tx.Order(helper.ResolveSort(c, enrollmentSort, "created_at", "desc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", h.hydrate(c, rows), helper.BuildPagination(total, pg))
}

// GET /api/enrollments/:id
func (h *EnrollmentController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	e, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", h.hydrate(c, []model.Enrollment{e})[0])
}

/* =========================================================
   UPDATE / DELETE
========================================================= */

// PATCH /api/enrollments/:id
func (h *EnrollmentController) Patch(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateEnrollmentRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if req.Fee != nil && req.Fee.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"fee": {"fee no puede ser negativo"}})
	}

	var out model.Enrollment
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		q := scope.Apply(tx.Model(&model.Enrollment{}), enrollmentCols)
		if err := q.Where("enrollment_id = ?", id).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "matrícula no encontrada")
			}
			return err
		}

		changes := map[string]any{}
		if req.Status != nil {
			out.EnrollmentStatus = *req.Status
			changes["status"] = *req.Status
		}
		if req.Fee != nil {
			out.EnrollmentFee = *req.Fee
			changes["fee"] = req.Fee.String()
		}
		if req.Notes != nil {
			out.EnrollmentNotes = req.Notes
		}
		if req.CourseID != nil {
			cid := uuid.MustParse(*req.CourseID)
			var n int64
			tx.Model(&courseModel.Course{}).
				Where("course_id = ? AND course_tenant_id = ?", cid, out.EnrollmentTenantID).Count(&n)
			if n == 0 {
				return fiber.NewError(fiber.StatusNotFound, "curso no encontrado")
			}
			out.EnrollmentCourseID = cid
			changes["courseId"] = cid
		}
		if err := tx.Save(&out).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, svc.ErrDuplicateEnrollment.Error())
			}
			return err
		}
		return auditService.Record(tx, auditService.Entry{
			TenantID: out.EnrollmentTenantID,
			ActorID:  &cl.UserID,
			Action:   auditModel.ActionUpdate,
			Entity:   "enrollment",
			EntityID: auditService.Ptr(out.EnrollmentID),
			Meta:     changes,
		})
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return helper.JsonError(c, fe.Code, fe.Message)
		}
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "matrícula actualizada", out)
}

// DELETE /api/enrollments/:id (soft; payments and grades stay)
func (h *EnrollmentController) Delete(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	e, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Enrollment{}, "enrollment_id = ?", e.EnrollmentID).Error; err != nil {
			return err
		}
		return auditService.Record(tx, auditService.Entry{
			TenantID: e.EnrollmentTenantID,
			ActorID:  &cl.UserID,
			Action:   auditModel.ActionDelete,
			Entity:   "enrollment",
			EntityID: auditService.Ptr(e.EnrollmentID),
		})
	})
	if err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "matrícula eliminada", fiber.Map{"id": e.EnrollmentID})
}

/* =========================================================
   DOCUMENTS / CERTIFICATE
========================================================= */

// POST /api/enrollments/:id/documents
func (h *EnrollmentController) AddDocuments(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	e, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if h.Storage == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "almacenamiento no configurado")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "multipart inválido")
	}
	files := storage.CollectUploadFiles(form, storage.DocumentFields)
	if len(files) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "no se recibieron archivos")
	}

	urls, err := h.Storage.UploadFiles(c.UserContext(), "enrollments/"+e.EnrollmentTenantID.String(), files)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadGateway, "error subiendo documentos: "+err.Error())
	}
	// array_cat keeps concurrent appends from overwriting each other
	if err := h.DB.WithContext(c.UserContext()).Model(&model.Enrollment{}).
		Where("enrollment_id = ?", e.EnrollmentID).
		Update("enrollment_documents", gorm.Expr("array_cat(COALESCE(enrollment_documents, '{}'), ?)", pq.StringArray(urls))).Error; err != nil {
		for _, u := range urls {
			_ = h.Storage.DeleteByURL(c.UserContext(), u)
		}
		return helper.DBError(c, err)
	}
	e, _ = h.load(c, scope, id)
	return helper.JsonUpdated(c, "documentos agregados", e)
}

// GET /api/enrollments/:id/certificate
func (h *EnrollmentController) Certificate(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	e, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if e.EnrollmentStatus == model.StatusAnulada || e.EnrollmentStatus == model.StatusRetirada {
		return helper.JsonError(c, fiber.StatusConflict, "la matrícula no está vigente")
	}

	db := h.DB.WithContext(c.UserContext())
	var (
		t   tenantModel.Tenant
		est estudianteModel.Estudiante
		crs courseModel.Course
	)
	if err := db.First(&t, "tenant_id = ?", e.EnrollmentTenantID).Error; err != nil {
		return helper.DBError(c, err)
	}
	if err := db.First(&est, "estudiante_id = ?", e.EnrollmentEstudianteID).Error; err != nil {
		return helper.DBError(c, err)
	}
	if err := db.First(&crs, "course_id = ?", e.EnrollmentCourseID).Error; err != nil {
		return helper.DBError(c, err)
	}

	issued := dbtime.Now(c)
	d := certificate.Data{
		SchoolName:  t.TenantName,
		StudentName: est.FullName(),
		CourseLabel: crs.Label(),
		Period:      e.EnrollmentPeriod,
		Status:      e.EnrollmentStatus,
		IssuedAt:    issued,
		Folio:       certificate.Folio(e.EnrollmentID.String(), issued),
	}
	if est.EstudianteRUT != nil {
		d.StudentRUT = *est.EstudianteRUT
	}
	if h.FrontendURL != "" {
		d.VerifyURL = h.FrontendURL + "/verificar/matricula/" + e.EnrollmentID.String()
	}
	pdf, err := certificate.Render(d)
	if err != nil {
		log.Printf("[ERROR] certificado %s: %v", e.EnrollmentID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="certificado-matricula-`+e.EnrollmentPeriod+`.pdf"`)
	return c.Send(pdf)
}
