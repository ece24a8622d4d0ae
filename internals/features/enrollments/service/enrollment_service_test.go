package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/constants"
	courseModel "colegio_backend/internals/features/academics/courses/model"
	auditService "colegio_backend/internals/features/audit/service"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	"colegio_backend/internals/features/enrollments/dto"
	"colegio_backend/internals/features/enrollments/model"
	paymentModel "colegio_backend/internals/features/finance/payments/model"
	promiseModel "colegio_backend/internals/features/finance/promises/model"
	tariffModel "colegio_backend/internals/features/finance/tariffs/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	userModel "colegio_backend/internals/features/users/user/model"
)

/* ---------- fake store ---------- */

type fakeStore struct {
	tenant      tenantModel.Tenant
	courses     map[uuid.UUID]courseModel.Course
	students    map[uuid.UUID]*estudianteModel.Estudiante
	guardians   map[uuid.UUID]*apoderadoModel.Apoderado
	users       []userModel.User
	overdue     []paymentModel.Payment
	tariffs     []tariffModel.Tariff
	enrollments []model.Enrollment
	promises    []promiseModel.PaymentPromise
	payments    []paymentModel.Payment
	audits      []auditService.Entry
	failCreate  error
}

func newFakeStore(tenant tenantModel.Tenant) *fakeStore {
	return &fakeStore{
		tenant:    tenant,
		courses:   map[uuid.UUID]courseModel.Course{},
		students:  map[uuid.UUID]*estudianteModel.Estudiante{},
		guardians: map[uuid.UUID]*apoderadoModel.Apoderado{},
	}
}

// writes are applied directly; a failed callback leaves them (tests only inspect success paths)
func (f *fakeStore) InTx(_ context.Context, fn func(Store) error) error { return fn(f) }

func (f *fakeStore) GetTenant(context.Context, uuid.UUID) (tenantModel.Tenant, error) {
	return f.tenant, nil
}

func (f *fakeStore) GetCourse(_ context.Context, _ uuid.UUID, id uuid.UUID) (courseModel.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return c, ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeStore) LockStudent(_ context.Context, _ uuid.UUID, id uuid.UUID) (estudianteModel.Estudiante, error) {
	e, ok := f.students[id]
	if !ok {
		return estudianteModel.Estudiante{}, ErrStudentNotFound
	}
	return *e, nil
}

func (f *fakeStore) FindStudent(_ context.Context, _ uuid.UUID, rut, email *string) (*estudianteModel.Estudiante, error) {
	for _, e := range f.students {
		if rut != nil && e.EstudianteRUT != nil && *e.EstudianteRUT == *rut {
			cp := *e
			return &cp, nil
		}
		if email != nil && e.EstudianteEmail != nil && *e.EstudianteEmail == *email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveStudent(_ context.Context, e *estudianteModel.Estudiante) error {
	if e.EstudianteID == uuid.Nil {
		e.EstudianteID = uuid.New()
	}
	cp := *e
	f.students[e.EstudianteID] = &cp
	return nil
}

func (f *fakeStore) GetGuardian(_ context.Context, _ uuid.UUID, id uuid.UUID) (apoderadoModel.Apoderado, error) {
	a, ok := f.guardians[id]
	if !ok {
		return apoderadoModel.Apoderado{}, ErrGuardianNotFound
	}
	return *a, nil
}

func (f *fakeStore) PrincipalGuardian(_ context.Context, _ uuid.UUID, estudianteID uuid.UUID) (*apoderadoModel.Apoderado, error) {
	for _, a := range f.guardians {
		if a.ApoderadoEstudianteID != nil && *a.ApoderadoEstudianteID == estudianteID && a.ApoderadoType == apoderadoModel.TypePrincipal {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveGuardian(_ context.Context, a *apoderadoModel.Apoderado) error {
	if a.ApoderadoID == uuid.Nil {
		a.ApoderadoID = uuid.New()
	}
	cp := *a
	f.guardians[a.ApoderadoID] = &cp
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, _ uuid.UUID, email string) (*userModel.User, error) {
	for i := range f.users {
		if f.users[i].UserEmail == email {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *userModel.User) error {
	u.UserID = uuid.New()
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeStore) OverduePayments(context.Context, uuid.UUID, uuid.UUID) ([]paymentModel.Payment, error) {
	return f.overdue, nil
}

func (f *fakeStore) CreatePromise(_ context.Context, p *promiseModel.PaymentPromise) error {
	f.promises = append(f.promises, *p)
	return nil
}

func (f *fakeStore) CreateEnrollment(_ context.Context, e *model.Enrollment) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	e.EnrollmentID = uuid.New()
	f.enrollments = append(f.enrollments, *e)
	return nil
}

func (f *fakeStore) ActiveTariffs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]tariffModel.Tariff, error) {
	var out []tariffModel.Tariff
	for _, t := range f.tariffs {
		for _, id := range ids {
			if t.TariffID == id && t.TariffIsActive {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePayments(_ context.Context, rows []paymentModel.Payment, _ uuid.UUID, _ time.Time) error {
	f.payments = append(f.payments, rows...)
	return nil
}

func (f *fakeStore) Audit(_ context.Context, e auditService.Entry) error {
	f.audits = append(f.audits, e)
	return nil
}

type fakeFiles struct {
	uploaded []string
	deleted  []string
}

func (f *fakeFiles) UploadFiles(_ context.Context, dir string, files []*multipart.FileHeader) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, fh := range files {
		u := "https://cdn.test/" + dir + "/" + fh.Filename
		out = append(out, u)
		f.uploaded = append(f.uploaded, u)
	}
	return out, nil
}

func (f *fakeFiles) DeleteByURL(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeDebtors struct {
	calls []notifService.DebtInfo
}

func (f *fakeDebtors) SendDebtorNoticeAsync(_, _ uuid.UUID, _ string, info notifService.DebtInfo) {
	f.calls = append(f.calls, info)
}

/* ---------- fixtures ---------- */

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	store   *fakeStore
	files   *fakeFiles
	debtors *fakeDebtors
	actor   Actor
	course  courseModel.Course
	blocks  int
}

func newFixture(t *testing.T, role constants.Role) *fixture {
	t.Helper()
	tenantID := uuid.New()
	st := newFakeStore(tenantModel.Tenant{
		TenantID:          tenantID,
		TenantPaymentType: "paid",
		TenantAnnualFee:   decimal.NewFromInt(150000),
		TenantCurrency:    "CLP",
	})
	course := courseModel.Course{CourseID: uuid.New(), CourseTenantID: tenantID, CourseName: "1° Básico", CourseYear: 2025}
	st.courses[course.CourseID] = course

	f := &fixture{store: st, files: &fakeFiles{}, debtors: &fakeDebtors{}, course: course}
	f.actor = Actor{UserID: uuid.New(), Role: role, TenantID: tenantID}
	f.svc = &Service{
		Store:           st,
		Files:           f.files,
		Debtors:         f.debtors,
		DefaultPassword: "Colegio2025!",
		OnDebtBlock:     func() { f.blocks++ },
	}
	return f
}

func (f *fixture) addStudent() *estudianteModel.Estudiante {
	e := &estudianteModel.Estudiante{EstudianteID: uuid.New(), EstudianteTenantID: f.actor.TenantID, EstudianteFirstName: "Ana", EstudianteLastName: "Rojas"}
	f.store.students[e.EstudianteID] = e
	return e
}

func ptr[T any](v T) *T { return &v }

func overdue(amount int64, due time.Time) paymentModel.Payment {
	return paymentModel.Payment{
		PaymentID:      uuid.New(),
		PaymentStatus:  paymentModel.PaymentStatusOverdue,
		PaymentAmount:  decimal.NewFromInt(amount),
		PaymentDueDate: ptr(due),
	}
}

/* ---------- tests ---------- */

func TestCreate_NewStudentAndGuardian(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	req := dto.CreateEnrollmentRequest{
		NewStudent:  &dto.NewStudent{FirstName: "Ana", LastName: "Rojas", Email: ptr("ana@colegio.cl")},
		NewGuardian: &dto.NewGuardian{FirstName: "Luis", LastName: "Rojas", Email: ptr("luis@correo.cl")},
		CourseID:    f.course.CourseID.String(),
		Period:      "2025",
	}

	out, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: req}, now)
	require.NoError(t, err)

	assert.Equal(t, model.StatusConfirmada, out.EnrollmentStatus)
	assert.True(t, out.EnrollmentFee.Equal(decimal.NewFromInt(150000)))
	require.NotNil(t, out.Estudiante)
	require.NotNil(t, out.Apoderado)
	assert.Equal(t, "Ana Rojas", out.Estudiante.FullName)
	require.NotNil(t, out.EnrollmentApoderadoID)

	// one student user + one guardian user
	require.Len(t, f.store.users, 2)
	roles := []string{f.store.users[0].UserRole, f.store.users[1].UserRole}
	assert.ElementsMatch(t, []string{"student", "apoderado"}, roles)
	assert.NotEqual(t, "Colegio2025!", f.store.users[0].UserPassword)

	require.Len(t, f.store.audits, 1)
	assert.Equal(t, "enrollment", f.store.audits[0].Entity)
}

func TestCreate_FutureYearIsPreMatricula(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()

	out, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  f.course.CourseID.String(),
		Period:    "2026",
		Fee:       ptr(decimal.NewFromInt(90000)),
	}}, now)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreMatricula, out.EnrollmentStatus)
	assert.True(t, out.EnrollmentFee.Equal(decimal.NewFromInt(90000)))
}

func TestCreate_FreeTenantIgnoresFee(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	f.store.tenant.TenantPaymentType = "free"
	e := f.addStudent()

	out, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  f.course.CourseID.String(),
		Period:    "2025",
		Fee:       ptr(decimal.NewFromInt(90000)),
	}}, now)
	require.NoError(t, err)
	assert.True(t, out.EnrollmentFee.IsZero())
}

func TestCreate_UnknownCourse(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  uuid.NewString(),
		Period:    "2025",
	}}, now)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Empty(t, f.store.enrollments)
}

func TestCreate_DebtBlockWithOldDebtNotifies(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()
	f.store.overdue = []paymentModel.Payment{
		overdue(50000, now.AddDate(0, -4, 0)),
		overdue(30000, now.AddDate(0, -1, 0)),
	}
	fh := &multipart.FileHeader{Filename: "cert.pdf"}

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{
		Request: dto.CreateEnrollmentRequest{
			StudentID: ptr(e.EstudianteID.String()),
			CourseID:  f.course.CourseID.String(),
			Period:    "2025",
		},
		Files: []*multipart.FileHeader{fh},
	}, now)

	var blk *DebtBlockError
	require.True(t, errors.As(err, &blk))
	assert.Equal(t, 2, blk.Summary.OverdueCount)
	assert.True(t, blk.Summary.TotalDebt.Equal(decimal.NewFromInt(80000)))
	assert.True(t, blk.Summary.HasOldDebt)

	assert.Empty(t, f.store.enrollments)
	assert.Len(t, f.debtors.calls, 1)
	assert.Equal(t, 1, f.blocks)
	// uploaded documents are removed again
	assert.Equal(t, f.files.uploaded, f.files.deleted)
}

func TestCreate_DebtBlockRecentDebtDoesNotNotify(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()
	f.store.overdue = []paymentModel.Payment{overdue(30000, now.AddDate(0, -1, 0))}

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  f.course.CourseID.String(),
		Period:    "2025",
	}}, now)

	var blk *DebtBlockError
	require.True(t, errors.As(err, &blk))
	assert.False(t, blk.Summary.HasOldDebt)
	assert.Empty(t, f.debtors.calls)
}

func TestCreate_ReceiptOnOverdueKeepsBlock(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()
	p := overdue(30000, now.AddDate(0, -1, 0))
	// a guardian uploaded a receipt; staff have not confirmed it yet
	p.PaymentStatus = p.ReceiptStatus()
	p.PaymentReceiptURL = ptr("https://cdn.example.com/comprobante.jpg")
	f.store.overdue = []paymentModel.Payment{p}

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  f.course.CourseID.String(),
		Period:    "2025",
	}}, now)

	var blk *DebtBlockError
	require.True(t, errors.As(err, &blk))
	assert.Equal(t, 1, blk.Summary.OverdueCount)
	assert.Empty(t, f.store.enrollments)
}

func TestCreate_DirectorPromiseStillBlocked(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()
	f.store.overdue = []paymentModel.Payment{overdue(30000, now.AddDate(0, -1, 0))}

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID:      ptr(e.EstudianteID.String()),
		CourseID:       f.course.CourseID.String(),
		Period:         "2025",
		PaymentPromise: &dto.PromiseInput{Amount: decimal.NewFromInt(30000), Date: "2025-07-01"},
	}}, now)

	var blk *DebtBlockError
	assert.True(t, errors.As(err, &blk))
	assert.Empty(t, f.store.promises)
}

func TestCreate_SostenedorOverrideRecordsPromise(t *testing.T) {
	f := newFixture(t, constants.RoleSostenedor)
	e := f.addStudent()
	f.store.overdue = []paymentModel.Payment{overdue(30000, now.AddDate(0, -5, 0))}

	out, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID:      ptr(e.EstudianteID.String()),
		CourseID:       f.course.CourseID.String(),
		Period:         "2025",
		PaymentPromise: &dto.PromiseInput{Amount: decimal.NewFromInt(30000), Date: "2025-07-01"},
	}}, now)
	require.NoError(t, err)

	require.Len(t, f.store.promises, 1)
	p := f.store.promises[0]
	assert.Equal(t, promiseModel.PromiseActive, p.PaymentPromiseStatus)
	assert.Equal(t, 1, p.PaymentPromiseOverdueCount)
	assert.True(t, p.PaymentPromiseTotalDebt.Equal(decimal.NewFromInt(30000)))
	require.NotNil(t, p.PaymentPromiseEnrollmentID)
	assert.Equal(t, out.EnrollmentID, *p.PaymentPromiseEnrollmentID)
	assert.Empty(t, f.debtors.calls)
}

func TestCreate_TariffsBecomePayments(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()
	g := &apoderadoModel.Apoderado{
		ApoderadoID:           uuid.New(),
		ApoderadoTenantID:     f.actor.TenantID,
		ApoderadoEstudianteID: &e.EstudianteID,
		ApoderadoType:         apoderadoModel.TypePrincipal,
	}
	f.store.guardians[g.ApoderadoID] = g
	tariff := tariffModel.Tariff{
		TariffID:       uuid.New(),
		TariffTenantID: f.actor.TenantID,
		TariffName:     "Mensualidad",
		TariffAmount:   decimal.NewFromInt(45000),
		TariffCurrency: "CLP",
		TariffIsActive: true,
	}
	f.store.tariffs = []tariffModel.Tariff{tariff}

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  f.course.CourseID.String(),
		Period:    "2025",
		TariffIDs: []string{tariff.TariffID.String(), tariff.TariffID.String()},
	}}, now)
	require.NoError(t, err)

	require.Len(t, f.store.payments, 1)
	p := f.store.payments[0]
	assert.True(t, p.PaymentAmount.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, paymentModel.PaymentStatusPending, p.PaymentStatus)
	require.NotNil(t, p.PaymentApoderadoID)
	assert.Equal(t, g.ApoderadoID, *p.PaymentApoderadoID)
	require.NotNil(t, p.PaymentEnrollmentID)
}

func TestCreate_UnknownTariffRejected(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	e := f.addStudent()

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID: ptr(e.EstudianteID.String()),
		CourseID:  f.course.CourseID.String(),
		Period:    "2025",
		TariffIDs: []string{uuid.NewString()},
	}}, now)
	assert.ErrorIs(t, err, ErrTariffNotFound)
}

func TestCreate_ExistingUserEmailIsReused(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	existing := userModel.User{UserID: uuid.New(), UserEmail: "luis@correo.cl", UserRole: "apoderado"}
	f.store.users = append(f.store.users, existing)
	e := f.addStudent()

	out, err := f.svc.Create(context.Background(), f.actor, CreateInput{Request: dto.CreateEnrollmentRequest{
		StudentID:   ptr(e.EstudianteID.String()),
		NewGuardian: &dto.NewGuardian{FirstName: "Luis", LastName: "Rojas", Email: ptr("Luis@Correo.cl")},
		CourseID:    f.course.CourseID.String(),
		Period:      "2025",
	}}, now)
	require.NoError(t, err)
	require.Len(t, f.store.users, 1)

	g := f.store.guardians[*out.EnrollmentApoderadoID]
	require.NotNil(t, g.ApoderadoUserID)
	assert.Equal(t, existing.UserID, *g.ApoderadoUserID)
}

func TestCreate_DuplicateCleansUploads(t *testing.T) {
	f := newFixture(t, constants.RoleDirector)
	f.store.failCreate = ErrDuplicateEnrollment
	e := f.addStudent()

	_, err := f.svc.Create(context.Background(), f.actor, CreateInput{
		Request: dto.CreateEnrollmentRequest{
			StudentID: ptr(e.EstudianteID.String()),
			CourseID:  f.course.CourseID.String(),
			Period:    "2025",
		},
		Files: []*multipart.FileHeader{{Filename: "a.pdf"}, {Filename: "b.pdf"}},
	}, now)
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)
	assert.Len(t, f.files.deleted, 2)
	assert.Equal(t, 0, f.blocks)
}
