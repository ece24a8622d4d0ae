package service

import (
	"context"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"colegio_backend/internals/constants"
	courseModel "colegio_backend/internals/features/academics/courses/model"
	auditModel "colegio_backend/internals/features/audit/model"
	auditService "colegio_backend/internals/features/audit/service"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	"colegio_backend/internals/features/enrollments/dto"
	"colegio_backend/internals/features/enrollments/model"
	paymentModel "colegio_backend/internals/features/finance/payments/model"
	promiseModel "colegio_backend/internals/features/finance/promises/model"
	tariffModel "colegio_backend/internals/features/finance/tariffs/model"
	tariffService "colegio_backend/internals/features/finance/tariffs/service"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	userModel "colegio_backend/internals/features/users/user/model"
)

var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrCourseNotFound      = errors.New("curso no encontrado")
	ErrStudentNotFound     = errors.New("estudiante no encontrado")
	ErrGuardianNotFound    = errors.New("apoderado no encontrado")
	ErrTariffNotFound      = errors.New("uno o más aranceles no existen o están inactivos")
	ErrDuplicateEnrollment = errors.New("el estudiante ya tiene una matrícula activa en este curso y periodo")
)

// Store is the persistence the enrollment workflow runs on.
// Every method of the Store handed to InTx's callback runs inside the same transaction.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error

	GetTenant(ctx context.Context, id uuid.UUID) (tenantModel.Tenant, error)
	GetCourse(ctx context.Context, tenantID, id uuid.UUID) (courseModel.Course, error)

	// LockStudent reads the student row FOR UPDATE
	LockStudent(ctx context.Context, tenantID, id uuid.UUID) (estudianteModel.Estudiante, error)
	FindStudent(ctx context.Context, tenantID uuid.UUID, rut, email *string) (*estudianteModel.Estudiante, error)
	SaveStudent(ctx context.Context, e *estudianteModel.Estudiante) error

	GetGuardian(ctx context.Context, tenantID, id uuid.UUID) (apoderadoModel.Apoderado, error)
	PrincipalGuardian(ctx context.Context, tenantID, estudianteID uuid.UUID) (*apoderadoModel.Apoderado, error)
	SaveGuardian(ctx context.Context, a *apoderadoModel.Apoderado) error

	FindUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*userModel.User, error)
	CreateUser(ctx context.Context, u *userModel.User) error

	OverduePayments(ctx context.Context, tenantID, estudianteID uuid.UUID) ([]paymentModel.Payment, error)
	CreatePromise(ctx context.Context, p *promiseModel.PaymentPromise) error
	CreateEnrollment(ctx context.Context, e *model.Enrollment) error
	ActiveTariffs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]tariffModel.Tariff, error)
	// CreatePayments inserts and resyncs the guardians' financial status
	CreatePayments(ctx context.Context, rows []paymentModel.Payment, actor uuid.UUID, now time.Time) error
	Audit(ctx context.Context, e auditService.Entry) error
}

// Uploader stores enrollment documents.
type Uploader interface {
	UploadFiles(ctx context.Context, dir string, files []*multipart.FileHeader) ([]string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// DebtorNotifier mails the guardians of a blocked debtor. Must not block.
type DebtorNotifier interface {
	SendDebtorNoticeAsync(tenantID, estudianteID uuid.UUID, studentName string, info notifService.DebtInfo)
}

type Service struct {
	Store           Store
	Files           Uploader
	Debtors         DebtorNotifier
	DefaultPassword string
	// OnDebtBlock is called once per rejected enrollment (metrics)
	OnDebtBlock func()
}

// Actor is the caller of a workflow.
type Actor struct {
	UserID   uuid.UUID
	Role     constants.Role
	TenantID uuid.UUID
}

// CreateInput is a validated create request plus its uploads.
type CreateInput struct {
	Request dto.CreateEnrollmentRequest
	Files   []*multipart.FileHeader
}

// Create runs the enrollment workflow: student and guardian resolution, debt gate,
// optional promise, enrollment, tariff payments and guardian resync, in one transaction.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput, now time.Time) (dto.EnrollmentResponse, error) {
	req := in.Request
	courseID := uuid.MustParse(req.CourseID)

	tenant, err := s.Store.GetTenant(ctx, actor.TenantID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	course, err := s.Store.GetCourse(ctx, actor.TenantID, courseID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	// documents first: object storage cannot join the transaction
	var docs []string
	if len(in.Files) > 0 && s.Files != nil {
		docs, err = s.Files.UploadFiles(ctx, "enrollments/"+actor.TenantID.String(), in.Files)
		if err != nil {
			return dto.EnrollmentResponse{}, errors.Wrap(err, "subida de documentos")
		}
	}

	var (
		out     dto.EnrollmentResponse
		blocked *DebtBlockError
		student estudianteModel.Estudiante
	)
	err = s.Store.InTx(ctx, func(st Store) error {
		var err error
		student, err = s.resolveStudent(ctx, st, actor, req)
		if err != nil {
			return err
		}
		guardian, err := s.resolveGuardian(ctx, st, actor, req, student)
		if err != nil {
			return err
		}

		// 🔒 debt gate, on the locked student row
		overdue, err := st.OverduePayments(ctx, actor.TenantID, student.EstudianteID)
		if err != nil {
			return err
		}
		summary := SummarizeDebt(overdue, now)
		var promise *promiseModel.PaymentPromise
		switch DecideGate(summary, actor.Role, req.PaymentPromise != nil) {
		case GateBlock:
			blocked = &DebtBlockError{Summary: summary}
			return blocked
		case GateOverride:
			promise, err = s.recordPromise(ctx, st, actor, req.PaymentPromise, student, guardian, summary)
			if err != nil {
				return err
			}
		}

		e := model.Enrollment{
			EnrollmentTenantID:     actor.TenantID,
			EnrollmentEstudianteID: student.EstudianteID,
			EnrollmentCourseID:     course.CourseID,
			EnrollmentPeriod:       req.Period,
			EnrollmentStatus:       model.InitialStatus(req.Period, now),
			EnrollmentFee:          ResolveFee(tenant, req.Fee),
			EnrollmentDocuments:    pq.StringArray(docs),
			EnrollmentNotes:        req.Notes,
			EnrollmentCreatedBy:    &actor.UserID,
		}
		if guardian != nil {
			e.EnrollmentApoderadoID = &guardian.ApoderadoID
		}
		if err := st.CreateEnrollment(ctx, &e); err != nil {
			return err
		}
		if promise != nil {
			// link the override to the enrollment it allowed
			promise.PaymentPromiseEnrollmentID = &e.EnrollmentID
			if err := st.CreatePromise(ctx, promise); err != nil {
				return err
			}
		}

		if err := s.billTariffs(ctx, st, actor, req, e, guardian, now); err != nil {
			return err
		}

		if err := st.Audit(ctx, auditService.Entry{
			TenantID: actor.TenantID,
			ActorID:  &actor.UserID,
			Action:   auditModel.ActionCreate,
			Entity:   "enrollment",
			EntityID: auditService.Ptr(e.EnrollmentID),
			Meta: map[string]any{
				"estudianteId": student.EstudianteID,
				"courseId":     course.CourseID,
				"period":       e.EnrollmentPeriod,
				"debtOverride": promise != nil,
			},
		}); err != nil {
			return err
		}

		if guardian != nil {
			// pick up the financial status written by the resync
			if g, err := st.GetGuardian(ctx, actor.TenantID, guardian.ApoderadoID); err == nil {
				guardian = &g
			}
		}
		out = dto.NewEnrollmentResponse(e, &student, &course, guardian)
		return nil
	})

	if err != nil {
		s.discard(docs)
		if blocked != nil {
			s.onBlocked(actor, student, blocked.Summary, tenant)
			return out, blocked
		}
		return out, err
	}
	return out, nil
}

func (s *Service) onBlocked(actor Actor, student estudianteModel.Estudiante, sum DebtSummary, tenant tenantModel.Tenant) {
	if s.OnDebtBlock != nil {
		s.OnDebtBlock()
	}
	log.Printf("[ENROLL] DEBT_BLOCK tenant=%s estudiante=%s overdue=%d total=%s old=%v",
		actor.TenantID, student.EstudianteID, sum.OverdueCount, sum.TotalDebt.String(), sum.HasOldDebt)
	if sum.HasOldDebt && s.Debtors != nil {
		s.Debtors.SendDebtorNoticeAsync(actor.TenantID, student.EstudianteID, student.FullName(), notifService.DebtInfo{
			OverdueCount: sum.OverdueCount,
			TotalDebt:    sum.TotalDebt,
			HasOldDebt:   sum.HasOldDebt,
			Currency:     tenant.TenantCurrency,
		})
	}
}

// discard removes uploads of a rolled back enrollment.
func (s *Service) discard(urls []string) {
	if s.Files == nil {
		return
	}
	for _, u := range urls {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.Files.DeleteByURL(ctx, u); err != nil {
			log.Printf("[WARN] documento huérfano %s: %v", u, err)
		}
		cancel()
	}
}

/* =========================================================
   Student / guardian resolution
========================================================= */

func (s *Service) resolveStudent(ctx context.Context, st Store, actor Actor, req dto.CreateEnrollmentRequest) (estudianteModel.Estudiante, error) {
	if req.StudentID != nil {
		return st.LockStudent(ctx, actor.TenantID, uuid.MustParse(*req.StudentID))
	}

	ns := req.NewStudent
	found, err := st.FindStudent(ctx, actor.TenantID,
		estudianteModel.NormalizeRUTPtr(ns.RUT), lowerPtr(ns.Email))
	if err != nil {
		return estudianteModel.Estudiante{}, err
	}
	if found != nil {
		// merge into the existing record, then lock it
		ns.Apply(found)
		if err := st.SaveStudent(ctx, found); err != nil {
			return *found, err
		}
		return st.LockStudent(ctx, actor.TenantID, found.EstudianteID)
	}

	e := estudianteModel.Estudiante{EstudianteTenantID: actor.TenantID, EstudianteIsActive: true}
	ns.Apply(&e)
	if err := st.SaveStudent(ctx, &e); err != nil {
		return e, err
	}
	if e.EstudianteEmail != nil {
		uid, err := s.provisionUser(ctx, st, actor.TenantID, *e.EstudianteEmail, e.FullName(), constants.RoleStudent, e.EstudianteID)
		if err != nil {
			return e, err
		}
		if uid != nil {
			e.EstudianteUserID = uid
			if err := st.SaveStudent(ctx, &e); err != nil {
				return e, err
			}
		}
	}
	return e, nil
}

func (s *Service) resolveGuardian(ctx context.Context, st Store, actor Actor, req dto.CreateEnrollmentRequest, student estudianteModel.Estudiante) (*apoderadoModel.Apoderado, error) {
	if req.ApoderadoID != nil {
		g, err := st.GetGuardian(ctx, actor.TenantID, uuid.MustParse(*req.ApoderadoID))
		if err != nil {
			return nil, err
		}
		return &g, nil
	}

	principal, err := st.PrincipalGuardian(ctx, actor.TenantID, student.EstudianteID)
	if err != nil {
		return nil, err
	}
	if req.NewGuardian == nil {
		return principal, nil
	}
	if principal != nil {
		req.NewGuardian.Apply(principal)
		if err := st.SaveGuardian(ctx, principal); err != nil {
			return nil, err
		}
		return principal, nil
	}

	sid := student.EstudianteID
	g := apoderadoModel.Apoderado{
		ApoderadoTenantID:        actor.TenantID,
		ApoderadoEstudianteID:    &sid,
		ApoderadoType:            apoderadoModel.TypePrincipal,
		ApoderadoFinancialStatus: apoderadoModel.FinancialSolvente,
	}
	req.NewGuardian.Apply(&g)
	if err := st.SaveGuardian(ctx, &g); err != nil {
		return nil, err
	}
	if g.ApoderadoEmail != nil {
		uid, err := s.provisionUser(ctx, st, actor.TenantID, *g.ApoderadoEmail, g.FullName(), constants.RoleApoderado, g.ApoderadoID)
		if err != nil {
			return nil, err
		}
		if uid != nil {
			g.ApoderadoUserID = uid
			if err := st.SaveGuardian(ctx, &g); err != nil {
				return nil, err
			}
		}
	}
	return &g, nil
}

// provisionUser creates the login account keyed by e-mail. An existing account with the
// same e-mail is reused (siblings share a guardian login).
func (s *Service) provisionUser(ctx context.Context, st Store, tenantID uuid.UUID, email, fullName string, role constants.Role, profileID uuid.UUID) (*uuid.UUID, error) {
	email = userModel.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	existing, err := st.FindUserByEmail(ctx, tenantID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &existing.UserID, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	tid := tenantID
	pid := profileID
	u := userModel.User{
		UserTenantID:  &tid,
		UserEmail:     email,
		UserPassword:  string(hash),
		UserFullName:  fullName,
		UserRole:      string(role),
		UserProfileID: &pid,
		UserIsActive:  true,
	}
	if err := st.CreateUser(ctx, &u); err != nil {
		return nil, err
	}
	return &u.UserID, nil
}

/* =========================================================
   Promise / tariffs
========================================================= */

func (s *Service) recordPromise(ctx context.Context, st Store, actor Actor, in *dto.PromiseInput, student estudianteModel.Estudiante, guardian *apoderadoModel.Apoderado, sum DebtSummary) (*promiseModel.PaymentPromise, error) {
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, errors.Wrap(err, "paymentPromise.date")
	}
	p := &promiseModel.PaymentPromise{
		PaymentPromiseTenantID:     actor.TenantID,
		PaymentPromiseEstudianteID: student.EstudianteID,
		PaymentPromiseAmount:       in.Amount,
		PaymentPromiseDate:         date,
		PaymentPromiseTotalDebt:    sum.TotalDebt,
		PaymentPromiseOverdueCount: sum.OverdueCount,
		PaymentPromiseStatus:       promiseModel.PromiseActive,
		PaymentPromiseCreatedBy:    actor.UserID,
		PaymentPromiseNotes:        in.Notes,
	}
	if guardian != nil {
		p.PaymentPromiseApoderadoID = &guardian.ApoderadoID
	}
	log.Printf("[ENROLL] override de deuda por %s estudiante=%s deuda=%s", actor.UserID, student.EstudianteID, sum.TotalDebt.String())
	return p, nil
}

func (s *Service) billTariffs(ctx context.Context, st Store, actor Actor, req dto.CreateEnrollmentRequest, e model.Enrollment, guardian *apoderadoModel.Apoderado, now time.Time) error {
	if len(req.TariffIDs) == 0 {
		return nil
	}
	ids := lo.Uniq(lo.Map(req.TariffIDs, func(s string, _ int) uuid.UUID { return uuid.MustParse(s) }))
	tariffs, err := st.ActiveTariffs(ctx, actor.TenantID, ids)
	if err != nil {
		return err
	}
	if len(tariffs) != len(ids) {
		return ErrTariffNotFound
	}

	tgt := tariffService.Target{EstudianteID: e.EnrollmentEstudianteID, EnrollmentID: e.EnrollmentID}
	if guardian != nil {
		tgt.ApoderadoID = &guardian.ApoderadoID
	}
	rows := make([]paymentModel.Payment, 0, len(tariffs))
	for _, t := range tariffs {
		rows = append(rows, tariffService.PaymentFor(t, tgt, e.EnrollmentPeriod, tariffService.DueDate(t, e.EnrollmentPeriod, nil, now)))
	}
	return st.CreatePayments(ctx, rows, actor.UserID, now)
}

func lowerPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := userModel.NormalizeEmail(*p)
	if v == "" {
		return nil
	}
	return &v
}

// TotalDebt is a convenience for reports and tests.
func TotalDebt(rows []paymentModel.Payment) decimal.Decimal {
	return lo.Reduce(rows, func(acc decimal.Decimal, p paymentModel.Payment, _ int) decimal.Decimal {
		return acc.Add(p.PaymentAmount)
	}, decimal.Zero)
}
