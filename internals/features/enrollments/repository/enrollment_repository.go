package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "colegio_backend/internals/features/academics/courses/model"
	auditService "colegio_backend/internals/features/audit/service"
	"colegio_backend/internals/features/enrollments/model"
	"colegio_backend/internals/features/enrollments/service"
	paymentModel "colegio_backend/internals/features/finance/payments/model"
	paymentService "colegio_backend/internals/features/finance/payments/service"
	promiseModel "colegio_backend/internals/features/finance/promises/model"
	tariffModel "colegio_backend/internals/features/finance/tariffs/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	userModel "colegio_backend/internals/features/users/user/model"
	helper "colegio_backend/internals/helpers"
)

// GormStore implements service.Store on Postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

var _ service.Store = (*GormStore)(nil)

func (s *GormStore) InTx(ctx context.Context, fn func(service.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) db(ctx context.Context) *gorm.DB { return s.DB.WithContext(ctx) }

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (s *GormStore) GetTenant(ctx context.Context, id uuid.UUID) (tenantModel.Tenant, error) {
	var t tenantModel.Tenant
	err := s.db(ctx).First(&t, "tenant_id = ?", id).Error
	return t, notFound(err, service.ErrNotFound)
}

func (s *GormStore) GetCourse(ctx context.Context, tenantID, id uuid.UUID) (courseModel.Course, error) {
	var c courseModel.Course
	err := s.db(ctx).First(&c, "course_id = ? AND course_tenant_id = ?", id, tenantID).Error
	return c, notFound(err, service.ErrCourseNotFound)
}

func (s *GormStore) LockStudent(ctx context.Context, tenantID, id uuid.UUID) (estudianteModel.Estudiante, error) {
	var e estudianteModel.Estudiante
	err := s.db(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, "estudiante_id = ? AND estudiante_tenant_id = ?", id, tenantID).Error
	return e, notFound(err, service.ErrStudentNotFound)
}

func (s *GormStore) FindStudent(ctx context.Context, tenantID uuid.UUID, rut, email *string) (*estudianteModel.Estudiante, error) {
	if rut == nil && email == nil {
		return nil, nil
	}
	q := s.db(ctx).Where("estudiante_tenant_id = ?", tenantID)
	switch {
	case rut != nil && email != nil:
		// rut match first; a plain "= ? DESC" would sort NULL ruts ahead
		q = q.Where("(estudiante_rut = ? OR LOWER(estudiante_email) = ?)", *rut, *email).
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:                "CASE WHEN estudiante_rut = ? THEN 0 ELSE 1 END, estudiante_created_at",
				Vars:               []any{*rut},
				WithoutParentheses: true,
			}})
	case rut != nil:
		q = q.Where("estudiante_rut = ?", *rut).Order("estudiante_created_at")
	default:
		q = q.Where("LOWER(estudiante_email) = ?", *email).Order("estudiante_created_at")
	}
	var rows []estudianteModel.Estudiante
	if err := q.Limit(2).Find(&rows).Error; err != nil {
		return nil, err
	}
	return preferRUT(rows, rut), nil
}

// preferRUT picks the row whose RUT equals rut, else the first row.
func preferRUT(rows []estudianteModel.Estudiante, rut *string) *estudianteModel.Estudiante {
	if len(rows) == 0 {
		return nil
	}
	if rut != nil {
		for i := range rows {
			if rows[i].EstudianteRUT != nil && *rows[i].EstudianteRUT == *rut {
				return &rows[i]
			}
		}
	}
	return &rows[0]
}

func (s *GormStore) SaveStudent(ctx context.Context, e *estudianteModel.Estudiante) error {
	return s.db(ctx).Save(e).Error
}

func (s *GormStore) GetGuardian(ctx context.Context, tenantID, id uuid.UUID) (apoderadoModel.Apoderado, error) {
	var a apoderadoModel.Apoderado
	err := s.db(ctx).First(&a, "apoderado_id = ? AND apoderado_tenant_id = ?", id, tenantID).Error
	return a, notFound(err, service.ErrGuardianNotFound)
}

func (s *GormStore) PrincipalGuardian(ctx context.Context, tenantID, estudianteID uuid.UUID) (*apoderadoModel.Apoderado, error) {
	var a apoderadoModel.Apoderado
	err := s.db(ctx).
		Where("apoderado_tenant_id = ? AND apoderado_estudiante_id = ? AND apoderado_type = ?",
			tenantID, estudianteID, apoderadoModel.TypePrincipal).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) SaveGuardian(ctx context.Context, a *apoderadoModel.Apoderado) error {
	return s.db(ctx).Save(a).Error
}

func (s *GormStore) FindUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*userModel.User, error) {
	var u userModel.User
	err := s.db(ctx).Where("user_tenant_id = ? AND user_email = ?", tenantID, email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *userModel.User) error {
	return s.db(ctx).Create(u).Error
}

func (s *GormStore) OverduePayments(ctx context.Context, tenantID, estudianteID uuid.UUID) ([]paymentModel.Payment, error) {
	var rows []paymentModel.Payment
	err := s.db(ctx).
		Where("payment_tenant_id = ? AND payment_estudiante_id = ? AND payment_status = ?",
			tenantID, estudianteID, paymentModel.PaymentStatusOverdue).
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) CreatePromise(ctx context.Context, p *promiseModel.PaymentPromise) error {
	return s.db(ctx).Create(p).Error
}

func (s *GormStore) CreateEnrollment(ctx context.Context, e *model.Enrollment) error {
	err := s.db(ctx).Create(e).Error
	if helper.IsUniqueViolation(err) {
		return service.ErrDuplicateEnrollment
	}
	return err
}

func (s *GormStore) ActiveTariffs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]tariffModel.Tariff, error) {
	var rows []tariffModel.Tariff
	err := s.db(ctx).
		Where("tariff_tenant_id = ? AND tariff_id IN ? AND tariff_is_active = TRUE", tenantID, ids).
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) CreatePayments(ctx context.Context, rows []paymentModel.Payment, actor uuid.UUID, now time.Time) error {
	return paymentService.CreateTx(ctx, s.db(ctx), rows, &actor, now)
}

func (s *GormStore) Audit(ctx context.Context, e auditService.Entry) error {
	return auditService.Record(s.db(ctx), e)
}
