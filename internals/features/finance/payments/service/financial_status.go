package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/finance/payments/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
)

var ErrGuardianNotFound = errors.New("apoderado no encontrado")

// FinancialStore is the persistence the guardian sync needs.
type FinancialStore interface {
	GetGuardian(ctx context.Context, id uuid.UUID) (apoderadoModel.Apoderado, error)
	// payments referencing the guardian, or its student when the payment names no guardian,
	// in an outstanding status and due strictly before now
	HasOutstanding(ctx context.Context, g apoderadoModel.Apoderado, now time.Time) (bool, error)
	SetFinancialStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
	GuardianIDsOfStudent(ctx context.Context, tenantID, estudianteID uuid.UUID) ([]uuid.UUID, error)
}

// DecideFinancialStatus: exento is sticky, otherwise moroso iff something is outstanding.
func DecideFinancialStatus(current string, hasOutstanding bool) string {
	if current == apoderadoModel.FinancialExento {
		return apoderadoModel.FinancialExento
	}
	if hasOutstanding {
		return apoderadoModel.FinancialMoroso
	}
	return apoderadoModel.FinancialSolvente
}

// SyncFinancialStatus recomputes and persists one guardian's status. Idempotent.
// Run it with a store bound to the transaction that wrote the payments.
func SyncFinancialStatus(ctx context.Context, st FinancialStore, apoderadoID uuid.UUID, now time.Time) (string, error) {
	g, err := st.GetGuardian(ctx, apoderadoID)
	if err != nil {
		return "", err
	}
	if g.ApoderadoFinancialStatus == apoderadoModel.FinancialExento {
		return g.ApoderadoFinancialStatus, nil
	}
	has, err := st.HasOutstanding(ctx, g, now)
	if err != nil {
		return "", err
	}
	next := DecideFinancialStatus(g.ApoderadoFinancialStatus, has)
	if next == g.ApoderadoFinancialStatus && g.ApoderadoFinancialStatusAt != nil {
		return next, nil
	}
	if err := st.SetFinancialStatus(ctx, apoderadoID, next, now); err != nil {
		return "", err
	}
	return next, nil
}

// SyncStudentGuardians resyncs every guardian linked to the student.
func SyncStudentGuardians(ctx context.Context, st FinancialStore, tenantID, estudianteID uuid.UUID, now time.Time) error {
	ids, err := st.GuardianIDsOfStudent(ctx, tenantID, estudianteID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := SyncFinancialStatus(ctx, st, id, now); err != nil {
			return err
		}
	}
	return nil
}

// SyncPaymentGuardians resyncs whoever a payment touches: its guardian, or the student's guardians.
func SyncPaymentGuardians(ctx context.Context, st FinancialStore, p model.Payment, now time.Time) error {
	if p.PaymentApoderadoID != nil {
		if _, err := SyncFinancialStatus(ctx, st, *p.PaymentApoderadoID, now); err != nil && !errors.Is(err, ErrGuardianNotFound) {
			return err
		}
	}
	return SyncStudentGuardians(ctx, st, p.PaymentTenantID, p.PaymentEstudianteID, now)
}

/* =========================================================
   GORM store
========================================================= */

type GormFinancialStore struct{ DB *gorm.DB }

func NewGormFinancialStore(db *gorm.DB) *GormFinancialStore { return &GormFinancialStore{DB: db} }

func (s *GormFinancialStore) GetGuardian(ctx context.Context, id uuid.UUID) (apoderadoModel.Apoderado, error) {
	var g apoderadoModel.Apoderado
	err := s.DB.WithContext(ctx).First(&g, "apoderado_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return g, ErrGuardianNotFound
	}
	return g, err
}

func (s *GormFinancialStore) HasOutstanding(ctx context.Context, g apoderadoModel.Apoderado, now time.Time) (bool, error) {
	var exists bool
	studentID := uuid.Nil
	if g.ApoderadoEstudianteID != nil {
		studentID = *g.ApoderadoEstudianteID
	}
	err := s.DB.WithContext(ctx).Raw(`
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE payment_deleted_at IS NULL
			  AND payment_tenant_id = ?
			  AND (payment_apoderado_id = ?
			       OR (payment_apoderado_id IS NULL AND payment_estudiante_id = ?))
			  AND payment_status IN ?
			  AND payment_due_date < ?
		)`,
		g.ApoderadoTenantID, g.ApoderadoID, studentID, model.OutstandingStatuses, now,
	).Scan(&exists).Error
	return exists, err
}

func (s *GormFinancialStore) SetFinancialStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	return s.DB.WithContext(ctx).Model(&apoderadoModel.Apoderado{}).
		Where("apoderado_id = ?", id).
		Updates(map[string]any{
			"apoderado_financial_status":    status,
			"apoderado_financial_status_at": at,
		}).Error
}

func (s *GormFinancialStore) GuardianIDsOfStudent(ctx context.Context, tenantID, estudianteID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&apoderadoModel.Apoderado{}).
		Where("apoderado_tenant_id = ? AND apoderado_estudiante_id = ?", tenantID, estudianteID).
		Pluck("apoderado_id", &ids).Error
	return ids, err
}

// AllGuardianIDs lists every live guardian, optionally within one tenant (CLI, cron).
func (s *GormFinancialStore) AllGuardianIDs(ctx context.Context, tenantID *uuid.UUID) ([]uuid.UUID, error) {
	q := s.DB.WithContext(ctx).Model(&apoderadoModel.Apoderado{})
	if tenantID != nil {
		q = q.Where("apoderado_tenant_id = ?", *tenantID)
	}
	var ids []uuid.UUID
	err := q.Pluck("apoderado_id", &ids).Error
	return ids, err
}
