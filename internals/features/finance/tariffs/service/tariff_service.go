package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	enrollmentModel "colegio_backend/internals/features/enrollments/model"
	paymentModel "colegio_backend/internals/features/finance/payments/model"
	paymentService "colegio_backend/internals/features/finance/payments/service"
	"colegio_backend/internals/features/finance/tariffs/dto"
	"colegio_backend/internals/features/finance/tariffs/model"
)

var (
	ErrTariffNotFound = errors.New("arancel no encontrado")
	ErrTariffInactive = errors.New("arancel inactivo")
)

// Target is one active enrollment a tariff can be billed to.
type Target struct {
	EstudianteID uuid.UUID
	ApoderadoID  *uuid.UUID
	EnrollmentID uuid.UUID
}

// PaymentFor builds the pending charge a tariff produces for one student.
func PaymentFor(t model.Tariff, tgt Target, period string, due *time.Time) paymentModel.Payment {
	tariffID := t.TariffID
	p := paymentModel.Payment{
		PaymentTenantID:     t.TariffTenantID,
		PaymentEstudianteID: tgt.EstudianteID,
		PaymentApoderadoID:  tgt.ApoderadoID,
		PaymentTariffID:     &tariffID,
		PaymentPeriod:       &period,
		PaymentConcept:      t.TariffName,
		PaymentAmount:       t.TariffAmount,
		PaymentCurrency:     t.TariffCurrency,
		PaymentStatus:       paymentModel.PaymentStatusPending,
		PaymentDueDate:      due,
		PaymentMethod:       paymentModel.PaymentMethodGateway,
	}
	if tgt.EnrollmentID != uuid.Nil {
		enr := tgt.EnrollmentID
		p.PaymentEnrollmentID = &enr
	}
	return p
}

// DueDate: explicit date wins; else the tariff's due day in the period year, current month.
func DueDate(t model.Tariff, period string, explicit *time.Time, now time.Time) *time.Time {
	if explicit != nil {
		return explicit
	}
	year := now.Year()
	if y, ok := enrollmentModel.PeriodYear(period); ok {
		year = y
	}
	return t.DueDateIn(year, now.Month(), now.Location())
}

// PlanBulkAssign keeps one target per student and drops students already billed
// for the tariff in the period.
func PlanBulkAssign(t model.Tariff, targets []Target, alreadyBilled []uuid.UUID, period string, due *time.Time) ([]paymentModel.Payment, int) {
	billed := lo.SliceToMap(alreadyBilled, func(id uuid.UUID) (uuid.UUID, struct{}) { return id, struct{}{} })
	unique := lo.UniqBy(targets, func(x Target) uuid.UUID { return x.EstudianteID })

	out := make([]paymentModel.Payment, 0, len(unique))
	skipped := len(targets) - len(unique)
	for _, tgt := range unique {
		if _, ok := billed[tgt.EstudianteID]; ok {
			skipped++
			continue
		}
		out = append(out, PaymentFor(t, tgt, period, due))
	}
	return out, skipped
}

// BulkAssign bills a tariff to every active enrollment in scope, in one transaction.
func BulkAssign(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, req dto.BulkAssignRequest, actor uuid.UUID, now time.Time) (dto.BulkAssignResponse, error) {
	var res dto.BulkAssignResponse
	tariffID, err := uuid.Parse(req.TariffID)
	if err != nil {
		return res, ErrTariffNotFound
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Tariff
		if err := tx.First(&t, "tariff_id = ? AND tariff_tenant_id = ?", tariffID, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTariffNotFound
			}
			return err
		}
		if !t.TariffIsActive {
			return ErrTariffInactive
		}

		q := tx.Model(&enrollmentModel.Enrollment{}).
			Select("enrollment_estudiante_id AS estudiante_id, enrollment_apoderado_id AS apoderado_id, enrollment_id").
			Where("enrollment_tenant_id = ? AND enrollment_period = ? AND enrollment_status IN ?",
				tenantID, req.Period, enrollmentModel.ActiveStatuses)
		switch req.Scope {
		case dto.ScopeCourse:
			q = q.Where("enrollment_course_id IN ?", req.CourseIDs)
		case dto.ScopeStudents:
			q = q.Where("enrollment_estudiante_id IN ?", req.EstudianteIDs)
		}
		var targets []Target
		if err := q.Scan(&targets).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}

		var billed []uuid.UUID
		if err := tx.Model(&paymentModel.Payment{}).
			Where("payment_tenant_id = ? AND payment_tariff_id = ? AND payment_period = ?", tenantID, t.TariffID, req.Period).
			Where("payment_status <> ?", paymentModel.PaymentStatusRejected).
			Distinct().Pluck("payment_estudiante_id", &billed).Error; err != nil {
			return err
		}

		rows, skipped := PlanBulkAssign(t, targets, billed, req.Period, DueDate(t, req.Period, req.DueDate, now))
		res.Skipped = skipped
		if err := paymentService.CreateTx(ctx, tx, rows, &actor, now); err != nil {
			return err
		}
		res.Created = len(rows)
		return nil
	})
	return res, err
}
