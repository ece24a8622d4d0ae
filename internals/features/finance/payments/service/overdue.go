package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"colegio_backend/internals/features/finance/payments/model"
)

// ShouldMarkOverdue: only pending payments whose due date is before today.
func ShouldMarkOverdue(p model.Payment, today time.Time) bool {
	if p.PaymentStatus != model.PaymentStatusPending || p.PaymentDueDate == nil {
		return false
	}
	return p.PaymentDueDate.Before(today)
}

// MarkOverdue flips pending → vencido for everything due before today and
// resyncs the guardians touched, all in one transaction.
func MarkOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int, error) {
	var touched []model.Payment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&touched).
			Clauses(clause.Returning{}).
			Where("payment_deleted_at IS NULL AND payment_status = ? AND payment_due_date < ?",
				model.PaymentStatusPending, today).
			Update("payment_status", model.PaymentStatusOverdue).Error; err != nil {
			return err
		}
		st := NewGormFinancialStore(tx)
		now := time.Now()
		seen := map[uuid.UUID]struct{}{}
		for _, p := range touched {
			if _, ok := seen[p.PaymentEstudianteID]; ok && p.PaymentApoderadoID == nil {
				continue
			}
			seen[p.PaymentEstudianteID] = struct{}{}
			if err := SyncPaymentGuardians(ctx, st, p, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(touched), nil
}

// SyncAll reconciles every guardian (CLI sync-financial-status, nightly cron).
func SyncAll(ctx context.Context, db *gorm.DB, tenantID *uuid.UUID) (map[string]int, error) {
	st := NewGormFinancialStore(db)
	ids, err := st.AllGuardianIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := map[string]int{}
	for _, id := range ids {
		status, err := SyncFinancialStatus(ctx, st, id, now)
		if err != nil {
			log.Printf("[WARN] sync apoderado %s: %v", id, err)
			out["error"]++
			continue
		}
		out[status]++
	}
	log.Printf("[INFO] sync financiero: %d apoderados %v", len(ids), out)
	return out, nil
}
