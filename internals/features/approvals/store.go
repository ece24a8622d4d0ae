package approvals

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"colegio_backend/internals/constants"
	helperAuth "colegio_backend/internals/helpers/auth"
)

// Transition locks one row of T (narrowed by scoped), applies fn and saves it, in one transaction.
// A row outside the scope is reported as 404 with notFound.
func Transition[T any](ctx context.Context, db *gorm.DB, scoped func(*gorm.DB) *gorm.DB, idCol string, id uuid.UUID, notFound string, fn func(*T) error) (T, error) {
	var row T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := scoped(tx.Model(&row)).Clauses(clause.Locking{Strength: "UPDATE"})
		if err := q.Where(idCol+" = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, notFound)
			}
			return err
		}
		if err := fn(&row); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
	return row, err
}

// Owned narrows q for teacher-authored material: teachers see what they own,
// staff the whole tenant, students and guardians nothing.
func Owned(scope helperAuth.Scope, tenantCol, ownerCol string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if scope.Empty {
			return q.Where("1 = 0")
		}
		if scope.TenantID != nil {
			q = q.Where(tenantCol+" = ?", *scope.TenantID)
		}
		switch {
		case scope.Role == constants.RoleTeacher:
			return q.Where(ownerCol+" = ?", scope.UserID)
		case scope.Role.IsStaff():
			return q
		}
		return q.Where("1 = 0")
	}
}
