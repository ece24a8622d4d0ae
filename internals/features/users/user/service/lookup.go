package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/users/user/model"
)

// IsTeachingStaff: the user is an active teacher, director or utp of the tenant.
func IsTeachingStaff(ctx context.Context, db *gorm.DB, tenantID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND user_tenant_id = ? AND user_is_active = TRUE", userID, tenantID).
		Where("user_role IN ?", []string{string(constants.RoleTeacher), string(constants.RoleDirector), string(constants.RoleUTP)}).
		Count(&n).Error
	return n > 0, err
}
