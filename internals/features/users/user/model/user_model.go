package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a login account. Role is one of constants.Role; ProfileID points to
// the Estudiante (student) or Apoderado (apoderado) row for restricted roles.
type User struct {
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserTenantID *uuid.UUID `gorm:"column:user_tenant_id;type:uuid;index" json:"tenantId,omitempty"`

	UserEmail    string `gorm:"column:user_email;type:varchar(255);not null" json:"email"`
	UserPassword string `gorm:"column:user_password;not null" json:"-"`
	UserFullName string `gorm:"column:user_full_name;type:varchar(150);not null" json:"fullName"`
	UserRole     string `gorm:"column:user_role;type:varchar(20);not null" json:"role"`

	UserProfileID *uuid.UUID `gorm:"column:user_profile_id;type:uuid" json:"profileId,omitempty"`
	UserGoogleID  *string    `gorm:"column:user_google_id;type:varchar(255);uniqueIndex:uq_users_google_id" json:"-"`

	UserIsActive    bool       `gorm:"column:user_is_active;not null;default:true" json:"isActive"`
	UserLastLoginAt *time.Time `gorm:"column:user_last_login_at" json:"lastLoginAt,omitempty"`

	CreatedAt time.Time      `gorm:"column:user_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:user_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:user_deleted_at;index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UserEmail = NormalizeEmail(u.UserEmail)
	u.UserFullName = strings.TrimSpace(u.UserFullName)
	u.UserRole = strings.ToLower(strings.TrimSpace(u.UserRole))
	return nil
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
