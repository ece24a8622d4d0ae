package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeApproval    = "approval"
	TypeEvaluation  = "evaluation"
	TypeDebt        = "debt"
	TypeInstitution = "institutional"
	TypeMessage     = "message"
)

// Notification is the in-app inbox entry; e-mail is sent alongside it when the user has an address.
type Notification struct {
	NotificationID       uuid.UUID  `gorm:"column:notification_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NotificationTenantID uuid.UUID  `gorm:"column:notification_tenant_id;type:uuid;not null;index" json:"tenantId"`
	NotificationUserID   uuid.UUID  `gorm:"column:notification_user_id;type:uuid;not null;index" json:"userId"`
	NotificationTitle    string     `gorm:"column:notification_title;type:varchar(200);not null" json:"title"`
	NotificationBody     string     `gorm:"column:notification_body;not null" json:"body"`
	NotificationType     string     `gorm:"column:notification_type;type:varchar(20);not null" json:"type"`
	NotificationLink     *string    `gorm:"column:notification_link" json:"link,omitempty"`
	NotificationReadAt   *time.Time `gorm:"column:notification_read_at" json:"readAt,omitempty"`

	NotificationMeta datatypes.JSONMap `gorm:"column:notification_meta;type:jsonb" json:"meta,omitempty"`

	CreatedAt time.Time      `gorm:"column:notification_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:notification_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:notification_deleted_at;index" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
