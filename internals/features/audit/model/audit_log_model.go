package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionStatus = "status"
)

// AuditLog is append-only; no soft delete.
type AuditLog struct {
	AuditLogID          uuid.UUID         `gorm:"column:audit_log_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuditLogTenantID    uuid.UUID         `gorm:"column:audit_log_tenant_id;type:uuid;not null;index" json:"tenantId"`
	AuditLogActorUserID *uuid.UUID        `gorm:"column:audit_log_actor_user_id;type:uuid" json:"actorId,omitempty"`
	AuditLogAction      string            `gorm:"column:audit_log_action;type:varchar(30);not null" json:"action"`
	AuditLogEntity      string            `gorm:"column:audit_log_entity;type:varchar(40);not null;index" json:"entity"`
	AuditLogEntityID    *uuid.UUID        `gorm:"column:audit_log_entity_id;type:uuid;index" json:"entityId,omitempty"`
	AuditLogMeta        datatypes.JSONMap `gorm:"column:audit_log_meta;type:jsonb" json:"meta,omitempty"`

	CreatedAt time.Time `gorm:"column:audit_log_created_at;autoCreateTime;index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }
