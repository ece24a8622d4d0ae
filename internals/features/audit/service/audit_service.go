package service

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"colegio_backend/internals/features/audit/model"
)

// Entry is one audited mutation.
type Entry struct {
	TenantID uuid.UUID
	ActorID  *uuid.UUID
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Meta     map[string]any
}

// Record writes inside tx so the log row commits or rolls back with the change.
func Record(tx *gorm.DB, e Entry) error {
	row := model.AuditLog{
		AuditLogTenantID:    e.TenantID,
		AuditLogActorUserID: e.ActorID,
		AuditLogAction:      e.Action,
		AuditLogEntity:      e.Entity,
		AuditLogEntityID:    e.EntityID,
	}
	if len(e.Meta) > 0 {
		row.AuditLogMeta = datatypes.JSONMap(e.Meta)
	}
	return tx.Create(&row).Error
}

// RecordBestEffort is for paths without a transaction; failures are only logged.
func RecordBestEffort(db *gorm.DB, e Entry) {
	if err := Record(db, e); err != nil {
		log.Printf("[WARN] audit %s/%s: %v", e.Entity, e.Action, err)
	}
}

func Ptr(id uuid.UUID) *uuid.UUID { return &id }
