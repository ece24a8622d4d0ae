package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	GatewayEventReceived  = "received"
	GatewayEventProcessed = "processed"
	GatewayEventIgnored   = "ignored"
	GatewayEventFailed    = "failed"
)

// PaymentGatewayEvent logs every Midtrans notification, one row per callback.
type PaymentGatewayEvent struct {
	GatewayEventID        uuid.UUID  `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GatewayEventTenantID  *uuid.UUID `gorm:"column:gateway_event_tenant_id;type:uuid;index" json:"tenantId,omitempty"`
	GatewayEventPaymentID *uuid.UUID `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"paymentId,omitempty"`

	GatewayEventType        *string `gorm:"column:gateway_event_type;type:varchar(40)" json:"type,omitempty"`
	GatewayEventExternalID  *string `gorm:"column:gateway_event_external_id;type:varchar(80);index" json:"externalId,omitempty"`
	GatewayEventExternalRef *string `gorm:"column:gateway_event_external_ref" json:"externalRef,omitempty"`

	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"payload"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"-"`

	GatewayEventStatus      string     `gorm:"column:gateway_event_status;type:varchar(12);not null;default:'received'" json:"status"`
	GatewayEventError       *string    `gorm:"column:gateway_event_error" json:"error,omitempty"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"processedAt,omitempty"`

	CreatedAt time.Time `gorm:"column:gateway_event_created_at;autoCreateTime" json:"createdAt"`
}

func (PaymentGatewayEvent) TableName() string { return "payment_gateway_events" }
