package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	MessageID              uuid.UUID  `gorm:"column:message_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MessageTenantID        uuid.UUID  `gorm:"column:message_tenant_id;type:uuid;not null;index" json:"tenantId"`
	MessageSenderUserID    uuid.UUID  `gorm:"column:message_sender_user_id;type:uuid;not null;index" json:"senderId"`
	MessageRecipientUserID uuid.UUID  `gorm:"column:message_recipient_user_id;type:uuid;not null;index" json:"recipientId"`
	MessageCourseID        *uuid.UUID `gorm:"column:message_course_id;type:uuid;index" json:"courseId,omitempty"`

	MessageSubject string     `gorm:"column:message_subject;type:varchar(200);not null" json:"subject"`
	MessageBody    string     `gorm:"column:message_body;not null" json:"body"`
	MessageReadAt  *time.Time `gorm:"column:message_read_at" json:"readAt,omitempty"`

	CreatedAt time.Time      `gorm:"column:message_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:message_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:message_deleted_at;index" json:"-"`
}

func (Message) TableName() string { return "messages" }
