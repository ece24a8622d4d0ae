package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Event is a calendar entry; NULL course means school-wide.
type Event struct {
	EventID       uuid.UUID  `gorm:"column:event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventTenantID uuid.UUID  `gorm:"column:event_tenant_id;type:uuid;not null;index" json:"tenantId"`
	EventCourseID *uuid.UUID `gorm:"column:event_course_id;type:uuid;index" json:"courseId,omitempty"`

	EventTitle       string     `gorm:"column:event_title;type:varchar(200);not null" json:"title"`
	EventDescription *string    `gorm:"column:event_description" json:"description,omitempty"`
	EventStartsAt    time.Time  `gorm:"column:event_starts_at;not null;index" json:"startsAt"`
	EventEndsAt      *time.Time `gorm:"column:event_ends_at" json:"endsAt,omitempty"`
	EventLocation    *string    `gorm:"column:event_location;type:varchar(150)" json:"location,omitempty"`
	// roles the event is addressed to; empty = everyone
	EventAudience pq.StringArray `gorm:"column:event_audience;type:text[]" json:"audience"`

	EventCreatedBy uuid.UUID `gorm:"column:event_created_by;type:uuid;not null" json:"createdBy"`

	CreatedAt time.Time      `gorm:"column:event_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:event_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:event_deleted_at;index" json:"-"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeSave(tx *gorm.DB) error {
	e.EventTitle = strings.TrimSpace(e.EventTitle)
	if e.EventAudience == nil {
		e.EventAudience = pq.StringArray{}
	}
	for i, a := range e.EventAudience {
		e.EventAudience[i] = strings.ToLower(strings.TrimSpace(a))
	}
	return nil
}
