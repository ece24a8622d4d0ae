package dto

import (
	"github.com/google/uuid"

	"colegio_backend/internals/features/academics/schedules/model"
)

type CreateScheduleRequest struct {
	CourseID  uuid.UUID `json:"courseId" validate:"required"`
	SubjectID uuid.UUID `json:"subjectId" validate:"required"`
	DayOfWeek int       `json:"dayOfWeek" validate:"required,gte=1,lte=7"`
	StartTime string    `json:"startTime" validate:"required,hhmm"`
	EndTime   string    `json:"endTime" validate:"required,hhmm"`
	Room      *string   `json:"room" validate:"omitempty,max=50"`
}

func (r *CreateScheduleRequest) ToModel(tenantID uuid.UUID) model.Schedule {
	return model.Schedule{
		ScheduleTenantID:  tenantID,
		ScheduleCourseID:  r.CourseID,
		ScheduleSubjectID: r.SubjectID,
		ScheduleDayOfWeek: r.DayOfWeek,
		ScheduleStartTime: r.StartTime,
		ScheduleEndTime:   r.EndTime,
		ScheduleRoom:      r.Room,
	}
}

type UpdateScheduleRequest struct {
	DayOfWeek *int    `json:"dayOfWeek" validate:"omitempty,gte=1,lte=7"`
	StartTime *string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime   *string `json:"endTime" validate:"omitempty,hhmm"`
	Room      *string `json:"room" validate:"omitempty,max=50"`
}

func (r *UpdateScheduleRequest) Apply(s *model.Schedule) {
	if r.DayOfWeek != nil {
		s.ScheduleDayOfWeek = *r.DayOfWeek
	}
	if r.StartTime != nil {
		s.ScheduleStartTime = *r.StartTime
	}
	if r.EndTime != nil {
		s.ScheduleEndTime = *r.EndTime
	}
	if r.Room != nil {
		s.ScheduleRoom = r.Room
	}
}

// FirstOverlap returns the first block of others that collides with s, ignoring s itself.
func FirstOverlap(s model.Schedule, others []model.Schedule) *model.Schedule {
	for i := range others {
		if others[i].ScheduleID == s.ScheduleID {
			continue
		}
		if s.Overlaps(others[i]) {
			return &others[i]
		}
	}
	return nil
}
