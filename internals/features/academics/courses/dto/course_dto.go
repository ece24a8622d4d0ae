package dto

import (
	"github.com/google/uuid"

	"colegio_backend/internals/features/academics/courses/model"
)

type CreateCourseRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Level         *string `json:"level" validate:"omitempty,max=50"`
	Section       *string `json:"section" validate:"omitempty,max=10"`
	Year          int     `json:"year" validate:"required,gte=2000,lte=2100"`
	HeadTeacherID *string `json:"headTeacherId" validate:"omitempty,uuid"`
	Capacity      *int    `json:"capacity" validate:"omitempty,gte=1,lte=200"`
}

func (r *CreateCourseRequest) ToModel(tenantID uuid.UUID) model.Course {
	c := model.Course{
		CourseTenantID: tenantID,
		CourseName:     r.Name,
		CourseLevel:    r.Level,
		CourseSection:  r.Section,
		CourseYear:     r.Year,
		CourseCapacity: r.Capacity,
	}
	if r.HeadTeacherID != nil {
		id := uuid.MustParse(*r.HeadTeacherID)
		c.CourseHeadTeacherUserID = &id
	}
	return c
}

type UpdateCourseRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=100"`
	Level         *string `json:"level" validate:"omitempty,max=50"`
	Section       *string `json:"section" validate:"omitempty,max=10"`
	Year          *int    `json:"year" validate:"omitempty,gte=2000,lte=2100"`
	HeadTeacherID *string `json:"headTeacherId" validate:"omitempty,uuid"`
	Capacity      *int    `json:"capacity" validate:"omitempty,gte=1,lte=200"`
}

func (r *UpdateCourseRequest) Apply(c *model.Course) {
	if r.Name != nil {
		c.CourseName = *r.Name
	}
	if r.Level != nil {
		c.CourseLevel = r.Level
	}
	if r.Section != nil {
		c.CourseSection = r.Section
	}
	if r.Year != nil {
		c.CourseYear = *r.Year
	}
	if r.HeadTeacherID != nil {
		id := uuid.MustParse(*r.HeadTeacherID)
		c.CourseHeadTeacherUserID = &id
	}
	if r.Capacity != nil {
		c.CourseCapacity = r.Capacity
	}
}

type CourseResponse struct {
	model.Course
	Label    string `json:"label"`
	Enrolled int64  `json:"enrolled"`
}
