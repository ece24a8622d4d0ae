package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/features/academics/schedules/model"
	helper "colegio_backend/internals/helpers"
)

func TestCreateScheduleRequestValidation(t *testing.T) {
	req := CreateScheduleRequest{
		CourseID:  uuid.New(),
		SubjectID: uuid.New(),
		DayOfWeek: 8,
		StartTime: "8:00",
		EndTime:   "09:30",
	}
	fe := helper.ValidateStruct(&req)
	require.NotNil(t, fe)
	assert.Contains(t, fe, "dayOfWeek")
	assert.Contains(t, fe, "startTime")
	assert.NotContains(t, fe, "endTime")

	req.DayOfWeek, req.StartTime = 1, "08:00"
	assert.Nil(t, helper.ValidateStruct(&req))
}

func TestFirstOverlap(t *testing.T) {
	self := model.Schedule{ScheduleID: uuid.New(), ScheduleDayOfWeek: 2, ScheduleStartTime: "10:00", ScheduleEndTime: "11:00"}
	others := []model.Schedule{
		self,
		{ScheduleID: uuid.New(), ScheduleDayOfWeek: 2, ScheduleStartTime: "11:00", ScheduleEndTime: "12:00"},
	}
	assert.Nil(t, FirstOverlap(self, others))

	clash := model.Schedule{ScheduleID: uuid.New(), ScheduleDayOfWeek: 2, ScheduleStartTime: "10:30", ScheduleEndTime: "11:30"}
	others = append(others, clash)
	got := FirstOverlap(self, others)
	require.NotNil(t, got)
	assert.Equal(t, clash.ScheduleID, got.ScheduleID)
}
