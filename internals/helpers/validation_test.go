package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nestedDTO struct {
	FirstName string `json:"firstName" validate:"required"`
}

type sampleDTO struct {
	CourseID   string     `json:"courseId" validate:"required,uuid"`
	StartTime  string     `json:"startTime" validate:"required,hhmm"`
	NewStudent *nestedDTO `json:"newStudent" validate:"omitempty"`
}

func TestValidateStructFieldErrors(t *testing.T) {
	fe := ValidateStruct(&sampleDTO{CourseID: "nope", StartTime: "8:30", NewStudent: &nestedDTO{}})
	require.NotNil(t, fe)
	assert.Contains(t, fe, "courseId")
	assert.Contains(t, fe, "startTime")
	assert.Contains(t, fe, "newStudent.firstName")
	assert.Contains(t, fe["startTime"][0], "HH:mm")
}

func TestValidateStructOK(t *testing.T) {
	fe := ValidateStruct(&sampleDTO{
		CourseID:  "3f1c8a56-8a3e-4e27-9d5b-0e0b8a3f1c11",
		StartTime: "08:30",
	})
	assert.Nil(t, fe)
}

func TestIsHHMM(t *testing.T) {
	for _, ok := range []string{"00:00", "08:30", "23:59"} {
		assert.True(t, IsHHMM(ok), ok)
	}
	for _, bad := range []string{"8:30", "24:00", "12:60", "ab:cd", "0830", ""} {
		assert.False(t, IsHHMM(bad), bad)
	}
}
