package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "colegio_backend/internals/helpers"
)

func TestBulkAttendanceRequestValidation(t *testing.T) {
	req := BulkAttendanceRequest{
		CourseID: uuid.New(),
		Date:     "2025-13-01",
		Marks:    []AttendanceMark{{EstudianteID: uuid.New(), Status: "dormido"}},
	}
	fe := helper.ValidateStruct(&req)
	require.NotNil(t, fe)
	assert.Contains(t, fe, "date")
	assert.Contains(t, fe, "marks[0].status")

	req.Date = "2025-03-10"
	req.Marks[0].Status = "atrasado"
	assert.Nil(t, helper.ValidateStruct(&req))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), req.ParsedDate())
}
