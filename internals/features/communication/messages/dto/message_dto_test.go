package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"colegio_backend/internals/constants"
)

func TestCanMessage(t *testing.T) {
	assert.True(t, CanMessage(constants.RoleApoderado, "teacher"))
	assert.True(t, CanMessage(constants.RoleStudent, "director"))
	assert.True(t, CanMessage(constants.RoleStudent, "secretary"))
	assert.False(t, CanMessage(constants.RoleApoderado, "apoderado"))
	assert.False(t, CanMessage(constants.RoleStudent, "student"))
	assert.True(t, CanMessage(constants.RoleTeacher, "apoderado"))
	assert.False(t, CanMessage("", "teacher"))
}
