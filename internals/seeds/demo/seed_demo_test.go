package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedDemoIsValid(t *testing.T) {
	d, err := Parse(defaultData)
	require.NoError(t, err)
	assert.Equal(t, "colegio-demo", d.Tenant.Slug)
	assert.NotEmpty(t, d.Users)
	require.NotEmpty(t, d.Courses)
	assert.NotEmpty(t, d.Courses[0].Subjects)
	assert.True(t, d.Tenant.AnnualFee.IsPositive())
}

func TestParseRejectsUnknownTeacher(t *testing.T) {
	raw := []byte(`{
	  "tenant": {"name": "X"},
	  "users": [],
	  "courses": [{"name": "1A", "headTeacherEmail": "nadie@x.cl"}]
	}`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nadie@x.cl")
}

func TestParseRejectsBadBlock(t *testing.T) {
	raw := []byte(`{
	  "tenant": {"name": "X"},
	  "courses": [{"name": "1A", "subjects": [{"name": "Historia",
	    "blocks": [{"day": 2, "start": "10:00", "end": "09:00"}]}]}]
	}`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bloque inválido")
}

func TestParseRejectsUnknownRole(t *testing.T) {
	raw := []byte(`{"tenant": {"name": "X"}, "users": [{"email": "a@x.cl", "role": "secretary"}]}`)
	_, err := Parse(raw)
	require.Error(t, err)
}
