package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
)

func student(rut, email string) estudianteModel.Estudiante {
	e := estudianteModel.Estudiante{EstudianteID: uuid.New()}
	if rut != "" {
		e.EstudianteRUT = &rut
	}
	if email != "" {
		e.EstudianteEmail = &email
	}
	return e
}

func TestPreferRUTPicksRutMatchOverEmailMatch(t *testing.T) {
	rut := "12345678-5"
	byEmail := student("98765432-1", "ana@correo.cl")
	byRUT := student(rut, "otra@correo.cl")

	for _, rows := range [][]estudianteModel.Estudiante{{byEmail, byRUT}, {byRUT, byEmail}} {
		got := preferRUT(rows, &rut)
		require.NotNil(t, got)
		assert.Equal(t, byRUT.EstudianteID, got.EstudianteID)
	}
}

func TestPreferRUTEmailOnlyRow(t *testing.T) {
	rut := "12345678-5"
	noRUT := student("", "ana@correo.cl")

	got := preferRUT([]estudianteModel.Estudiante{noRUT}, &rut)
	require.NotNil(t, got)
	assert.Equal(t, noRUT.EstudianteID, got.EstudianteID)

	got = preferRUT([]estudianteModel.Estudiante{noRUT}, nil)
	require.NotNil(t, got)
	assert.Equal(t, noRUT.EstudianteID, got.EstudianteID)
}

func TestPreferRUTNoRows(t *testing.T) {
	rut := "12345678-5"
	assert.Nil(t, preferRUT(nil, &rut))
}
