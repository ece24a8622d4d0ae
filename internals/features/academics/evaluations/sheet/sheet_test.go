package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	questionModel "colegio_backend/internals/features/academics/questions/model"
)

func TestRenderSheet(t *testing.T) {
	out, err := Render(Sheet{
		SchoolName:  "Colegio San Andrés",
		CourseLabel: "2° Medio B",
		SubjectName: "Matemática",
		TeacherName: "Paula Díaz",
		Title:       "Prueba de funciones",
		Date:        "14-04-2025 10:00",
		Questions: []questionModel.Question{
			{
				QuestionStatement: "¿Cuál es la pendiente de y = 2x + 1?",
				QuestionType:      questionModel.TypeMultipleChoice,
				QuestionOptions:   datatypes.NewJSONType([]questionModel.Option{{Key: "a", Text: "1"}, {Key: "b", Text: "2"}}),
				QuestionPoints:    2,
			},
			{QuestionStatement: "Toda función es inyectiva.", QuestionType: questionModel.TypeTrueFalse, QuestionPoints: 1},
			{QuestionStatement: "Explique qué es el dominio.", QuestionType: questionModel.TypeOpen, QuestionPoints: 3.5},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestTrimFloat(t *testing.T) {
	assert.Equal(t, "2", trimFloat(2))
	assert.Equal(t, "3.5", trimFloat(3.5))
	assert.Equal(t, "0.25", trimFloat(0.25))
}
