package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	math, lang := uuid.New(), uuid.New()
	rows := []ScoreRow{
		{SubjectID: math, SubjectName: "Matemática", Score: 4.0, Weight: 30},
		{SubjectID: math, SubjectName: "Matemática", Score: 7.0, Weight: 70},
		{SubjectID: lang, SubjectName: "Lenguaje", Score: 3.0},
		{SubjectID: lang, SubjectName: "Lenguaje", Score: 3.6},
	}
	r := Report(uuid.Nil, rows)
	require.Len(t, r.Subjects, 2)

	assert.Equal(t, "Lenguaje", r.Subjects[0].SubjectName)
	assert.Equal(t, 3.3, r.Subjects[0].Average)
	assert.False(t, r.Subjects[0].Passed)

	assert.Equal(t, "Matemática", r.Subjects[1].SubjectName)
	assert.Equal(t, 6.1, r.Subjects[1].Average)
	assert.Equal(t, 2, r.Subjects[1].Count)

	// (3.3 + 6.1) / 2
	assert.Equal(t, 4.7, r.Overall)
	assert.True(t, r.Passed)
}

func TestReportEmpty(t *testing.T) {
	r := Report(uuid.Nil, nil)
	assert.Empty(t, r.Subjects)
	assert.Equal(t, 0.0, r.Overall)
	assert.False(t, r.Passed)
}
