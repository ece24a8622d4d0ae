package dto

import (
	"math"

	"github.com/google/uuid"
)

type UpsertGradeRequest struct {
	EvaluationID uuid.UUID `json:"evaluationId" validate:"required"`
	EstudianteID uuid.UUID `json:"estudianteId" validate:"required"`
	Score        float64   `json:"score" validate:"gte=1,lte=7"`
	Comment      *string   `json:"comment" validate:"omitempty,max=500"`
}

type BulkGradeItem struct {
	EstudianteID uuid.UUID `json:"estudianteId" validate:"required"`
	Score        float64   `json:"score" validate:"gte=1,lte=7"`
	Comment      *string   `json:"comment" validate:"omitempty,max=500"`
}

// BulkGradeRequest grades many students of one evaluation.
type BulkGradeRequest struct {
	EvaluationID uuid.UUID       `json:"evaluationId" validate:"required"`
	Grades       []BulkGradeItem `json:"grades" validate:"required,min=1,max=200,dive"`
}

// Items folds the single-grade form into the bulk one.
func (r UpsertGradeRequest) Items() []BulkGradeItem {
	return []BulkGradeItem{{EstudianteID: r.EstudianteID, Score: r.Score, Comment: r.Comment}}
}

// RoundScore keeps one decimal, as the column does.
func RoundScore(s float64) float64 {
	return math.Round(s*10) / 10
}

type SubjectAverage struct {
	SubjectID   uuid.UUID `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	Average     float64   `json:"average"`
	Count       int       `json:"count"`
	Passed      bool      `json:"passed"`
}

type AverageReport struct {
	EstudianteID uuid.UUID        `json:"estudianteId"`
	Subjects     []SubjectAverage `json:"subjects"`
	Overall      float64          `json:"overall"`
	Passed       bool             `json:"passed"`
}
