package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chilean scale.
const (
	MinScore  = 1.0
	MaxScore  = 7.0
	PassScore = 4.0
)

type Grade struct {
	GradeID           uuid.UUID `gorm:"column:grade_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GradeTenantID     uuid.UUID `gorm:"column:grade_tenant_id;type:uuid;not null;index" json:"tenantId"`
	GradeEvaluationID uuid.UUID `gorm:"column:grade_evaluation_id;type:uuid;not null;uniqueIndex:uq_grades_evaluation_estudiante,priority:1" json:"evaluationId"`
	GradeEstudianteID uuid.UUID `gorm:"column:grade_estudiante_id;type:uuid;not null;uniqueIndex:uq_grades_evaluation_estudiante,priority:2;index" json:"estudianteId"`

	GradeScore      float64   `gorm:"column:grade_score;type:numeric(3,1);not null" json:"score"`
	GradeComment    *string   `gorm:"column:grade_comment" json:"comment,omitempty"`
	GradeRecordedBy uuid.UUID `gorm:"column:grade_recorded_by;type:uuid;not null" json:"recordedBy"`

	CreatedAt time.Time      `gorm:"column:grade_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:grade_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:grade_deleted_at;index" json:"-"`
}

func (Grade) TableName() string { return "grades" }

// WeightedAverage: weights of 0 count as 1. Rounded to one decimal.
func WeightedAverage(scores, weights []float64) float64 {
	var sum, total float64
	for i, s := range scores {
		w := 1.0
		if i < len(weights) && weights[i] > 0 {
			w = weights[i]
		}
		sum += s * w
		total += w
	}
	if total == 0 {
		return 0
	}
	avg := sum / total
	return float64(int(avg*10+0.5)) / 10
}
