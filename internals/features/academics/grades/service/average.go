package service

import (
	"sort"

	"github.com/google/uuid"

	"colegio_backend/internals/features/academics/grades/dto"
	"colegio_backend/internals/features/academics/grades/model"
)

// ScoreRow is one grade joined with its evaluation weight and subject.
type ScoreRow struct {
	SubjectID   uuid.UUID
	SubjectName string
	Score       float64
	Weight      float64
}

// Report averages per subject (weighted by evaluation weight), then the overall
// average as the plain mean of subject averages.
func Report(estudianteID uuid.UUID, rows []ScoreRow) dto.AverageReport {
	type acc struct {
		name    string
		scores  []float64
		weights []float64
	}
	bySubject := map[uuid.UUID]*acc{}
	for _, r := range rows {
		a, ok := bySubject[r.SubjectID]
		if !ok {
			a = &acc{name: r.SubjectName}
			bySubject[r.SubjectID] = a
		}
		a.scores = append(a.scores, r.Score)
		a.weights = append(a.weights, r.Weight)
	}

	out := dto.AverageReport{EstudianteID: estudianteID, Subjects: []dto.SubjectAverage{}}
	var avgs []float64
	for id, a := range bySubject {
		avg := model.WeightedAverage(a.scores, a.weights)
		avgs = append(avgs, avg)
		out.Subjects = append(out.Subjects, dto.SubjectAverage{
			SubjectID:   id,
			SubjectName: a.name,
			Average:     avg,
			Count:       len(a.scores),
			Passed:      avg >= model.PassScore,
		})
	}
	sort.Slice(out.Subjects, func(i, j int) bool { return out.Subjects[i].SubjectName < out.Subjects[j].SubjectName })

	out.Overall = model.WeightedAverage(avgs, nil)
	out.Passed = len(avgs) > 0 && out.Overall >= model.PassScore
	return out
}
