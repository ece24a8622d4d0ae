package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/features/academics/evaluations/model"
	scheduleModel "colegio_backend/internals/features/academics/schedules/model"
)

func block(day int, start, end string) scheduleModel.Schedule {
	return scheduleModel.Schedule{ScheduleDayOfWeek: day, ScheduleStartTime: start, ScheduleEndTime: end}
}

func TestCheckWindow(t *testing.T) {
	loc := time.UTC
	// 2025-03-03 is a Monday
	monday := func(h, m int) time.Time { return time.Date(2025, 3, 3, h, m, 0, 0, loc) }
	blocks := []scheduleModel.Schedule{block(1, "08:00", "09:30"), block(1, "11:00", "12:30"), block(3, "10:00", "11:00")}

	cases := []struct {
		name string
		at   time.Time
		ok   bool
		msg  string
	}{
		{"inside first block", monday(8, 45), true, ""},
		{"start is inclusive", monday(11, 0), true, ""},
		{"end is inclusive", monday(12, 30), true, ""},
		{"between blocks", monday(10, 0), false, "la hora 10:00 está fuera del horario de Matemática del día Lunes"},
		{"no class that day", time.Date(2025, 3, 4, 9, 0, 0, 0, loc), false, "no hay clases de Matemática el día Martes"},
		{"sunday", time.Date(2025, 3, 9, 9, 0, 0, 0, loc), false, "no hay clases de Matemática el día Domingo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckWindow(blocks, "Matemática", tc.at)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var ce *CheckError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, CodeOutsideSchedule, ce.Code)
			assert.Equal(t, tc.msg, ce.Message)
		})
	}
}

func TestCheckWindowUsesLocalTime(t *testing.T) {
	santiago, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skip("tzdata not available")
	}
	blocks := []scheduleModel.Schedule{block(1, "08:00", "09:00")}
	// 11:30 UTC on Monday 2025-03-03 is 08:30 in Santiago (UTC-3)
	at := time.Date(2025, 3, 3, 11, 30, 0, 0, time.UTC)
	assert.Error(t, CheckWindow(blocks, "Lenguaje", at))
	assert.NoError(t, CheckWindow(blocks, "Lenguaje", at.In(santiago)))
}

func TestCheckWindowNoBlocks(t *testing.T) {
	err := CheckWindow(nil, "Historia", time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, "no hay clases de Historia el día Miércoles", err.Error())
}

// fakeGuardStore returns every stored evaluation as a neighbor so the
// course, self and window filtering is left to Guard.
type fakeGuardStore struct {
	blocks    []scheduleModel.Schedule
	evals     []model.Evaluation
	blocksErr error

	locked    []uuid.UUID
	neighbors int
}

func (f *fakeGuardStore) LockCourse(_ context.Context, courseID uuid.UUID) error {
	f.locked = append(f.locked, courseID)
	return nil
}

func (f *fakeGuardStore) SubjectBlocks(_ context.Context, _ model.Evaluation) (string, []scheduleModel.Schedule, error) {
	if f.blocksErr != nil {
		return "", nil, f.blocksErr
	}
	return "Historia", f.blocks, nil
}

func (f *fakeGuardStore) Neighbors(_ context.Context, _ model.Evaluation) ([]model.Evaluation, error) {
	f.neighbors++
	return f.evals, nil
}

var (
	tenantA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	courseA = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	courseB = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func evalAt(id, course uuid.UUID, at time.Time) model.Evaluation {
	return model.Evaluation{
		EvaluationID:        id,
		EvaluationTenantID:  tenantA,
		EvaluationCourseID:  course,
		EvaluationSubjectID: uuid.New(),
		EvaluationTitle:     "Prueba",
		EvaluationDate:      at,
	}
}

func TestGuardCollisionWindow(t *testing.T) {
	// 2025-03-03 is a Monday; the subject has class all morning
	at := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	blocks := []scheduleModel.Schedule{block(1, "08:00", "13:00")}
	existing := uuid.New()

	cases := []struct {
		name     string
		ev       model.Evaluation
		other    model.Evaluation
		conflict bool
	}{
		{"exactly one hour later", evalAt(uuid.Nil, courseA, at), evalAt(existing, courseA, at.Add(time.Hour)), true},
		{"exactly one hour earlier", evalAt(uuid.Nil, courseA, at), evalAt(existing, courseA, at.Add(-time.Hour)), true},
		{"same instant", evalAt(uuid.Nil, courseA, at), evalAt(existing, courseA, at), true},
		{"61 minutes later", evalAt(uuid.Nil, courseA, at), evalAt(existing, courseA, at.Add(61*time.Minute)), false},
		{"61 minutes earlier", evalAt(uuid.Nil, courseA, at), evalAt(existing, courseA, at.Add(-61*time.Minute)), false},
		{"other course", evalAt(uuid.Nil, courseA, at), evalAt(existing, courseB, at), false},
		{"update matches itself", evalAt(existing, courseA, at.Add(30*time.Minute)), evalAt(existing, courseA, at), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeGuardStore{blocks: blocks, evals: []model.Evaluation{tc.other}}
			err := Guard(context.Background(), st, tc.ev, time.UTC)
			assert.Equal(t, []uuid.UUID{courseA}, st.locked)
			if !tc.conflict {
				assert.NoError(t, err)
				return
			}
			var ce *CheckError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, CodeScheduleConflict, ce.Code)
			require.NotNil(t, ce.ConflictID)
			assert.Equal(t, existing, *ce.ConflictID)
		})
	}
}

func TestGuardAnySubjectCollides(t *testing.T) {
	at := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	other := evalAt(uuid.New(), courseA, at.Add(45*time.Minute))
	ev := evalAt(uuid.Nil, courseA, at)
	require.NotEqual(t, ev.EvaluationSubjectID, other.EvaluationSubjectID)

	st := &fakeGuardStore{blocks: []scheduleModel.Schedule{block(1, "08:00", "13:00")}, evals: []model.Evaluation{other}}
	var ce *CheckError
	require.True(t, errors.As(Guard(context.Background(), st, ev, time.UTC), &ce))
	assert.Equal(t, CodeScheduleConflict, ce.Code)
}

func TestGuardOutsideScheduleWinsOverCollision(t *testing.T) {
	// another subject already has an evaluation at 10:00; this subject only
	// has class 08:00-09:30, so 10:30 is outside its schedule
	monday := func(h, m int) time.Time { return time.Date(2025, 3, 3, h, m, 0, 0, time.UTC) }
	st := &fakeGuardStore{
		blocks: []scheduleModel.Schedule{block(1, "08:00", "09:30")},
		evals:  []model.Evaluation{evalAt(uuid.New(), courseA, monday(10, 0))},
	}

	err := Guard(context.Background(), st, evalAt(uuid.Nil, courseA, monday(10, 30)), time.UTC)
	var ce *CheckError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeOutsideSchedule, ce.Code)
	assert.Nil(t, ce.ConflictID)
	assert.Zero(t, st.neighbors)
}

func TestGuardPropagatesStoreErrors(t *testing.T) {
	at := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	st := &fakeGuardStore{blocksErr: ErrSubjectNotInCourse}
	assert.ErrorIs(t, Guard(context.Background(), st, evalAt(uuid.Nil, courseA, at), time.UTC), ErrSubjectNotInCourse)
	assert.Zero(t, st.neighbors)

	down := errors.New("conexión cerrada")
	st = &fakeGuardStore{blocksErr: down}
	err := Guard(context.Background(), st, evalAt(uuid.Nil, courseA, at), time.UTC)
	assert.ErrorIs(t, err, down)
	var ce *CheckError
	assert.False(t, errors.As(err, &ce))
}
