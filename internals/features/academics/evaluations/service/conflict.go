package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/academics/evaluations/model"
	scheduleModel "colegio_backend/internals/features/academics/schedules/model"
	subjectModel "colegio_backend/internals/features/academics/subjects/model"
	"colegio_backend/internals/helpers/dbtime"
)

// ConflictWindow: two evaluations of a course this close (inclusive) collide.
const ConflictWindow = time.Hour

const (
	CodeScheduleConflict = "SCHEDULE_CONFLICT"
	CodeOutsideSchedule  = "OUTSIDE_SCHEDULE"
)

var ErrSubjectNotInCourse = errors.New("la asignatura no pertenece al curso")

// CheckError is a rejected date; Code goes into error_code.
type CheckError struct {
	Code    string
	Message string
	// the colliding evaluation, for SCHEDULE_CONFLICT
	ConflictID *uuid.UUID
}

func (e *CheckError) Error() string { return e.Message }

// CheckWindow tests the local wall-clock time of at against the class blocks of its weekday.
// blocks must already be filtered to course + subject.
func CheckWindow(blocks []scheduleModel.Schedule, subjectName string, at time.Time) error {
	day := dbtime.ISOWeekday(at)
	hhmm := dbtime.HHMM(at)

	sameDay := 0
	for _, b := range blocks {
		if b.ScheduleDayOfWeek != day {
			continue
		}
		sameDay++
		if b.Covers(hhmm) {
			return nil
		}
	}
	if sameDay == 0 {
		return &CheckError{
			Code:    CodeOutsideSchedule,
			Message: fmt.Sprintf("no hay clases de %s el día %s", subjectName, dbtime.DayName(day)),
		}
	}
	return &CheckError{
		Code:    CodeOutsideSchedule,
		Message: fmt.Sprintf("la hora %s está fuera del horario de %s del día %s", hhmm, subjectName, dbtime.DayName(day)),
	}
}

// Collides reports whether other blocks ev: same tenant and course, a different
// evaluation, and at most ConflictWindow apart (both ends inclusive).
func Collides(ev, other model.Evaluation) bool {
	if other.EvaluationID == ev.EvaluationID ||
		other.EvaluationTenantID != ev.EvaluationTenantID ||
		other.EvaluationCourseID != ev.EvaluationCourseID {
		return false
	}
	d := other.EvaluationDate.Sub(ev.EvaluationDate)
	if d < 0 {
		d = -d
	}
	return d <= ConflictWindow
}

// GuardStore is what Guard reads; GormGuardStore is the transactional one.
type GuardStore interface {
	LockCourse(ctx context.Context, courseID uuid.UUID) error
	// SubjectBlocks returns ErrSubjectNotInCourse when the subject is not part of ev's course.
	SubjectBlocks(ctx context.Context, ev model.Evaluation) (string, []scheduleModel.Schedule, error)
	// Neighbors returns the evaluations of ev's course near ev.EvaluationDate.
	Neighbors(ctx context.Context, ev model.Evaluation) ([]model.Evaluation, error)
}

// Guard serializes per course, then checks the class schedule and after that the
// collision window. ev.EvaluationID is skipped by the collision check (uuid.Nil on create).
func Guard(ctx context.Context, st GuardStore, ev model.Evaluation, loc *time.Location) error {
	if err := st.LockCourse(ctx, ev.EvaluationCourseID); err != nil {
		return err
	}

	name, blocks, err := st.SubjectBlocks(ctx, ev)
	if err != nil {
		return err
	}
	if err := CheckWindow(blocks, name, ev.EvaluationDate.In(loc)); err != nil {
		return err
	}

	near, err := st.Neighbors(ctx, ev)
	if err != nil {
		return err
	}
	for _, other := range near {
		if !Collides(ev, other) {
			continue
		}
		id := other.EvaluationID
		return &CheckError{
			Code:       CodeScheduleConflict,
			Message:    fmt.Sprintf("ya existe la evaluación \"%s\" en el curso a menos de una hora", other.EvaluationTitle),
			ConflictID: &id,
		}
	}
	return nil
}

type GormGuardStore struct {
	DB *gorm.DB
}

func NewGormGuardStore(tx *gorm.DB) *GormGuardStore { return &GormGuardStore{DB: tx} }

// LockCourse holds one writer per course until the transaction ends.
func (s *GormGuardStore) LockCourse(ctx context.Context, courseID uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "evaluation:"+courseID.String()).Error
}

func (s *GormGuardStore) SubjectBlocks(ctx context.Context, ev model.Evaluation) (string, []scheduleModel.Schedule, error) {
	db := s.DB.WithContext(ctx)
	var subject subjectModel.Subject
	err := db.First(&subject, "subject_id = ? AND subject_course_id = ? AND subject_tenant_id = ?",
		ev.EvaluationSubjectID, ev.EvaluationCourseID, ev.EvaluationTenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrSubjectNotInCourse
	}
	if err != nil {
		return "", nil, err
	}
	var blocks []scheduleModel.Schedule
	if err := db.Where("schedule_tenant_id = ? AND schedule_course_id = ? AND schedule_subject_id = ?",
		ev.EvaluationTenantID, ev.EvaluationCourseID, ev.EvaluationSubjectID).
		Find(&blocks).Error; err != nil {
		return "", nil, err
	}
	return subject.SubjectName, blocks, nil
}

func (s *GormGuardStore) Neighbors(ctx context.Context, ev model.Evaluation) ([]model.Evaluation, error) {
	var rows []model.Evaluation
	err := s.DB.WithContext(ctx).Model(&model.Evaluation{}).
		Where("evaluation_tenant_id = ? AND evaluation_course_id = ?", ev.EvaluationTenantID, ev.EvaluationCourseID).
		Where("evaluation_id <> ?", ev.EvaluationID).
		Where("evaluation_date >= ? AND evaluation_date <= ?", ev.EvaluationDate.Add(-ConflictWindow), ev.EvaluationDate.Add(ConflictWindow)).
		Order("evaluation_date").
		Find(&rows).Error
	return rows, err
}
