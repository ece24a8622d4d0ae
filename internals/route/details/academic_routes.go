package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	annotationRoute "colegio_backend/internals/features/academics/annotations/route"
	attendanceRoute "colegio_backend/internals/features/academics/attendance/route"
	courseRoute "colegio_backend/internals/features/academics/courses/route"
	evaluationRoute "colegio_backend/internals/features/academics/evaluations/route"
	gradeRoute "colegio_backend/internals/features/academics/grades/route"
	planningRoute "colegio_backend/internals/features/academics/plannings/route"
	questionRoute "colegio_backend/internals/features/academics/questions/route"
	rubricRoute "colegio_backend/internals/features/academics/rubrics/route"
	scheduleRoute "colegio_backend/internals/features/academics/schedules/route"
	subjectRoute "colegio_backend/internals/features/academics/subjects/route"
)

func AcademicRoutes(r fiber.Router, db *gorm.DB, d Deps) {
	courseRoute.CourseRoutes(r, db)
	subjectRoute.SubjectRoutes(r, db)
	scheduleRoute.ScheduleRoutes(r, db)

	// approval workflow
	evaluationRoute.EvaluationRoutes(r, db, d.Notifier)
	planningRoute.PlanningRoutes(r, db, d.Notifier)
	rubricRoute.RubricRoutes(r, db, d.Notifier)
	questionRoute.QuestionRoutes(r, db, d.Notifier)

	gradeRoute.GradeRoutes(r, db)
	attendanceRoute.AttendanceRoutes(r, db)
	annotationRoute.AnnotationRoutes(r, db)
}
