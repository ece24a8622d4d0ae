package database

import (
	"log"

	"gorm.io/gorm"

	annotationModel "colegio_backend/internals/features/academics/annotations/model"
	attendanceModel "colegio_backend/internals/features/academics/attendance/model"
	courseModel "colegio_backend/internals/features/academics/courses/model"
	evaluationModel "colegio_backend/internals/features/academics/evaluations/model"
	gradeModel "colegio_backend/internals/features/academics/grades/model"
	planningModel "colegio_backend/internals/features/academics/plannings/model"
	questionModel "colegio_backend/internals/features/academics/questions/model"
	rubricModel "colegio_backend/internals/features/academics/rubrics/model"
	scheduleModel "colegio_backend/internals/features/academics/schedules/model"
	subjectModel "colegio_backend/internals/features/academics/subjects/model"
	auditModel "colegio_backend/internals/features/audit/model"
	eventModel "colegio_backend/internals/features/communication/events/model"
	messageModel "colegio_backend/internals/features/communication/messages/model"
	notificationModel "colegio_backend/internals/features/communication/notifications/model"
	enrollmentModel "colegio_backend/internals/features/enrollments/model"
	paymentModel "colegio_backend/internals/features/finance/payments/model"
	payrollModel "colegio_backend/internals/features/finance/payroll/model"
	promiseModel "colegio_backend/internals/features/finance/promises/model"
	tariffModel "colegio_backend/internals/features/finance/tariffs/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	authModel "colegio_backend/internals/features/users/auth/model"
	userModel "colegio_backend/internals/features/users/user/model"
)

// Models in dependency order.
func Models() []any {
	return []any{
		&tenantModel.Tenant{},
		&userModel.User{},
		&authModel.TokenBlacklist{},
		&estudianteModel.Estudiante{},
		&apoderadoModel.Apoderado{},
		&courseModel.Course{},
		&subjectModel.Subject{},
		&scheduleModel.Schedule{},
		&enrollmentModel.Enrollment{},
		&tariffModel.Tariff{},
		&paymentModel.Payment{},
		&paymentModel.PaymentGatewayEvent{},
		&promiseModel.PaymentPromise{},
		&payrollModel.Payroll{},
		&evaluationModel.Evaluation{},
		&gradeModel.Grade{},
		&attendanceModel.Attendance{},
		&annotationModel.Annotation{},
		&planningModel.Planning{},
		&rubricModel.Rubric{},
		&questionModel.Question{},
		&notificationModel.Notification{},
		&eventModel.Event{},
		&messageModel.Message{},
		&auditModel.AuditLog{},
	}
}

// Partial indexes AutoMigrate cannot express. Every statement is idempotent.
var partialIndexes = []string{
	// one active enrollment per student/course/period
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_enrollments_active
	   ON enrollments (enrollment_tenant_id, enrollment_estudiante_id, enrollment_course_id, enrollment_period)
	   WHERE enrollment_deleted_at IS NULL AND enrollment_status NOT IN ('retirada','anulada')`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_estudiantes_tenant_rut
	   ON estudiantes (estudiante_tenant_id, estudiante_rut)
	   WHERE estudiante_deleted_at IS NULL AND estudiante_rut IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_estudiantes_tenant_enrollment_number
	   ON estudiantes (estudiante_tenant_id, estudiante_enrollment_number)
	   WHERE estudiante_deleted_at IS NULL AND estudiante_enrollment_number IS NOT NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_tenant_email
	   ON users (COALESCE(user_tenant_id, '00000000-0000-0000-0000-000000000000'::uuid), lower(user_email))
	   WHERE user_deleted_at IS NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_apoderados_estudiante_type
	   ON apoderados (apoderado_tenant_id, apoderado_estudiante_id, apoderado_type)
	   WHERE apoderado_deleted_at IS NULL AND apoderado_estudiante_id IS NOT NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendances_slot
	   ON attendances (attendance_tenant_id, attendance_course_id,
	                   COALESCE(attendance_subject_id, '00000000-0000-0000-0000-000000000000'::uuid),
	                   attendance_estudiante_id, attendance_date)
	   WHERE attendance_deleted_at IS NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payrolls_user_period
	   ON payrolls (payroll_tenant_id, payroll_user_id, payroll_period)
	   WHERE payroll_deleted_at IS NULL`,

	`CREATE INDEX IF NOT EXISTS idx_payments_outstanding
	   ON payments (payment_tenant_id, payment_status, payment_due_date)
	   WHERE payment_deleted_at IS NULL`,

	`CREATE INDEX IF NOT EXISTS idx_evaluations_course_date
	   ON evaluations (evaluation_tenant_id, evaluation_course_id, evaluation_date)
	   WHERE evaluation_deleted_at IS NULL`,
}

// Migrate runs AutoMigrate then the partial indexes.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Printf("[WARN] pgcrypto: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	log.Printf("[INFO] migraciones aplicadas: %d tablas, %d índices parciales", len(Models()), len(partialIndexes))
	return nil
}
