package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	enrollmentRoute "colegio_backend/internals/features/enrollments/route"
	apoderadoRoute "colegio_backend/internals/features/students/apoderados/route"
	estudianteRoute "colegio_backend/internals/features/students/estudiantes/route"
	tenantRoute "colegio_backend/internals/features/tenants/route"
	userRoute "colegio_backend/internals/features/users/user/route"
)

// SchoolRoutes: tenants, accounts, students, guardians and enrollments.
func SchoolRoutes(r fiber.Router, db *gorm.DB, d Deps) {
	tenantRoute.TenantRoutes(r, db, d.Storage)
	userRoute.UserRoutes(r, db, d.Config.DefaultAccountPassword)
	estudianteRoute.EstudianteRoutes(r, db, d.Storage)
	apoderadoRoute.ApoderadoRoutes(r, db)
	enrollmentRoute.EnrollmentRoutes(r, db, enrollmentRoute.Deps{
		Storage:         d.Storage,
		Debtors:         d.Notifier,
		DefaultPassword: d.Config.DefaultAccountPassword,
		FrontendURL:     d.Config.FrontendURL,
	})
}
