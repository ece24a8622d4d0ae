package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/enrollments/controller"
	svc "colegio_backend/internals/features/enrollments/service"
	"colegio_backend/internals/helpers/storage"
	authMw "colegio_backend/internals/middlewares/auth"
)

type Deps struct {
	Storage         *storage.Service
	Debtors         svc.DebtorNotifier
	DefaultPassword string
	FrontendURL     string
}

func EnrollmentRoutes(r fiber.Router, db *gorm.DB, d Deps) {
	h := ctl.NewEnrollmentController(db, d.Storage, d.Debtors, d.DefaultPassword, d.FrontendURL)
	write := authMw.RequireCapability(constants.CapEnrollmentWrite, "gestionar matrículas")

	g := r.Group("/enrollments")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Get("/:id/certificate", h.Certificate)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
	g.Post("/:id/documents", write, h.AddDocuments)
}
