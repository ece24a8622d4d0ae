package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/evaluations/controller"
	"colegio_backend/internals/features/approvals"
	authMw "colegio_backend/internals/middlewares/auth"
)

func EvaluationRoutes(r fiber.Router, db *gorm.DB, n approvals.Notifier) {
	h := ctl.NewEvaluationController(db, n)
	write := authMw.RequireCapability(constants.CapEvaluationWrite, "gestionar evaluaciones")

	g := r.Group("/evaluations")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Get("/:id/print", h.Print)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
	g.Post("/:id/submit", authMw.RequireCapability(constants.CapApprovalSubmit, "enviar a revisión"), h.Submit)
	g.Post("/:id/review", authMw.RequireCapability(constants.CapApprovalReview, "revisar evaluaciones"), h.Review)
}
