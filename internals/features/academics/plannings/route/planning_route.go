package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/plannings/controller"
	"colegio_backend/internals/features/approvals"
	authMw "colegio_backend/internals/middlewares/auth"
)

func PlanningRoutes(r fiber.Router, db *gorm.DB, n approvals.Notifier) {
	h := ctl.NewPlanningController(db, n)

	g := r.Group("/plannings")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", authMw.OnlyRoles("crear planificaciones", constants.RoleTeacher), h.Create)
	g.Patch("/:id", h.Patch)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/submit", authMw.RequireCapability(constants.CapApprovalSubmit, "enviar a revisión"), h.Submit)
	g.Post("/:id/review", authMw.RequireCapability(constants.CapApprovalReview, "revisar planificaciones"), h.Review)
}
