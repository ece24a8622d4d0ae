package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/users/user/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func UserRoutes(r fiber.Router, db *gorm.DB, defaultPassword string) {
	h := ctl.NewUserController(db, defaultPassword)

	g := r.Group("/users", authMw.RequireCapability(constants.CapUserManage, "administrar usuarios"))
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", h.Create)
	g.Patch("/:id", h.Patch)
	g.Delete("/:id", h.Delete)
}
