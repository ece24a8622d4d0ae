package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/tenants/controller"
	"colegio_backend/internals/helpers/storage"
	authMw "colegio_backend/internals/middlewares/auth"
)

func TenantRoutes(r fiber.Router, db *gorm.DB, st *storage.Service) {
	h := ctl.NewTenantController(db, st)

	g := r.Group("/tenants")
	g.Get("/current", h.Current)

	manage := authMw.RequireCapability(constants.CapTenantManage, "administrar colegios")
	g.Get("/", manage, h.List)
	g.Get("/:id", manage, h.GetByID)
	g.Post("/", manage, h.Create)
	g.Delete("/:id", manage, h.Delete)

	// sostenedor edits its own tenant
	own := authMw.OnlyRoles("editar el colegio", constants.RoleAdmin, constants.RoleSostenedor)
	g.Patch("/:id", own, h.Patch)
	g.Post("/:id/logo", own, h.UploadLogo)
}
