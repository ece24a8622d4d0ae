package details

import (
	"github.com/gofiber/fiber/v2"

	authRoute "colegio_backend/internals/features/users/auth/route"
)

func AuthPublicRoutes(public fiber.Router, d Deps) {
	authRoute.AuthPublicRoutes(public, d.Auth)
}

func AuthPrivateRoutes(private fiber.Router, d Deps) {
	authRoute.AuthPrivateRoutes(private, d.Auth)
}
