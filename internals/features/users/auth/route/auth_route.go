// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"colegio_backend/internals/features/users/auth/controller"
	"colegio_backend/internals/features/users/auth/service"
	rateLimiter "colegio_backend/internals/middlewares"
)

// AuthPublicRoutes: /api/auth endpoints reachable without a token.
func AuthPublicRoutes(r fiber.Router, svc *service.Service) {
	h := controller.NewAuthController(svc)

	g := r.Group("/auth")
	g.Post("/login", rateLimiter.LoginRateLimiter(), h.Login)
	g.Post("/login-google", rateLimiter.LoginRateLimiter(), h.LoginGoogle)
}

// AuthPrivateRoutes: mounted behind AuthJWT.
func AuthPrivateRoutes(r fiber.Router, svc *service.Service) {
	h := controller.NewAuthController(svc)

	g := r.Group("/auth")
	g.Post("/logout", h.Logout)
	g.Get("/me", h.Me)
	g.Post("/change-password", h.ChangePassword)
}
