// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var devOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3001",
	"http://127.0.0.1:5500",
}

// CorsMiddleware allows the configured frontend plus local dev origins.
func CorsMiddleware(frontendURL string) fiber.Handler {
	origins := append([]string{}, devOrigins...)
	if u := strings.TrimRight(strings.TrimSpace(frontendURL), "/"); u != "" {
		origins = append(origins, u)
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Tenant-ID",
		AllowCredentials: true,
	})
}
