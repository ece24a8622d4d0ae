// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

// TokenChecker reports revoked tokens (logout blacklist).
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, raw string) (bool, error)
}

type AuthJWTOpts struct {
	Secret              string
	Blacklist           TokenChecker
	AllowCookieFallback bool
	// optional: reject deactivated accounts
	IsActive func(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AuthJWT verifies the bearer token and hydrates helperAuth.Claims into Locals.
// Requests without a token stop here, before any storage lookup.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: falta el secreto JWT")
	}

	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c, o.AllowCookieFallback)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - token no enviado")
		}

		cl, _, err := helperAuth.ParseAccessToken(secret, raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - token inválido o expirado")
		}

		if o.Blacklist != nil {
			revoked, err := o.Blacklist.IsBlacklisted(c.UserContext(), raw)
			if err != nil {
				log.Printf("[ERROR] blacklist check: %v", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
			}
			if revoked {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Sesión cerrada. Inicia sesión nuevamente.")
			}
		}

		if o.IsActive != nil {
			active, err := o.IsActive(c.UserContext(), cl.UserID)
			if err != nil {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - usuario no encontrado")
			}
			if !active {
				return helper.JsonError(c, fiber.StatusForbidden, "Tu cuenta está desactivada")
			}
		}

		c.Locals(helper.LocRawToken, raw)
		helperAuth.SetClaims(c, cl)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx, cookieFallback bool) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" && cookieFallback {
		return strings.Trim(strings.TrimSpace(c.Cookies("access_token")), "\"'")
	}
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return strings.Trim(strings.TrimSpace(fields[1]), "\"'")
}
