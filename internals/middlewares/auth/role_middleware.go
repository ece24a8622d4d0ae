package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"colegio_backend/internals/constants"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

// RequireCapability lets the request through when the caller's role holds cap.
func RequireCapability(cap constants.Capability, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cl, err := helperAuth.GetClaims(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		if !constants.Can(cl.Role, cap) {
			return helper.JsonError(c, fiber.StatusForbidden, constants.RoleError(roleOf(cl), action))
		}
		return c.Next()
	}
}

// OnlyRoles: closed-enum allow-list.
func OnlyRoles(action string, roles ...constants.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cl, err := helperAuth.GetClaims(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		if !lo.Contains(roles, cl.Role) {
			return helper.JsonError(c, fiber.StatusForbidden, constants.RoleError(roleOf(cl), action))
		}
		return c.Next()
	}
}

// OnlyRawRoles matches the token role literally against a configured list,
// so names outside the enum (e.g. "secretary") still work when configured.
func OnlyRawRoles(action string, roles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cl, err := helperAuth.GetClaims(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		if !lo.Contains(roles, cl.RawRole) {
			return helper.JsonError(c, fiber.StatusForbidden, constants.RoleError(roleOf(cl), action))
		}
		return c.Next()
	}
}

func roleOf(cl helperAuth.Claims) constants.Role {
	if cl.Role != "" {
		return cl.Role
	}
	return constants.Role(cl.RawRole)
}
