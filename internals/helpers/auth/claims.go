package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"colegio_backend/internals/constants"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocClaims    = "claims"
	LocUserID    = "user_id"
	LocTenantID  = "tenant_id"
	LocRole      = "role"
	LocProfileID = "profile_id"
)

// Claims is the decoded access token: {user_id, tenant_id, role, profile_id}.
type Claims struct {
	UserID    uuid.UUID
	TenantID  *uuid.UUID // nil only for the global admin
	Role      constants.Role
	RawRole   string // as found in the token, kept for config-driven allow-lists
	ProfileID *uuid.UUID
}

func SetClaims(c *fiber.Ctx, cl Claims) {
	c.Locals(LocClaims, cl)
	c.Locals(LocUserID, cl.UserID.String())
	c.Locals(LocRole, string(cl.Role))
	if cl.TenantID != nil {
		c.Locals(LocTenantID, cl.TenantID.String())
	}
	if cl.ProfileID != nil {
		c.Locals(LocProfileID, cl.ProfileID.String())
	}
}

// GetClaims returns 401 when the middleware did not run or failed.
func GetClaims(c *fiber.Ctx) (Claims, error) {
	cl, ok := c.Locals(LocClaims).(Claims)
	if !ok || cl.UserID == uuid.Nil {
		return Claims{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return cl, nil
}

// WriteTenantID resolves the tenant a write lands in.
// Non-admin callers always write into their token tenant; admin must name one (?tenantId=).
func WriteTenantID(c *fiber.Ctx, cl Claims) (uuid.UUID, error) {
	if cl.Role != constants.RoleAdmin {
		if cl.TenantID == nil {
			return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "token sin tenant")
		}
		return *cl.TenantID, nil
	}
	if raw := strings.TrimSpace(firstNonEmpty(c.Query("tenantId"), c.Get("X-Tenant-ID"))); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "tenantId inválido")
		}
		return id, nil
	}
	if cl.TenantID != nil {
		return *cl.TenantID, nil
	}
	return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "tenantId requerido para admin")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParseUUIDParam reads a path param as UUID (400 otherwise).
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" inválido")
	}
	return id, nil
}

// ReadTenantID is the tenant filter for tenant catalogs without per-student visibility.
// nil means every tenant (admin without ?tenantId=).
func ReadTenantID(c *fiber.Ctx, cl Claims) (*uuid.UUID, error) {
	if cl.Role == constants.RoleAdmin {
		raw := strings.TrimSpace(c.Query("tenantId"))
		if raw == "" {
			return nil, nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "tenantId inválido")
		}
		return &id, nil
	}
	if cl.TenantID == nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "token sin tenant")
	}
	id := *cl.TenantID
	return &id, nil
}
