package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/constants"
	helperAuth "colegio_backend/internals/helpers/auth"
)

const testSecret = "test-secret"

type countingChecker struct {
	calls   int
	revoked map[string]bool
}

func (c *countingChecker) IsBlacklisted(_ context.Context, raw string) (bool, error) {
	c.calls++
	return c.revoked[raw], nil
}

func newApp(checker TokenChecker, reached *bool, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{AuthJWT(AuthJWTOpts{Secret: testSecret, Blacklist: checker})}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		*reached = true
		cl, err := helperAuth.GetClaims(c)
		if err != nil {
			return err
		}
		return c.SendString(string(cl.Role))
	})
	app.Get("/x", handlers...)
	return app
}

func token(t *testing.T, role constants.Role) string {
	t.Helper()
	tid := uuid.New()
	raw, _, err := helperAuth.IssueAccessToken(testSecret, helperAuth.Claims{UserID: uuid.New(), TenantID: &tid, Role: role}, time.Hour, time.Now())
	require.NoError(t, err)
	return raw
}

func TestMissingTokenIsRejectedBeforeAnyLookup(t *testing.T) {
	checker := &countingChecker{}
	reached := false
	app := newApp(checker, &reached)

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)
	assert.Zero(t, checker.calls)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, checker.calls)
}

func TestValidTokenReachesHandler(t *testing.T) {
	reached := false
	app := newApp(&countingChecker{}, &reached)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, constants.RoleDirector))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "director", string(body))
	assert.True(t, reached)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	raw := token(t, constants.RoleDirector)
	reached := false
	app := newApp(&countingChecker{revoked: map[string]bool{raw: true}}, &reached)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)
}

func TestCapabilityGuard(t *testing.T) {
	reached := false
	app := newApp(nil, &reached, RequireCapability(constants.CapApprovalReview, "revisar"))

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, constants.RoleTeacher))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.False(t, reached)

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, constants.RoleUTP))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRawRoleAllowList(t *testing.T) {
	reached := false
	app := newApp(nil, &reached, OnlyRawRoles("enviar", []string{"director", "secretary"}))

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, constants.Role("secretary")))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, constants.RoleTeacher))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
