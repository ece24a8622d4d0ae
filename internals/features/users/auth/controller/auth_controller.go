package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/features/users/auth/dto"
	"colegio_backend/internals/features/users/auth/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

type AuthController struct {
	Svc *service.Service
}

func NewAuthController(svc *service.Service) *AuthController {
	return &AuthController{Svc: svc}
}

func writeAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidGoogleToken):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInactive):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAmbiguousAccount):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGoogleDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "usuario no encontrado")
	}
	return helper.DBError(c, err)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	res, err := ac.Svc.Login(c.UserContext(), req, dbtime.Now(c))
	if err != nil {
		return writeAuthError(c, err)
	}
	return helper.JsonOK(c, "login exitoso", res)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	res, err := ac.Svc.LoginGoogle(c.UserContext(), req, dbtime.Now(c))
	if err != nil {
		return writeAuthError(c, err)
	}
	return helper.JsonOK(c, "login exitoso", res)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Svc.Logout(c.UserContext(), helper.GetRawAccessToken(c)); err != nil {
		log.Printf("[ERROR] logout blacklist: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "no se pudo cerrar la sesión")
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "sesión cerrada", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	me, err := ac.Svc.Me(c.UserContext(), cl.UserID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return helper.JsonOK(c, "ok", me)
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.ChangePasswordRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if err := ac.Svc.ChangePassword(c.UserContext(), cl.UserID, req); err != nil {
		return writeAuthError(c, err)
	}
	return helper.JsonUpdated(c, "contraseña actualizada", nil)
}
