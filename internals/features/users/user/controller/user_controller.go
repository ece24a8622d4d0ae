package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/users/user/dto"
	"colegio_backend/internals/features/users/user/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type UserController struct {
	DB              *gorm.DB
	DefaultPassword string
}

func NewUserController(db *gorm.DB, defaultPassword string) *UserController {
	return &UserController{DB: db, DefaultPassword: defaultPassword}
}

var userSort = map[string]string{
	"name":       "user_full_name",
	"email":      "user_email",
	"created_at": "user_created_at",
}

func (uc *UserController) find(c *fiber.Ctx, tenantID *uuid.UUID, id uuid.UUID) (model.User, error) {
	var u model.User
	q := uc.DB.WithContext(c.UserContext()).Where("user_id = ?", id)
	if tenantID != nil {
		q = q.Where("user_tenant_id = ?", *tenantID)
	}
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return u, fiber.NewError(fiber.StatusNotFound, "usuario no encontrado")
		}
		return u, err
	}
	return u, nil
}

// GET /api/users?role=&q=&active=
func (uc *UserController) List(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	q := uc.DB.WithContext(c.UserContext()).Model(&model.User{})
	if tenantID != nil {
		q = q.Where("user_tenant_id = ?", *tenantID)
	}
	if r := strings.TrimSpace(c.Query("role")); r != "" {
		q = q.Where("user_role = ?", strings.ToLower(r))
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("user_full_name ILIKE ? OR user_email ILIKE ?", "%"+s+"%", "%"+s+"%")
	}
	if v := strings.TrimSpace(c.Query("active")); v != "" {
		q = q.Where("user_is_active = ?", v == "true" || v == "1")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.User
	if err := q.Order(helper.ResolveSort(c, userSort, "name", "asc")).
		Limit(pg.Limit).Offset(pg.Offset).Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/users/:id
func (uc *UserController) GetByID(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	u, err := uc.find(c, tenantID, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", u)
}

// POST /api/users
func (uc *UserController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateUserRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	role, ok := dto.CanAssign(cl.Role, req.Role)
	if !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "no puedes asignar el rol "+req.Role)
	}

	u := model.User{
		UserEmail:    req.Email,
		UserFullName: req.FullName,
		UserRole:     string(role),
		UserIsActive: true,
	}
	// global admins live outside any tenant
	if role != constants.RoleAdmin {
		tenantID, err := helperAuth.WriteTenantID(c, cl)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		u.UserTenantID = &tenantID
	}

	plain := uc.DefaultPassword
	if req.Password != nil {
		plain = *req.Password
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "no se pudo generar la contraseña")
	}
	u.UserPassword = string(hash)

	if err := uc.DB.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "el correo ya está registrado en el colegio")
		}
		return helper.DBError(c, err)
	}
	return helper.JsonCreated(c, "usuario creado", u)
}

// PATCH /api/users/:id
func (uc *UserController) Patch(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateUserRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	u, err := uc.find(c, tenantID, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	// the current role must also be one the caller could assign
	if _, ok := dto.CanAssign(cl.Role, u.UserRole); !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "no puedes modificar este usuario")
	}
	if req.Role != nil {
		role, ok := dto.CanAssign(cl.Role, *req.Role)
		if !ok {
			return helper.JsonError(c, fiber.StatusForbidden, "no puedes asignar el rol "+*req.Role)
		}
		u.UserRole = string(role)
	}
	if req.FullName != nil {
		u.UserFullName = *req.FullName
	}
	if req.IsActive != nil {
		if !*req.IsActive && u.UserID == cl.UserID {
			return helper.JsonError(c, fiber.StatusBadRequest, "no puedes desactivar tu propia cuenta")
		}
		u.UserIsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "no se pudo generar la contraseña")
		}
		u.UserPassword = string(hash)
	}
	if err := uc.DB.WithContext(c.UserContext()).Save(&u).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonUpdated(c, "usuario actualizado", u)
}

// DELETE /api/users/:id (soft)
func (uc *UserController) Delete(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if id == cl.UserID {
		return helper.JsonError(c, fiber.StatusBadRequest, "no puedes eliminar tu propia cuenta")
	}
	u, err := uc.find(c, tenantID, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, ok := dto.CanAssign(cl.Role, u.UserRole); !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "no puedes eliminar este usuario")
	}
	if err := uc.DB.WithContext(c.UserContext()).Delete(&u).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonDeleted(c, "usuario eliminado", fiber.Map{"id": id})
}
