package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"colegio_backend/internals/constants"
	userModel "colegio_backend/internals/features/users/user/model"
)

func account(t *testing.T, password, role string, active bool) userModel.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	tid := uuid.New()
	return userModel.User{
		UserID:       uuid.New(),
		UserTenantID: &tid,
		UserEmail:    "ana@colegio.cl",
		UserPassword: string(hash),
		UserRole:     role,
		UserIsActive: active,
	}
}

func TestPickAccountWrongPassword(t *testing.T) {
	u := account(t, "secreto123", "teacher", true)
	_, err := PickAccount(MatchAccounts([]userModel.User{u}, "otra"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPickAccountSameEmailTwoTenants(t *testing.T) {
	a := account(t, "secreto123", "apoderado", true)
	b := account(t, "distinta99", "apoderado", true)

	got, err := PickAccount(MatchAccounts([]userModel.User{a, b}, "distinta99"))
	require.NoError(t, err)
	assert.Equal(t, b.UserID, got.UserID)

	c := account(t, "secreto123", "teacher", true)
	_, err = PickAccount(MatchAccounts([]userModel.User{a, c}, "secreto123"))
	assert.ErrorIs(t, err, ErrAmbiguousAccount)
}

func TestPickAccountInactive(t *testing.T) {
	u := account(t, "secreto123", "teacher", false)
	_, err := PickAccount(MatchAccounts([]userModel.User{u}, "secreto123"))
	assert.ErrorIs(t, err, ErrInactive)
}

func TestClaimsFor(t *testing.T) {
	u := account(t, "x", "director", true)
	pid := uuid.New()
	u.UserProfileID = &pid

	cl := ClaimsFor(u)
	assert.Equal(t, constants.RoleDirector, cl.Role)
	assert.Equal(t, "director", cl.RawRole)
	assert.Equal(t, u.UserTenantID, cl.TenantID)
	assert.Equal(t, &pid, cl.ProfileID)

	u.UserRole = "secretary"
	cl = ClaimsFor(u)
	assert.Empty(t, cl.Role)
	assert.Equal(t, "secretary", cl.RawRole)
}
