package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/constants"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	tid, pid := uuid.New(), uuid.New()
	in := Claims{UserID: uuid.New(), TenantID: &tid, Role: constants.RoleApoderado, ProfileID: &pid}

	raw, exp, err := IssueAccessToken("s3cret", in, time.Hour, time.Now())
	require.NoError(t, err)

	out, gotExp, err := ParseAccessToken("s3cret", raw)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, tid, *out.TenantID)
	assert.Equal(t, pid, *out.ProfileID)
	assert.Equal(t, constants.RoleApoderado, out.Role)
	assert.Equal(t, exp.Unix(), gotExp.Unix())
}

func TestParseAccessTokenRejects(t *testing.T) {
	raw, _, err := IssueAccessToken("s3cret", Claims{UserID: uuid.New(), Role: constants.RoleAdmin}, time.Hour, time.Now())
	require.NoError(t, err)

	_, _, err = ParseAccessToken("otro", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := IssueAccessToken("s3cret", Claims{UserID: uuid.New(), Role: constants.RoleAdmin}, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, _, err = ParseAccessToken("s3cret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnknownRoleKeepsRawRole(t *testing.T) {
	raw, _, err := IssueAccessToken("k", Claims{UserID: uuid.New(), Role: constants.Role("secretary")}, time.Hour, time.Now())
	require.NoError(t, err)
	cl, _, err := ParseAccessToken("k", raw)
	require.NoError(t, err)
	assert.Equal(t, "secretary", cl.RawRole)
	assert.Equal(t, constants.Role(""), cl.Role)
}

func TestBlacklistWithoutBackendsIsNoop(t *testing.T) {
	bl := NewBlacklist(nil, nil, "k")
	require.NoError(t, bl.Add(context.Background(), "tok", time.Now().Add(time.Hour)))
	ok, err := bl.IsBlacklisted(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, hmacHex("tok", "k"), hmacHex("tok", "k"))
	assert.NotEqual(t, hmacHex("tok", "k"), hmacHex("tok", "k2"))
}
