package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"colegio_backend/internals/constants"
)

var ErrInvalidToken = errors.New("token inválido")

// IssueAccessToken signs {user_id, tenant_id, role, profile_id, iat, exp} with HS256.
func IssueAccessToken(secret string, cl Claims, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	mc := jwt.MapClaims{
		"user_id": cl.UserID.String(),
		"role":    string(cl.Role),
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}
	if cl.TenantID != nil {
		mc["tenant_id"] = cl.TenantID.String()
	}
	if cl.ProfileID != nil {
		mc["profile_id"] = cl.ProfileID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(secret))
	return signed, exp, err
}

// ParseAccessToken verifies signature + exp and decodes the claims.
// Unknown role strings decode with RawRole set and Role empty (no capabilities).
func ParseAccessToken(secret, raw string) (Claims, time.Time, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, time.Time{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, time.Time{}, ErrInvalidToken
	}

	var cl Claims
	uid, err := uuid.Parse(strings.TrimSpace(str(mc["user_id"])))
	if err != nil {
		return Claims{}, time.Time{}, ErrInvalidToken
	}
	cl.UserID = uid
	cl.RawRole = strings.ToLower(strings.TrimSpace(str(mc["role"])))
	if r, ok := constants.ParseRole(cl.RawRole); ok {
		cl.Role = r
	}
	if id, err := uuid.Parse(str(mc["tenant_id"])); err == nil {
		cl.TenantID = &id
	}
	if id, err := uuid.Parse(str(mc["profile_id"])); err == nil {
		cl.ProfileID = &id
	}

	var exp time.Time
	if v, ok := mc["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0)
	}
	return cl, exp, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
