package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapDBError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, fiber.StatusConflict},
		{"wrapped pgx fk", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), fiber.StatusBadRequest},
		{"pq exclusion", &pq.Error{Code: "23P01"}, fiber.StatusConflict},
		{"raw", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := MapDBError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}

	_, msg := MapDBError(errors.New("boom"))
	assert.Equal(t, "boom", msg)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}
