package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MapDBError translates driver errors into (status, message).
// Unknown errors surface their raw message with 500.
func MapDBError(err error) (int, string) {
	if err == nil {
		return fiber.StatusOK, ""
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound, "registro no encontrado"
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return mapSQLState(pgxErr.Code, pgxErr.Message)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return mapSQLState(string(pqErr.Code), pqErr.Message)
	}
	return fiber.StatusInternalServerError, err.Error()
}

func mapSQLState(code, msg string) (int, string) {
	switch code {
	case "23505":
		return fiber.StatusConflict, "registro duplicado (unique violation)"
	case "23503":
		return fiber.StatusBadRequest, "referencia no encontrada (FK violation)"
	case "23P01":
		return fiber.StatusConflict, "conflicto de rango (exclusion violation)"
	case "23514":
		return fiber.StatusBadRequest, "valor fuera de rango (check violation)"
	default:
		return fiber.StatusInternalServerError, msg
	}
}

// IsUniqueViolation reports a 23505 from either driver.
func IsUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// DBError writes the mapped error envelope.
func DBError(c *fiber.Ctx, err error) error {
	status, msg := MapDBError(err)
	return JsonError(c, status, msg)
}
