package approvals

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	helper "colegio_backend/internals/helpers"
)

// ReviewRequest is the body of POST /:id/review on every reviewable resource.
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Comment  string `json:"comment" validate:"max=2000"`
}

// WriteError answers a workflow error; anything else falls through to the DB mapping.
func WriteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotReviewer), errors.Is(err, ErrFrozen):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, ErrInvalidDecision):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.DBError(c, err)
}
