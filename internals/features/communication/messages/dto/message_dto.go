package dto

import (
	"github.com/google/uuid"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/features/communication/messages/model"
)

type SendMessageRequest struct {
	RecipientID uuid.UUID  `json:"recipientId" validate:"required"`
	CourseID    *uuid.UUID `json:"courseId"`
	Subject     string     `json:"subject" validate:"required,max=200"`
	Body        string     `json:"body" validate:"required,max=10000"`
}

func (r *SendMessageRequest) ToModel(tenantID, sender uuid.UUID) model.Message {
	return model.Message{
		MessageTenantID:        tenantID,
		MessageSenderUserID:    sender,
		MessageRecipientUserID: r.RecipientID,
		MessageCourseID:        r.CourseID,
		MessageSubject:         r.Subject,
		MessageBody:            r.Body,
	}
}

// CanMessage: students and guardians only write to school staff; staff write to anyone.
// Unknown recipient roles (e.g. configured extras) count as staff.
func CanMessage(sender constants.Role, recipientRaw string) bool {
	recipient, _ := constants.ParseRole(recipientRaw)
	switch sender {
	case constants.RoleStudent, constants.RoleApoderado:
		return recipient != constants.RoleStudent && recipient != constants.RoleApoderado
	case "":
		return false
	}
	return true
}
