package dto

import (
	"github.com/google/uuid"

	"colegio_backend/internals/features/students/apoderados/model"
)

type CreateApoderadoRequest struct {
	EstudianteID *string `json:"estudianteId" validate:"omitempty,uuid"`
	Type         string  `json:"type" validate:"omitempty,oneof=principal suplente"`
	FirstName    string  `json:"firstName" validate:"required,max=100"`
	LastName     string  `json:"lastName" validate:"required,max=100"`
	RUT          *string `json:"rut" validate:"omitempty,max=20"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
}

func (r *CreateApoderadoRequest) ToModel(tenantID uuid.UUID) model.Apoderado {
	a := model.Apoderado{
		ApoderadoTenantID:  tenantID,
		ApoderadoType:      r.Type,
		ApoderadoFirstName: r.FirstName,
		ApoderadoLastName:  r.LastName,
		ApoderadoRUT:       r.RUT,
		ApoderadoEmail:     r.Email,
		ApoderadoPhone:     r.Phone,
		ApoderadoAddress:   r.Address,
	}
	if r.EstudianteID != nil {
		id := uuid.MustParse(*r.EstudianteID)
		a.ApoderadoEstudianteID = &id
	}
	return a
}

type UpdateApoderadoRequest struct {
	Type      *string `json:"type" validate:"omitempty,oneof=principal suplente"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	RUT       *string `json:"rut" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
	// only exento can be set by hand; solvente/moroso come from the sync
	FinancialStatus *string `json:"financialStatus" validate:"omitempty,oneof=exento solvente"`
}

func (r *UpdateApoderadoRequest) Apply(a *model.Apoderado) {
	if r.Type != nil {
		a.ApoderadoType = *r.Type
	}
	if r.FirstName != nil {
		a.ApoderadoFirstName = *r.FirstName
	}
	if r.LastName != nil {
		a.ApoderadoLastName = *r.LastName
	}
	if r.RUT != nil {
		a.ApoderadoRUT = r.RUT
	}
	if r.Email != nil {
		a.ApoderadoEmail = r.Email
	}
	if r.Phone != nil {
		a.ApoderadoPhone = r.Phone
	}
	if r.Address != nil {
		a.ApoderadoAddress = r.Address
	}
}

type SyncResponse struct {
	ID              uuid.UUID `json:"id"`
	FinancialStatus string    `json:"financialStatus"`
}
