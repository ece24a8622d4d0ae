package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"colegio_backend/internals/features/finance/payments/model"
)

type CreatePaymentRequest struct {
	EstudianteID string          `json:"estudianteId" validate:"required,uuid"`
	ApoderadoID  *string         `json:"apoderadoId" validate:"omitempty,uuid"`
	TariffID     *string         `json:"tariffId" validate:"omitempty,uuid"`
	EnrollmentID *string         `json:"enrollmentId" validate:"omitempty,uuid"`
	Period       *string         `json:"period" validate:"omitempty,max=10"`
	Concept      string          `json:"concept" validate:"required,max=150"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" validate:"omitempty,max=8"`
	DueDate      *time.Time      `json:"dueDate"`
	Method       string          `json:"method" validate:"omitempty,oneof=gateway transferencia efectivo otro"`
	Status       string          `json:"status" validate:"omitempty,oneof=pending en_revision vencido pagado rejected"`
}

func (r *CreatePaymentRequest) Normalize() {
	r.Concept = strings.TrimSpace(r.Concept)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.Method = strings.ToLower(strings.TrimSpace(r.Method))
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func parseOpt(s *string) *uuid.UUID {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &id
}

func (r *CreatePaymentRequest) ToModel(tenantID uuid.UUID) model.Payment {
	sid, _ := uuid.Parse(r.EstudianteID)
	return model.Payment{
		PaymentTenantID:     tenantID,
		PaymentEstudianteID: sid,
		PaymentApoderadoID:  parseOpt(r.ApoderadoID),
		PaymentTariffID:     parseOpt(r.TariffID),
		PaymentEnrollmentID: parseOpt(r.EnrollmentID),
		PaymentPeriod:       r.Period,
		PaymentConcept:      r.Concept,
		PaymentAmount:       r.Amount,
		PaymentCurrency:     r.Currency,
		PaymentStatus:       r.Status,
		PaymentDueDate:      r.DueDate,
		PaymentMethod:       r.Method,
	}
}

type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=pending en_revision vencido pagado rejected"`
	Method *string `json:"method" validate:"omitempty,oneof=gateway transferencia efectivo otro"`
	Note   *string `json:"note" validate:"omitempty,max=500"`
}

type ListQuery struct {
	EstudianteID string `query:"estudianteId"`
	ApoderadoID  string `query:"apoderadoId"`
	Status       string `query:"status"`
	Period       string `query:"period"`
	DueFrom      string `query:"dueFrom"`
	DueTo        string `query:"dueTo"`
}

type CheckoutResponse struct {
	PaymentID   uuid.UUID `json:"paymentId"`
	OrderID     string    `json:"orderId"`
	SnapToken   string    `json:"snapToken"`
	RedirectURL string    `json:"redirectUrl"`
}
