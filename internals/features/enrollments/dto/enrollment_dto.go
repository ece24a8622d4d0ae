package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	courseModel "colegio_backend/internals/features/academics/courses/model"
	"colegio_backend/internals/features/enrollments/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
)

/* =========================================================
   Create
========================================================= */

type NewStudent struct {
	FirstName        string  `json:"firstName" validate:"required,max=100"`
	LastName         string  `json:"lastName" validate:"required,max=100"`
	RUT              *string `json:"rut" validate:"omitempty,max=20"`
	EnrollmentNumber *string `json:"enrollmentNumber" validate:"omitempty,max=30"`
	Email            *string `json:"email" validate:"omitempty,email,max=255"`
	BirthDate        *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	GradeLabel       *string `json:"gradeLabel" validate:"omitempty,max=50"`
}

type NewGuardian struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	RUT       *string `json:"rut" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
}

type PromiseInput struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
	Notes  *string         `json:"notes" validate:"omitempty,max=1000"`
}

type CreateEnrollmentRequest struct {
	StudentID   *string      `json:"studentId" validate:"omitempty,uuid"`
	NewStudent  *NewStudent  `json:"newStudent"`
	ApoderadoID *string      `json:"apoderadoId" validate:"omitempty,uuid"`
	NewGuardian *NewGuardian `json:"newGuardian"`

	CourseID string           `json:"courseId" validate:"required,uuid"`
	Period   string           `json:"period" validate:"required,max=10"`
	Fee      *decimal.Decimal `json:"fee"`
	Notes    *string          `json:"notes" validate:"omitempty,max=2000"`

	TariffIDs      []string      `json:"tariffIds" validate:"omitempty,dive,uuid"`
	PaymentPromise *PromiseInput `json:"paymentPromise"`
}

func (r *CreateEnrollmentRequest) Normalize() {
	r.Period = strings.TrimSpace(r.Period)
	r.CourseID = strings.TrimSpace(r.CourseID)
	if r.StudentID != nil && strings.TrimSpace(*r.StudentID) == "" {
		r.StudentID = nil
	}
	if r.ApoderadoID != nil && strings.TrimSpace(*r.ApoderadoID) == "" {
		r.ApoderadoID = nil
	}
}

// Check holds the cross-field rules the tags cannot express.
func (r *CreateEnrollmentRequest) Check() map[string][]string {
	out := map[string][]string{}
	switch {
	case r.StudentID == nil && r.NewStudent == nil:
		out["studentId"] = append(out["studentId"], "studentId o newStudent es obligatorio")
	case r.StudentID != nil && r.NewStudent != nil:
		out["studentId"] = append(out["studentId"], "envíe studentId o newStudent, no ambos")
	}
	if r.ApoderadoID != nil && r.NewGuardian != nil {
		out["apoderadoId"] = append(out["apoderadoId"], "envíe apoderadoId o newGuardian, no ambos")
	}
	if _, ok := model.PeriodYear(r.Period); r.Period != "" && !ok {
		out["period"] = append(out["period"], "period debe comenzar con un año de 4 dígitos")
	}
	if r.Fee != nil && r.Fee.IsNegative() {
		out["fee"] = append(out["fee"], "fee no puede ser negativo")
	}
	if r.PaymentPromise != nil && !r.PaymentPromise.Amount.IsPositive() {
		out["paymentPromise.amount"] = append(out["paymentPromise.amount"], "amount debe ser mayor a 0")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *NewStudent) Apply(e *estudianteModel.Estudiante) {
	e.EstudianteFirstName = s.FirstName
	e.EstudianteLastName = s.LastName
	if s.RUT != nil {
		e.EstudianteRUT = s.RUT
	}
	if s.EnrollmentNumber != nil {
		e.EstudianteEnrollmentNumber = s.EnrollmentNumber
	}
	if s.Email != nil {
		e.EstudianteEmail = s.Email
	}
	if s.BirthDate != nil {
		if d, err := time.Parse("2006-01-02", *s.BirthDate); err == nil {
			e.EstudianteBirthDate = &d
		}
	}
	if s.GradeLabel != nil {
		e.EstudianteGradeLabel = s.GradeLabel
	}
}

func (g *NewGuardian) Apply(a *apoderadoModel.Apoderado) {
	a.ApoderadoFirstName = g.FirstName
	a.ApoderadoLastName = g.LastName
	if g.RUT != nil {
		a.ApoderadoRUT = g.RUT
	}
	if g.Email != nil {
		a.ApoderadoEmail = g.Email
	}
	if g.Phone != nil {
		a.ApoderadoPhone = g.Phone
	}
	if g.Address != nil {
		a.ApoderadoAddress = g.Address
	}
}

/* =========================================================
   Update / list
========================================================= */

type UpdateEnrollmentRequest struct {
	Status   *string          `json:"status" validate:"omitempty,oneof=pre-matricula confirmada retirada anulada"`
	Fee      *decimal.Decimal `json:"fee"`
	Notes    *string          `json:"notes" validate:"omitempty,max=2000"`
	CourseID *string          `json:"courseId" validate:"omitempty,uuid"`
}

type ListQuery struct {
	CourseID     string `query:"courseId"`
	EstudianteID string `query:"estudianteId"`
	Period       string `query:"period"`
	Status       string `query:"status"`
}

/* =========================================================
   Response
========================================================= */

type StudentSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	RUT      *string   `json:"rut,omitempty"`
	Email    *string   `json:"email,omitempty"`
}

type CourseSummary struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Year  int       `json:"year"`
}

type GuardianSummary struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"fullName"`
	Email           *string   `json:"email,omitempty"`
	FinancialStatus string    `json:"financialStatus"`
}

type EnrollmentResponse struct {
	model.Enrollment
	Estudiante *StudentSummary  `json:"estudiante,omitempty"`
	Course     *CourseSummary   `json:"course,omitempty"`
	Apoderado  *GuardianSummary `json:"apoderado,omitempty"`
}

func NewEnrollmentResponse(e model.Enrollment, est *estudianteModel.Estudiante, c *courseModel.Course, a *apoderadoModel.Apoderado) EnrollmentResponse {
	out := EnrollmentResponse{Enrollment: e}
	if est != nil {
		out.Estudiante = &StudentSummary{ID: est.EstudianteID, FullName: est.FullName(), RUT: est.EstudianteRUT, Email: est.EstudianteEmail}
	}
	if c != nil {
		out.Course = &CourseSummary{ID: c.CourseID, Label: c.Label(), Year: c.CourseYear}
	}
	if a != nil {
		out.Apoderado = &GuardianSummary{
			ID:              a.ApoderadoID,
			FullName:        a.FullName(),
			Email:           a.ApoderadoEmail,
			FinancialStatus: a.ApoderadoFinancialStatus,
		}
	}
	return out
}

// DebtBlockData is the body of a DEBT_BLOCK rejection.
type DebtBlockData struct {
	OverdueCount int             `json:"overdueCount"`
	TotalDebt    decimal.Decimal `json:"totalDebt"`
	HasOldDebt   bool            `json:"hasOldDebt"`
}
