package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentModel "colegio_backend/internals/features/finance/payments/model"
	"colegio_backend/internals/features/finance/tariffs/model"
)

func tariff(dueDay *int) model.Tariff {
	return model.Tariff{
		TariffID:       uuid.New(),
		TariffTenantID: uuid.New(),
		TariffName:     "Mensualidad",
		TariffAmount:   decimal.NewFromInt(85000),
		TariffCurrency: "CLP",
		TariffDueDay:   dueDay,
		TariffIsActive: true,
	}
}

func TestPlanBulkAssignSkipsAlreadyBilled(t *testing.T) {
	tr := tariff(nil)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	g := uuid.New()
	targets := []Target{
		{EstudianteID: a, ApoderadoID: &g, EnrollmentID: uuid.New()},
		{EstudianteID: b, EnrollmentID: uuid.New()},
		{EstudianteID: c, EnrollmentID: uuid.New()},
		{EstudianteID: a, EnrollmentID: uuid.New()}, // second course, same student
	}

	rows, skipped := PlanBulkAssign(tr, targets, []uuid.UUID{b}, "2026", nil)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, a, rows[0].PaymentEstudianteID)
	assert.Equal(t, &g, rows[0].PaymentApoderadoID)
	assert.Equal(t, c, rows[1].PaymentEstudianteID)
	for _, r := range rows {
		assert.Equal(t, paymentModel.PaymentStatusPending, r.PaymentStatus)
		assert.True(t, r.PaymentAmount.Equal(tr.TariffAmount))
		assert.Equal(t, tr.TariffID, *r.PaymentTariffID)
		assert.Equal(t, "2026", *r.PaymentPeriod)
		assert.NotNil(t, r.PaymentEnrollmentID)
	}
}

func TestDueDate(t *testing.T) {
	loc, _ := time.LoadLocation("America/Santiago")
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, loc)
	day := 31

	d := DueDate(tariff(&day), "2027", nil, now)
	require.NotNil(t, d)
	assert.Equal(t, 2027, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 28, d.Day(), "clamped to the last day of the month")

	explicit := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, &explicit, DueDate(tariff(&day), "2026", &explicit, now))

	assert.Nil(t, DueDate(tariff(nil), "2026", nil, now))
}
