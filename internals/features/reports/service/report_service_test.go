package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"colegio_backend/internals/features/reports/dto"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(40, 40))
}

func TestDebtTotals(t *testing.T) {
	rows := []dto.DebtSummaryRow{
		{OverdueCount: 2, OverdueTotal: decimal.NewFromInt(150000), PendingTotal: decimal.NewFromInt(50000), Debtors: 1},
		{OverdueCount: 1, OverdueTotal: decimal.NewFromInt(75000), Debtors: 1},
	}
	got := DebtTotals(rows)
	assert.True(t, decimal.NewFromInt(225000).Equal(got["overdueTotal"].(decimal.Decimal)))
	assert.True(t, decimal.NewFromInt(50000).Equal(got["pendingTotal"].(decimal.Decimal)))
	assert.Equal(t, int64(3), got["overdueCount"])
	assert.Equal(t, int64(2), got["debtors"])
}
