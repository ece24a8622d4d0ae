package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitialStatus(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusPreMatricula, InitialStatus("2027", now))
	assert.Equal(t, StatusPreMatricula, InitialStatus("2027-1", now))
	assert.Equal(t, StatusConfirmada, InitialStatus("2026", now))
	assert.Equal(t, StatusConfirmada, InitialStatus("2025", now))
	assert.Equal(t, StatusConfirmada, InitialStatus("bogus", now))
}

func TestPeriodYear(t *testing.T) {
	y, ok := PeriodYear(" 2026 ")
	assert.True(t, ok)
	assert.Equal(t, 2026, y)

	_, ok = PeriodYear("20261")
	assert.False(t, ok)
	_, ok = PeriodYear("26")
	assert.False(t, ok)
	_, ok = PeriodYear("abcd")
	assert.False(t, ok)
}
