package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeekday(t *testing.T) {
	monday := time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, ISOWeekday(monday))
	assert.Equal(t, 7, ISOWeekday(monday.AddDate(0, 0, 6)))
	assert.Equal(t, "Martes", DayName(ISOWeekday(monday.AddDate(0, 0, 1))))
	assert.Equal(t, "", DayName(0))
}

func TestHHMMZeroPadded(t *testing.T) {
	assert.Equal(t, "08:05", HHMM(time.Date(2025, 1, 1, 8, 5, 0, 0, time.UTC)))
}

func TestLocationFallback(t *testing.T) {
	assert.NotNil(t, Location(nil))
}
