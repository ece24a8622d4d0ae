package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func block(day int, start, end string) Schedule {
	return Schedule{ScheduleDayOfWeek: day, ScheduleStartTime: start, ScheduleEndTime: end}
}

func TestCovers(t *testing.T) {
	b := block(1, "08:00", "09:30")
	assert.True(t, b.Covers("08:00"))
	assert.True(t, b.Covers("08:30"))
	assert.True(t, b.Covers("09:30"))
	assert.False(t, b.Covers("07:59"))
	assert.False(t, b.Covers("10:00"))
}

func TestOverlaps(t *testing.T) {
	a := block(1, "08:00", "09:30")
	assert.True(t, a.Overlaps(block(1, "09:00", "10:00")))
	assert.True(t, a.Overlaps(block(1, "07:00", "11:00")))
	assert.False(t, a.Overlaps(block(1, "09:30", "10:15")), "touching blocks")
	assert.False(t, a.Overlaps(block(2, "08:00", "09:30")), "different day")
}
