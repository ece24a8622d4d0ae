// Package dbtime holds the school-local clock helpers (timezone, weekday, HH:mm).
package dbtime

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// LocTimezone is set by the request middleware from APP_TIMEZONE.
const LocTimezone = "app_loc"

var fallback = func() *time.Location {
	if loc, err := time.LoadLocation("America/Santiago"); err == nil {
		return loc
	}
	return time.UTC
}()

// Location of the request (middleware-provided, else America/Santiago).
func Location(c *fiber.Ctx) *time.Location {
	if c != nil {
		if loc, ok := c.Locals(LocTimezone).(*time.Location); ok && loc != nil {
			return loc
		}
	}
	return fallback
}

func Now(c *fiber.Ctx) time.Time { return time.Now().In(Location(c)) }

// ISOWeekday: 1 = lunes … 7 = domingo.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

var dayNames = [...]string{"", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// DayName returns the Spanish name of an ISO weekday.
func DayName(iso int) string {
	if iso < 1 || iso > 7 {
		return ""
	}
	return dayNames[iso]
}

// HHMM formats the wall-clock time as zero-padded "15:04".
func HHMM(t time.Time) string { return t.Format("15:04") }

// StartOfDay in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
