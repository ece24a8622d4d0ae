package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallsBackOnBlank(t *testing.T) {
	t.Setenv("COLEGIO_TEST_BLANK", "   ")
	assert.Equal(t, "def", GetEnv("COLEGIO_TEST_BLANK", "def"))
	assert.Equal(t, "", GetEnv("COLEGIO_TEST_MISSING"))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("COLEGIO_TEST_ROLES", " Admin, ,secretary ,UTP")
	assert.Equal(t, []string{"admin", "secretary", "utp"}, GetEnvList("COLEGIO_TEST_ROLES", ""))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Not/AZone")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("MAIL_DRIVER", "SMTP")
	t.Setenv("NOTIFICATION_SENDER_ROLES", "")

	cfg := Load()
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "smtp", cfg.MailDriver)
	assert.Contains(t, cfg.NotificationSenderRoles, "secretary")
	assert.Equal(t, "0 3 * * *", cfg.OverdueCronSchedule)
}
