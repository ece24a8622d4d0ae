package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tariff is a billable concept (arancel) scoped to a tenant.
type Tariff struct {
	TariffID       uuid.UUID `gorm:"column:tariff_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TariffTenantID uuid.UUID `gorm:"column:tariff_tenant_id;type:uuid;not null;index" json:"tenantId"`

	TariffName        string          `gorm:"column:tariff_name;type:varchar(150);not null" json:"name"`
	TariffDescription *string         `gorm:"column:tariff_description" json:"description,omitempty"`
	TariffAmount      decimal.Decimal `gorm:"column:tariff_amount;type:numeric(14,2);not null" json:"amount"`
	TariffCurrency    string          `gorm:"column:tariff_currency;type:varchar(8);not null;default:'CLP'" json:"currency"`
	// day of month the generated payments fall due (1-28)
	TariffDueDay   *int `gorm:"column:tariff_due_day" json:"dueDay,omitempty"`
	TariffIsActive bool `gorm:"column:tariff_is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time      `gorm:"column:tariff_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:tariff_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:tariff_deleted_at;index" json:"-"`
}

func (Tariff) TableName() string { return "tariffs" }

func (t *Tariff) BeforeSave(tx *gorm.DB) error {
	t.TariffName = strings.TrimSpace(t.TariffName)
	t.TariffCurrency = strings.ToUpper(strings.TrimSpace(t.TariffCurrency))
	if t.TariffCurrency == "" {
		t.TariffCurrency = "CLP"
	}
	return nil
}

// DueDateIn: due day inside the given year/month, or nil when the tariff has none.
// Days beyond the month length clamp to its last day.
func (t *Tariff) DueDateIn(year int, month time.Month, loc *time.Location) *time.Time {
	if t.TariffDueDay == nil || *t.TariffDueDay <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	day := *t.TariffDueDay
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return &d
}
