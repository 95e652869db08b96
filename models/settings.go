package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the single global settings row.
const SettingsID = "global"

// Settings is the admin-managed economic configuration. A zero field means
// "unset" and falls back to the default when snapshotted.
type Settings struct {
	ID                   string          `gorm:"primaryKey" json:"id"`
	EarningPerView       decimal.Decimal `gorm:"type:numeric(10,4);not null;default:0" json:"earning_per_view"`
	EarningPerSelfView   decimal.Decimal `gorm:"type:numeric(10,4);not null;default:0" json:"earning_per_self_view"`
	MinWithdrawal        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"min_withdrawal"`
	CooldownMinutes      int             `gorm:"not null;default:0" json:"cooldown_minutes"`
	VisitDurationSeconds int             `gorm:"not null;default:0" json:"visit_duration_seconds"`
	PaymentMethods       []string        `gorm:"serializer:json" json:"payment_methods"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// SettingsSnapshot is the resolved configuration passed explicitly into each
// operation, so no operation reads live settings mid-flight.
type SettingsSnapshot struct {
	EarningPerView     decimal.Decimal
	EarningPerSelfView decimal.Decimal
	MinWithdrawal      decimal.Decimal
	Cooldown           time.Duration
	VisitDuration      time.Duration
	PaymentMethods     []string
}

// DefaultSnapshot returns the hardcoded economic defaults, used when the
// settings row is absent or a field is unset.
func DefaultSnapshot() SettingsSnapshot {
	return SettingsSnapshot{
		EarningPerView:     decimal.NewFromFloat(0.05),
		EarningPerSelfView: decimal.NewFromFloat(0.01),
		MinWithdrawal:      decimal.NewFromInt(50),
		Cooldown:           240 * time.Minute,
		VisitDuration:      15 * time.Second,
		PaymentMethods:     []string{"UPI", "Paytm", "Bank Transfer"},
	}
}

// Resolve overlays the stored row onto the given defaults. Unset (zero or
// negative) fields keep the default, matching the per-field fallback the
// settings document has always had.
func (s *Settings) Resolve(defaults SettingsSnapshot) SettingsSnapshot {
	out := defaults
	if s == nil {
		return out
	}
	if s.EarningPerView.IsPositive() {
		out.EarningPerView = s.EarningPerView
	}
	if s.EarningPerSelfView.IsPositive() {
		out.EarningPerSelfView = s.EarningPerSelfView
	}
	if s.MinWithdrawal.IsPositive() {
		out.MinWithdrawal = s.MinWithdrawal
	}
	if s.CooldownMinutes > 0 {
		out.Cooldown = time.Duration(s.CooldownMinutes) * time.Minute
	}
	if s.VisitDurationSeconds > 0 {
		out.VisitDuration = time.Duration(s.VisitDurationSeconds) * time.Second
	}
	if len(s.PaymentMethods) > 0 {
		out.PaymentMethods = s.PaymentMethods
	}
	return out
}
