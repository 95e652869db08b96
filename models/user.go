package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a reader account with an earnings wallet. The ID is the
// uid issued by the identity provider. WalletBalance is only ever mutated
// inside a store transaction.
type User struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	Email         string          `json:"email"`
	Role          string          `gorm:"not null;default:user" json:"role"`
	WalletBalance decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"wallet_balance"`
	TotalViews    uint64          `gorm:"not null;default:0" json:"total_views"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
