package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

const (
	SettleActionApprove = "approve"
	SettleActionReject  = "reject"
)

// WithdrawalRequest moves funds out of a wallet. It transitions
// pending -> approved or pending -> rejected exactly once; terminal states
// are immutable.
type WithdrawalRequest struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string          `gorm:"not null;index" json:"user_id"`
	UserEmail string          `json:"user_email"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Method    string          `gorm:"not null" json:"method"`
	Details   string          `json:"details"`
	Status    string          `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (w *WithdrawalRequest) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
