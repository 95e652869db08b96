package logic

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"readearn-backend/models"
)

// Store is the transactional unit of work the logic layer runs against. The
// production implementation lives in the dao package; tests use an in-memory
// fake. Implementations translate every storage failure into one of the
// models sentinel errors.
type Store interface {
	Articles() ArticleStore
	Users() UserStore
	Views() ViewStore
	Withdrawals() WithdrawalStore
	Settings() SettingsStore

	// InTransaction invokes fn with a Store bound to a single storage
	// transaction. Everything fn writes commits atomically or not at all.
	// A detected write conflict surfaces as models.ErrTxConflict.
	InTransaction(ctx context.Context, fn func(Store) error) error
}

// ArticleStore reads articles and bumps their view counter.
type ArticleStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Article, error)
	ListActive(ctx context.Context) ([]models.Article, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// UserStore manages reader accounts and their wallets.
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, id, role string) error

	// Credit adds amount to the wallet and bumps the total view counter by
	// one. Only called inside a transaction.
	Credit(ctx context.Context, id string, amount decimal.Decimal) error

	// Debit subtracts amount from the wallet, failing with
	// models.ErrInsufficientBalance rather than going negative.
	Debit(ctx context.Context, id string, amount decimal.Decimal) error
}

// ViewStore is the append-only view ledger. The three Any* lookups are the
// keyed recency probes behind duplicate detection; each rides its own
// composite index.
type ViewStore interface {
	Create(ctx context.Context, event *models.ViewEvent) error
	AnyByIPSince(ctx context.Context, articleID uuid.UUID, ip string, since time.Time) (bool, error)
	AnyByFingerprintSince(ctx context.Context, articleID uuid.UUID, fingerprint string, since time.Time) (bool, error)
	AnyByBeneficiarySince(ctx context.Context, articleID uuid.UUID, beneficiaryID string, since time.Time) (bool, error)
}

// WithdrawalStore manages withdrawal requests.
type WithdrawalStore interface {
	Create(ctx context.Context, request *models.WithdrawalRequest) error
	Get(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)

	// MarkSettled flips status pending -> status, returning false when the
	// request was not pending. This guard is what makes settlement
	// exactly-once under concurrent approvals.
	MarkSettled(ctx context.Context, id uuid.UUID, status string) (bool, error)

	ListByUser(ctx context.Context, userID string) ([]models.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error)
}

// SettingsStore reads and writes the global settings row.
type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}
