package logic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"readearn-backend/models"
)

// WithdrawalLogic handles withdrawal requests and their settlement.
type WithdrawalLogic struct {
	store    Store
	settings *SettingsLogic
	clock    clockwork.Clock
	log      *slog.Logger
}

func NewWithdrawalLogic(store Store, settings *SettingsLogic, clock clockwork.Clock, log *slog.Logger) *WithdrawalLogic {
	return &WithdrawalLogic{
		store:    store,
		settings: settings,
		clock:    clock,
		log:      log,
	}
}

// Request creates a pending withdrawal after validating the minimum and the
// current balance. The wallet is not touched and no funds are locked; the
// balance is re-validated when the request settles.
func (l *WithdrawalLogic) Request(ctx context.Context, userID string, amount decimal.Decimal, method, details string) (*models.WithdrawalRequest, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", models.ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: method is required", models.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}

	snapshot := l.settings.Snapshot(ctx)
	if amount.LessThan(snapshot.MinWithdrawal) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", models.ErrValidation, snapshot.MinWithdrawal)
	}

	user, err := l.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.WalletBalance.LessThan(amount) {
		return nil, models.ErrInsufficientBalance
	}

	request := &models.WithdrawalRequest{
		UserID:    user.ID,
		UserEmail: user.Email,
		Amount:    amount,
		Method:    method,
		Details:   details,
		Status:    models.WithdrawalPending,
		CreatedAt: l.clock.Now(),
	}
	if err := l.store.Withdrawals().Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Settle transitions a pending request to approved or rejected, exactly once.
// Approval debits the wallet in the same transaction; rejection leaves the
// wallet untouched. Conflicts are reported, never retried: under at-least-once
// delivery the second attempt must observe the terminal state.
func (l *WithdrawalLogic) Settle(ctx context.Context, withdrawalID uuid.UUID, action, actingAdminID string) error {
	var status string
	switch action {
	case models.SettleActionApprove:
		status = models.WithdrawalApproved
	case models.SettleActionReject:
		status = models.WithdrawalRejected
	default:
		return fmt.Errorf("%w: unknown action %q", models.ErrValidation, action)
	}

	actor, err := l.store.Users().Get(ctx, actingAdminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		return err
	}
	if !actor.IsAdmin() {
		return models.ErrUnauthorized
	}

	err = l.store.InTransaction(ctx, func(tx Store) error {
		request, err := tx.Withdrawals().Get(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if request.Status != models.WithdrawalPending {
			return fmt.Errorf("%w: request is not pending", models.ErrConflict)
		}

		settled, err := tx.Withdrawals().MarkSettled(ctx, withdrawalID, status)
		if err != nil {
			return err
		}
		if !settled {
			// Lost the race against a concurrent settlement.
			return fmt.Errorf("%w: request is not pending", models.ErrConflict)
		}

		if status == models.WithdrawalApproved {
			if err := tx.Users().Debit(ctx, request.UserID, request.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Info("withdrawal settled",
		"withdrawal", withdrawalID, "status", status, "admin", actor.ID)
	return nil
}

// List returns the acting user's own requests, or, for admins, all requests
// with the given status (pending when unspecified). A status narrows a
// non-admin's own list the same way.
func (l *WithdrawalLogic) List(ctx context.Context, actingUserID, status string) ([]models.WithdrawalRequest, error) {
	if status != "" {
		switch status {
		case models.WithdrawalPending, models.WithdrawalApproved, models.WithdrawalRejected:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
		}
	}

	actor, err := l.store.Users().Get(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		requests, err := l.store.Withdrawals().ListByUser(ctx, actor.ID)
		if err != nil || status == "" {
			return requests, err
		}
		filtered := make([]models.WithdrawalRequest, 0, len(requests))
		for _, request := range requests {
			if request.Status == status {
				filtered = append(filtered, request)
			}
		}
		return filtered, nil
	}

	if status == "" {
		status = models.WithdrawalPending
	}
	return l.store.Withdrawals().ListByStatus(ctx, status)
}
