package logic_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"readearn-backend/logic"
	"readearn-backend/models"
	"readearn-backend/pkg/memstore"
)

func newWithdrawalLogic(store *memstore.Store) *logic.WithdrawalLogic {
	log := discardLogger()
	settings := logic.NewSettingsLogic(store, models.DefaultSnapshot(), log)
	return logic.NewWithdrawalLogic(store, settings, clockwork.NewFakeClock(), log)
}

func TestRequestWithdrawalBelowMinimum(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(100), models.RoleUser)
	wl := newWithdrawalLogic(store)

	_, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(10), "UPI", "upi@bank")
	require.ErrorIs(t, err, models.ErrValidation)
	require.Empty(t, store.WithdrawalsByID)
}

func TestRequestWithdrawalExceedsBalance(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(60), models.RoleUser)
	wl := newWithdrawalLogic(store)

	_, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(75), "UPI", "upi@bank")
	require.ErrorIs(t, err, models.ErrInsufficientBalance)
	require.Empty(t, store.WithdrawalsByID)
}

func TestRequestWithdrawalUnknownUser(t *testing.T) {
	store := memstore.New()
	wl := newWithdrawalLogic(store)

	_, err := wl.Request(context.Background(), "nobody", decimal.NewFromInt(75), "UPI", "upi@bank")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequestWithdrawalLeavesFundsAvailable(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(75), models.RoleUser)
	wl := newWithdrawalLogic(store)

	request, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "upi@bank")
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalPending, request.Status)
	require.Equal(t, "u1@example.com", request.UserEmail)

	// No funds are locked at request time.
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromInt(75)))
}

func TestSettleApproveThenConflict(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(75), models.RoleUser)
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	request, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "upi@bank")
	require.NoError(t, err)

	err = wl.Settle(context.Background(), request.ID, models.SettleActionApprove, "admin")
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalApproved, store.WithdrawalsByID[request.ID].Status)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromInt(15)))

	// Second approve observes the terminal state: exactly one deduction.
	err = wl.Settle(context.Background(), request.ID, models.SettleActionApprove, "admin")
	require.ErrorIs(t, err, models.ErrConflict)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromInt(15)))
}

func TestSettleRejectKeepsFunds(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(75), models.RoleUser)
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	request, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "upi@bank")
	require.NoError(t, err)

	err = wl.Settle(context.Background(), request.ID, models.SettleActionReject, "admin")
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalRejected, store.WithdrawalsByID[request.ID].Status)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromInt(75)))
}

func TestSettleRequiresAdmin(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(75), models.RoleUser)
	store.AddUser("u2", decimal.Zero, models.RoleUser)
	wl := newWithdrawalLogic(store)

	request, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "upi@bank")
	require.NoError(t, err)

	err = wl.Settle(context.Background(), request.ID, models.SettleActionApprove, "u2")
	require.ErrorIs(t, err, models.ErrUnauthorized)
	require.Equal(t, models.WithdrawalPending, store.WithdrawalsByID[request.ID].Status)

	err = wl.Settle(context.Background(), request.ID, models.SettleActionApprove, "ghost")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSettleUnknownAction(t *testing.T) {
	store := memstore.New()
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	err := wl.Settle(context.Background(), uuid.New(), "escalate", "admin")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestSettleMissingWithdrawal(t *testing.T) {
	store := memstore.New()
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	err := wl.Settle(context.Background(), uuid.New(), models.SettleActionApprove, "admin")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSettleApproveRevalidatesBalance(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(75), models.RoleUser)
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	request, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "upi@bank")
	require.NoError(t, err)

	// Balance dropped between request and settlement.
	store.UsersByID["u1"].WalletBalance = decimal.NewFromInt(20)

	err = wl.Settle(context.Background(), request.ID, models.SettleActionApprove, "admin")
	require.ErrorIs(t, err, models.ErrInsufficientBalance)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromInt(20)))

	// The aborted transaction rolls back the status flip: the request stays
	// pending and can be settled once funds return.
	require.Equal(t, models.WithdrawalPending, store.WithdrawalsByID[request.ID].Status)

	store.UsersByID["u1"].WalletBalance = decimal.NewFromInt(80)
	err = wl.Settle(context.Background(), request.ID, models.SettleActionApprove, "admin")
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalApproved, store.WithdrawalsByID[request.ID].Status)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromInt(20)))
}

func TestListWithdrawals(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(200), models.RoleUser)
	store.AddUser("u2", decimal.NewFromInt(200), models.RoleUser)
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	_, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "a")
	require.NoError(t, err)
	_, err = wl.Request(context.Background(), "u2", decimal.NewFromInt(70), "UPI", "b")
	require.NoError(t, err)

	own, err := wl.List(context.Background(), "u1", "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "u1", own[0].UserID)

	pending, err := wl.List(context.Background(), "admin", "")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	_, err = wl.List(context.Background(), "admin", "weird")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestListWithdrawalsOwnStatusFilter(t *testing.T) {
	store := memstore.New()
	store.AddUser("u1", decimal.NewFromInt(200), models.RoleUser)
	store.AddUser("admin", decimal.Zero, models.RoleAdmin)
	wl := newWithdrawalLogic(store)

	first, err := wl.Request(context.Background(), "u1", decimal.NewFromInt(60), "UPI", "a")
	require.NoError(t, err)
	_, err = wl.Request(context.Background(), "u1", decimal.NewFromInt(70), "UPI", "b")
	require.NoError(t, err)
	require.NoError(t, wl.Settle(context.Background(), first.ID, models.SettleActionApprove, "admin"))

	approved, err := wl.List(context.Background(), "u1", models.WithdrawalApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	require.Equal(t, first.ID, approved[0].ID)

	pending, err := wl.List(context.Background(), "u1", models.WithdrawalPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = wl.List(context.Background(), "u1", "weird")
	require.ErrorIs(t, err, models.ErrValidation)
}
