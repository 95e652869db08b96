package logic_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"readearn-backend/logic"
	"readearn-backend/models"
	"readearn-backend/pkg/memstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newViewLogic(store *memstore.Store, clock clockwork.Clock) *logic.ViewLogic {
	log := discardLogger()
	settings := logic.NewSettingsLogic(store, models.DefaultSnapshot(), log)
	return logic.NewViewLogic(store, settings, clock, log)
}

func TestRecordViewCreditsSharedView(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(10, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	clock := clockwork.NewFakeClock()
	vl := newViewLogic(store, clock)

	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
		Kind:          models.ViewKindShared,
	})
	require.NoError(t, err)
	require.False(t, receipt.Duplicate)
	require.True(t, receipt.Credited.Equal(decimal.NewFromFloat(0.05)),
		"credited %s", receipt.Credited)

	require.Equal(t, uint64(11), store.ArticlesByID[articleID].Views)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromFloat(0.05)))
	require.Equal(t, uint64(1), store.UsersByID["u1"].TotalViews)
	require.Len(t, store.Events, 1)
	require.Equal(t, models.ViewKindShared, store.Events[0].ViewKind)
}

func TestRecordViewSelfRate(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(10, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	vl := newViewLogic(store, clockwork.NewFakeClock())

	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
		Kind:          models.ViewKindSelf,
	})
	require.NoError(t, err)
	require.True(t, receipt.Credited.Equal(decimal.NewFromFloat(0.01)))
	require.Equal(t, uint64(11), store.ArticlesByID[articleID].Views)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromFloat(0.01)))
}

func TestRecordViewDuplicateByIPIsSilent(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(10, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	clock := clockwork.NewFakeClock()
	vl := newViewLogic(store, clock)

	sub := logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
		Kind:          models.ViewKindSelf,
	}

	first, err := vl.RecordView(context.Background(), sub)
	require.NoError(t, err)
	require.True(t, first.Credited.Equal(decimal.NewFromFloat(0.01)))
	require.Equal(t, uint64(11), store.ArticlesByID[articleID].Views)

	// Same ip and article inside the cooldown: success with zero credit,
	// nothing written.
	second, err := vl.RecordView(context.Background(), sub)
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.True(t, second.Credited.IsZero())
	require.Equal(t, uint64(11), store.ArticlesByID[articleID].Views)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromFloat(0.01)))
	require.Len(t, store.Events, 1)
}

func TestRecordViewDuplicateByFingerprint(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	vl := newViewLogic(store, clockwork.NewFakeClock())

	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:   articleID,
		IP:          "1.2.3.4",
		Fingerprint: "fp-1",
	})
	require.NoError(t, err)

	// Different ip, same device.
	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:   articleID,
		IP:          "5.6.7.8",
		Fingerprint: "fp-1",
	})
	require.NoError(t, err)
	require.True(t, receipt.Duplicate)
	require.Equal(t, uint64(1), store.ArticlesByID[articleID].Views)
}

func TestRecordViewDuplicateByBeneficiary(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	vl := newViewLogic(store, clockwork.NewFakeClock())

	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
	})
	require.NoError(t, err)

	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "9.9.9.9",
	})
	require.NoError(t, err)
	require.True(t, receipt.Duplicate)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromFloat(0.05)))
}

func TestRecordViewCooldownExpiry(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	clock := clockwork.NewFakeClock()
	vl := newViewLogic(store, clock)

	sub := logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
	}
	_, err := vl.RecordView(context.Background(), sub)
	require.NoError(t, err)

	clock.Advance(240*time.Minute + time.Second)

	receipt, err := vl.RecordView(context.Background(), sub)
	require.NoError(t, err)
	require.False(t, receipt.Duplicate)
	require.True(t, store.UsersByID["u1"].WalletBalance.Equal(decimal.NewFromFloat(0.10)))
	require.Len(t, store.Events, 2)
}

func TestRecordViewAnonymous(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(3, true)
	vl := newViewLogic(store, clockwork.NewFakeClock())

	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID: articleID,
		IP:        "1.2.3.4",
	})
	require.NoError(t, err)
	require.True(t, receipt.Credited.IsZero())
	require.Equal(t, uint64(4), store.ArticlesByID[articleID].Views)
	require.Len(t, store.Events, 1)
	require.Nil(t, store.Events[0].BeneficiaryID)
}

func TestRecordViewMissingBeneficiaryDegrades(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	vl := newViewLogic(store, clockwork.NewFakeClock())

	// Stale referral link: the beneficiary account no longer exists. The
	// view is still recorded, nobody is paid.
	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "gone",
		IP:            "1.2.3.4",
	})
	require.NoError(t, err)
	require.True(t, receipt.Credited.IsZero())
	require.Equal(t, uint64(1), store.ArticlesByID[articleID].Views)
	require.Len(t, store.Events, 1)
	require.NotNil(t, store.Events[0].BeneficiaryID)
	require.Equal(t, "gone", *store.Events[0].BeneficiaryID)
}

func TestRecordViewArticleNotFound(t *testing.T) {
	store := memstore.New()
	vl := newViewLogic(store, clockwork.NewFakeClock())

	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID: uuid.New(),
		IP:        "1.2.3.4",
	})
	require.ErrorIs(t, err, models.ErrNotFound)
	require.Empty(t, store.Events)
}

func TestRecordViewInactiveArticle(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(5, false)
	vl := newViewLogic(store, clockwork.NewFakeClock())

	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID: articleID,
		IP:        "1.2.3.4",
	})
	require.ErrorIs(t, err, models.ErrNotFound)
	require.Equal(t, uint64(5), store.ArticlesByID[articleID].Views)
	require.Empty(t, store.Events)
}

func TestRecordViewMissingArticleID(t *testing.T) {
	store := memstore.New()
	vl := newViewLogic(store, clockwork.NewFakeClock())

	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{IP: "1.2.3.4"})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestRecordViewUsesStoredSettings(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	store.SettingsRow = &models.Settings{
		ID:                 models.SettingsID,
		EarningPerView:     decimal.NewFromFloat(0.25),
		EarningPerSelfView: decimal.NewFromFloat(0.02),
		CooldownMinutes:    1,
	}
	clock := clockwork.NewFakeClock()
	vl := newViewLogic(store, clock)

	sub := logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
		Kind:          models.ViewKindShared,
	}
	receipt, err := vl.RecordView(context.Background(), sub)
	require.NoError(t, err)
	require.True(t, receipt.Credited.Equal(decimal.NewFromFloat(0.25)))

	// The stored one-minute cooldown governs, not the default four hours.
	clock.Advance(61 * time.Second)
	receipt, err = vl.RecordView(context.Background(), sub)
	require.NoError(t, err)
	require.False(t, receipt.Duplicate)
}

func TestRecordViewCreditFailureLeavesNoTrace(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(7, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	store.CreditErr = errors.New("credit write failed")
	vl := newViewLogic(store, clockwork.NewFakeClock())

	// The wallet credit fails after the event and counter writes: the whole
	// transaction unwinds, nothing is recorded.
	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
	})
	require.Error(t, err)
	require.Empty(t, store.Events)
	require.Equal(t, uint64(7), store.ArticlesByID[articleID].Views)
	require.True(t, store.UsersByID["u1"].WalletBalance.IsZero())
	require.Equal(t, uint64(0), store.UsersByID["u1"].TotalViews)
}

func TestRecordViewRetriesOnTxConflict(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	store.AddUser("u1", decimal.Zero, models.RoleUser)
	store.TxFailures = []error{models.ErrTxConflict}
	vl := newViewLogic(store, clockwork.NewFakeClock())

	receipt, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: "u1",
		IP:            "1.2.3.4",
	})
	require.NoError(t, err)
	require.True(t, receipt.Credited.Equal(decimal.NewFromFloat(0.05)))
	require.Equal(t, 2, store.TxCount)
	require.Len(t, store.Events, 1)
}

func TestRecordViewConflictRetriesExhausted(t *testing.T) {
	store := memstore.New()
	articleID := store.AddArticle(0, true)
	store.TxFailures = []error{models.ErrTxConflict, models.ErrTxConflict, models.ErrTxConflict}
	vl := newViewLogic(store, clockwork.NewFakeClock())

	_, err := vl.RecordView(context.Background(), logic.ViewSubmission{
		ArticleID: articleID,
		IP:        "1.2.3.4",
	})
	require.ErrorIs(t, err, models.ErrTxConflict)
	require.Equal(t, 3, store.TxCount)
	require.Empty(t, store.Events)
}
