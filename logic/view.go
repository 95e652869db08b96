package logic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"readearn-backend/models"
)

// maxCreditAttempts bounds retries of the crediting transaction on storage
// conflicts. Retries are safe: duplicates never reach the transaction.
const maxCreditAttempts = 3

// ViewLogic is the reward crediting engine plus its duplicate detector.
type ViewLogic struct {
	store    Store
	settings *SettingsLogic
	clock    clockwork.Clock
	log      *slog.Logger
}

func NewViewLogic(store Store, settings *SettingsLogic, clock clockwork.Clock, log *slog.Logger) *ViewLogic {
	return &ViewLogic{
		store:    store,
		settings: settings,
		clock:    clock,
		log:      log,
	}
}

// ViewSubmission is one view claim from a client. BeneficiaryID names the
// wallet to credit (the referrer, or the reader on a self view) and may be
// empty for anonymous views.
type ViewSubmission struct {
	ArticleID     uuid.UUID
	BeneficiaryID string
	IP            string
	Fingerprint   string
	Kind          string
}

// ViewReceipt reports the outcome of a view claim. Duplicate receipts carry
// zero credit but are still successes: clients cannot tell "suppressed" from
// "counted".
type ViewReceipt struct {
	Credited  decimal.Decimal
	Duplicate bool
}

// RecordView applies the whole crediting decision: settings snapshot,
// duplicate check, then one atomic transaction appending the ledger event,
// bumping the article counter and crediting the beneficiary wallet. A missing
// beneficiary does not block the view; it is recorded with nobody paid.
func (l *ViewLogic) RecordView(ctx context.Context, sub ViewSubmission) (ViewReceipt, error) {
	if sub.ArticleID == uuid.Nil {
		return ViewReceipt{Credited: decimal.Zero}, fmt.Errorf("%w: articleId is required", models.ErrValidation)
	}
	if sub.IP == "" {
		sub.IP = "unknown"
	}
	kind := models.NormalizeViewKind(sub.Kind)

	snapshot := l.settings.Snapshot(ctx)

	dup, err := l.isDuplicate(ctx, sub, snapshot.Cooldown)
	if err != nil {
		return ViewReceipt{Credited: decimal.Zero}, err
	}
	if dup {
		return ViewReceipt{Credited: decimal.Zero, Duplicate: true}, nil
	}

	amount := snapshot.EarningPerView
	if kind == models.ViewKindSelf {
		amount = snapshot.EarningPerSelfView
	}

	var credited decimal.Decimal
	for attempt := 1; ; attempt++ {
		credited = decimal.Zero
		err = l.store.InTransaction(ctx, func(tx Store) error {
			article, err := tx.Articles().Get(ctx, sub.ArticleID)
			if err != nil {
				return err
			}
			if !article.Active {
				// Indistinguishable from missing, so probing cannot map
				// deactivated articles.
				return fmt.Errorf("%w: article", models.ErrNotFound)
			}

			var beneficiary *models.User
			if sub.BeneficiaryID != "" {
				beneficiary, err = tx.Users().Get(ctx, sub.BeneficiaryID)
				if err != nil {
					if !errors.Is(err, models.ErrNotFound) {
						return err
					}
					// Stale or forged referral link: log the view, pay nobody.
					l.log.Debug("beneficiary not found, recording uncredited view",
						"beneficiary", sub.BeneficiaryID, "article", sub.ArticleID)
					beneficiary = nil
				}
			}

			event := &models.ViewEvent{
				ArticleID: sub.ArticleID,
				IP:        sub.IP,
				ViewKind:  kind,
				CreatedAt: l.clock.Now(),
			}
			if sub.BeneficiaryID != "" {
				event.BeneficiaryID = &sub.BeneficiaryID
			}
			if sub.Fingerprint != "" {
				event.Fingerprint = &sub.Fingerprint
			}
			if err := tx.Views().Create(ctx, event); err != nil {
				return err
			}
			if err := tx.Articles().IncrementViews(ctx, sub.ArticleID); err != nil {
				return err
			}
			if beneficiary != nil && amount.IsPositive() {
				if err := tx.Users().Credit(ctx, beneficiary.ID, amount); err != nil {
					return err
				}
				credited = amount
			}
			return nil
		})
		if err == nil || !errors.Is(err, models.ErrTxConflict) || attempt >= maxCreditAttempts {
			break
		}
		l.log.Debug("view credit transaction conflict, retrying",
			"article", sub.ArticleID, "attempt", attempt)
	}
	if err != nil {
		return ViewReceipt{Credited: decimal.Zero}, err
	}
	return ViewReceipt{Credited: credited}, nil
}

// isDuplicate reports whether any accepted view for the article matches the
// submission's ip, fingerprint or beneficiary inside the cooldown window.
// The keyed lookups run in parallel; any hit suppresses the credit. With no
// optional keys present this degrades to an IP-only check.
func (l *ViewLogic) isDuplicate(ctx context.Context, sub ViewSubmission, cooldown time.Duration) (bool, error) {
	cutoff := l.clock.Now().Add(-cooldown)
	views := l.store.Views()

	var byIP, byFingerprint, byBeneficiary bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byIP, err = views.AnyByIPSince(gctx, sub.ArticleID, sub.IP, cutoff)
		return err
	})
	if sub.Fingerprint != "" {
		g.Go(func() error {
			var err error
			byFingerprint, err = views.AnyByFingerprintSince(gctx, sub.ArticleID, sub.Fingerprint, cutoff)
			return err
		})
	}
	if sub.BeneficiaryID != "" {
		g.Go(func() error {
			var err error
			byBeneficiary, err = views.AnyByBeneficiarySince(gctx, sub.ArticleID, sub.BeneficiaryID, cutoff)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return byIP || byFingerprint || byBeneficiary, nil
}
