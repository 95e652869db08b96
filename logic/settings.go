package logic

import (
	"context"
	"errors"
	"log/slog"

	"readearn-backend/models"
)

// SettingsLogic resolves the economic configuration into an immutable
// snapshot that operations receive explicitly.
type SettingsLogic struct {
	store    Store
	defaults models.SettingsSnapshot
	log      *slog.Logger
}

func NewSettingsLogic(store Store, defaults models.SettingsSnapshot, log *slog.Logger) *SettingsLogic {
	return &SettingsLogic{
		store:    store,
		defaults: defaults,
		log:      log,
	}
}

// Snapshot returns the current settings overlaid onto the defaults. A missing
// row or a read failure degrades to the defaults; reward decisions never fail
// because the settings document is unavailable.
func (l *SettingsLogic) Snapshot(ctx context.Context) models.SettingsSnapshot {
	settings, err := l.store.Settings().Get(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			l.log.Warn("settings read failed, using defaults", "error", err)
		}
		return l.defaults
	}
	return settings.Resolve(l.defaults)
}

// Update writes the global settings row. Only admins may call it.
func (l *SettingsLogic) Update(ctx context.Context, actingAdminID string, settings *models.Settings) error {
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
	return l.store.Settings().Save(ctx, settings)
}
