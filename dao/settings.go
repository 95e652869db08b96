package dao

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"readearn-backend/models"
)

// SettingsDAO handles the global settings row
type SettingsDAO struct {
	db *gorm.DB
}

func NewSettingsDAO(db *gorm.DB) *SettingsDAO {
	return &SettingsDAO{db: db}
}

func (d *SettingsDAO) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := d.db.WithContext(ctx).First(&settings, "id = ?", models.SettingsID).Error; err != nil {
		return nil, translateError(err)
	}
	return &settings, nil
}

func (d *SettingsDAO) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
	return translateError(err)
}
