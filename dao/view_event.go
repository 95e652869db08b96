package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"readearn-backend/models"
)

// ViewEventDAO handles the append-only view ledger
type ViewEventDAO struct {
	db *gorm.DB
}

func NewViewEventDAO(db *gorm.DB) *ViewEventDAO {
	return &ViewEventDAO{db: db}
}

func (d *ViewEventDAO) Create(ctx context.Context, event *models.ViewEvent) error {
	return translateError(d.db.WithContext(ctx).Create(event).Error)
}

func (d *ViewEventDAO) AnyByIPSince(ctx context.Context, articleID uuid.UUID, ip string, since time.Time) (bool, error) {
	return d.anyMatch(ctx, "article_id = ? AND ip = ? AND created_at > ?", articleID, ip, since)
}

func (d *ViewEventDAO) AnyByFingerprintSince(ctx context.Context, articleID uuid.UUID, fingerprint string, since time.Time) (bool, error) {
	return d.anyMatch(ctx, "article_id = ? AND fingerprint = ? AND created_at > ?", articleID, fingerprint, since)
}

func (d *ViewEventDAO) AnyByBeneficiarySince(ctx context.Context, articleID uuid.UUID, beneficiaryID string, since time.Time) (bool, error) {
	return d.anyMatch(ctx, "article_id = ? AND beneficiary_id = ? AND created_at > ?", articleID, beneficiaryID, since)
}

func (d *ViewEventDAO) anyMatch(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.ViewEvent{}).
		Where(query, args...).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}
