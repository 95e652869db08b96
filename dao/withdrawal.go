package dao

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"readearn-backend/models"
)

// WithdrawalDAO handles withdrawal request storage
type WithdrawalDAO struct {
	db *gorm.DB
}

func NewWithdrawalDAO(db *gorm.DB) *WithdrawalDAO {
	return &WithdrawalDAO{db: db}
}

func (d *WithdrawalDAO) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	if request.Status == "" {
		request.Status = models.WithdrawalPending
	}
	return translateError(d.db.WithContext(ctx).Create(request).Error)
}

func (d *WithdrawalDAO) Get(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	if err := d.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

// MarkSettled flips status pending -> status. The status guard in the WHERE
// clause is the exactly-once transition: a second settlement attempt matches
// zero rows.
func (d *WithdrawalDAO) MarkSettled(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	res := d.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, models.WithdrawalPending).
		Update("status", status)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (d *WithdrawalDAO) ListByUser(ctx context.Context, userID string) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

func (d *WithdrawalDAO) ListByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := d.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}
