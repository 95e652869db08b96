package dao

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"readearn-backend/models"
)

// UserDAO handles user-related database operations
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (d *UserDAO) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (d *UserDAO) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return translateError(d.db.WithContext(ctx).Create(user).Error)
}

func (d *UserDAO) SetRole(ctx context.Context, id, role string) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Credit adds amount to the wallet and counts the view in one atomic update.
func (d *UserDAO) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"wallet_balance": gorm.Expr("wallet_balance + ?", amount),
			"total_views":    gorm.Expr("total_views + 1"),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Debit subtracts amount from the wallet; the balance guard keeps the wallet
// non-negative under concurrent settlements.
func (d *UserDAO) Debit(ctx context.Context, id string, amount decimal.Decimal) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND wallet_balance >= ?", id, amount).
		Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := d.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return translateError(err)
		}
		if count == 0 {
			return models.ErrNotFound
		}
		return models.ErrInsufficientBalance
	}
	return nil
}
