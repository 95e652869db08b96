package dao

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"readearn-backend/logic"
	"readearn-backend/models"
)

// Store is the gorm-backed implementation of logic.Store. A Store built from
// a transaction handle scopes all DAOs to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Articles() logic.ArticleStore       { return NewArticleDAO(s.db) }
func (s *Store) Users() logic.UserStore             { return NewUserDAO(s.db) }
func (s *Store) Views() logic.ViewStore             { return NewViewEventDAO(s.db) }
func (s *Store) Withdrawals() logic.WithdrawalStore { return NewWithdrawalDAO(s.db) }
func (s *Store) Settings() logic.SettingsStore      { return NewSettingsDAO(s.db) }

// InTransaction runs fn against a Store bound to one database transaction.
func (s *Store) InTransaction(ctx context.Context, fn func(logic.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return translateError(err)
}

// translateError maps storage failures onto the models sentinel taxonomy.
// Already-translated errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		models.ErrValidation,
		models.ErrNotFound,
		models.ErrConflict,
		models.ErrTxConflict,
		models.ErrUnauthorized,
		models.ErrInsufficientBalance,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return models.ErrTxConflict
		case "23505": // unique_violation
			return models.ErrConflict
		}
	}
	return err
}
