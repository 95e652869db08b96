package logic

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"readearn-backend/models"
)

// UserLogic handles user-related business logic
type UserLogic struct {
	store         Store
	promoteSecret string
	log           *slog.Logger
}

func NewUserLogic(store Store, promoteSecret string, log *slog.Logger) *UserLogic {
	return &UserLogic{
		store:         store,
		promoteSecret: promoteSecret,
		log:           log,
	}
}

func (l *UserLogic) Get(ctx context.Context, uid string) (*models.User, error) {
	return l.store.Users().Get(ctx, uid)
}

// EnsureUser returns the user for the identity-provider uid, creating the
// record on first contact.
func (l *UserLogic) EnsureUser(ctx context.Context, uid, email string) (*models.User, error) {
	user, err := l.store.Users().Get(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:    uid,
		Email: email,
		Role:  models.RoleUser,
	}
	if err := l.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a create race; the row exists now.
			return l.store.Users().Get(ctx, uid)
		}
		return nil, err
	}
	return user, nil
}

// PromoteToAdmin grants the admin role when the shared promote secret
// matches.
func (l *UserLogic) PromoteToAdmin(ctx context.Context, uid, secret string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", models.ErrValidation)
	}
	if l.promoteSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(l.promoteSecret)) != 1 {
		return fmt.Errorf("%w: invalid secret", models.ErrUnauthorized)
	}
	if err := l.store.Users().SetRole(ctx, uid, models.RoleAdmin); err != nil {
		return err
	}
	l.log.Info("user promoted to admin", "uid", uid)
	return nil
}
