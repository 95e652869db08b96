// Package memstore is an in-memory logic.Store used by tests. InTransaction
// snapshots all state on entry and restores it when fn fails, so an aborted
// transaction leaves nothing behind. TxFailures primes InTransaction with
// per-attempt errors to exercise conflict handling; CreditErr fails wallet
// credits mid-transaction.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"readearn-backend/logic"
	"readearn-backend/models"
)

type Store struct {
	mu sync.Mutex

	ArticlesByID    map[uuid.UUID]*models.Article
	UsersByID       map[string]*models.User
	Events          []*models.ViewEvent
	WithdrawalsByID map[uuid.UUID]*models.WithdrawalRequest
	SettingsRow     *models.Settings

	SettingsErr error
	CreditErr   error
	TxFailures  []error
	TxCount     int
}

func New() *Store {
	return &Store{
		ArticlesByID:    make(map[uuid.UUID]*models.Article),
		UsersByID:       make(map[string]*models.User),
		WithdrawalsByID: make(map[uuid.UUID]*models.WithdrawalRequest),
	}
}

func (s *Store) Articles() logic.ArticleStore       { return &articles{s} }
func (s *Store) Users() logic.UserStore             { return &users{s} }
func (s *Store) Views() logic.ViewStore             { return &views{s} }
func (s *Store) Withdrawals() logic.WithdrawalStore { return &withdrawals{s} }
func (s *Store) Settings() logic.SettingsStore      { return &settings{s} }

func (s *Store) InTransaction(ctx context.Context, fn func(logic.Store) error) error {
	s.mu.Lock()
	s.TxCount++
	if len(s.TxFailures) > 0 {
		err := s.TxFailures[0]
		s.TxFailures = s.TxFailures[1:]
		s.mu.Unlock()
		return err
	}
	snap := s.capture()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type snapshot struct {
	articles    map[uuid.UUID]*models.Article
	users       map[string]*models.User
	events      []*models.ViewEvent
	withdrawals map[uuid.UUID]*models.WithdrawalRequest
	settings    *models.Settings
}

// capture clones all state so an aborted transaction can be rolled back.
// Callers hold s.mu. Events are append-only, so copying the slice header
// entries is enough.
func (s *Store) capture() snapshot {
	snap := snapshot{
		articles:    make(map[uuid.UUID]*models.Article, len(s.ArticlesByID)),
		users:       make(map[string]*models.User, len(s.UsersByID)),
		events:      make([]*models.ViewEvent, len(s.Events)),
		withdrawals: make(map[uuid.UUID]*models.WithdrawalRequest, len(s.WithdrawalsByID)),
	}
	for id, article := range s.ArticlesByID {
		copied := *article
		snap.articles[id] = &copied
	}
	for id, user := range s.UsersByID {
		copied := *user
		snap.users[id] = &copied
	}
	copy(snap.events, s.Events)
	for id, request := range s.WithdrawalsByID {
		copied := *request
		snap.withdrawals[id] = &copied
	}
	if s.SettingsRow != nil {
		copied := *s.SettingsRow
		snap.settings = &copied
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.ArticlesByID = snap.articles
	s.UsersByID = snap.users
	s.Events = snap.events
	s.WithdrawalsByID = snap.withdrawals
	s.SettingsRow = snap.settings
}

// AddArticle seeds an article and returns its id.
func (s *Store) AddArticle(viewCount uint64, active bool) uuid.UUID {
	id := uuid.New()
	s.ArticlesByID[id] = &models.Article{
		ID:     id,
		Title:  fmt.Sprintf("article-%s", id),
		Views:  viewCount,
		Active: active,
	}
	return id
}

// AddUser seeds a user with the given balance and role.
func (s *Store) AddUser(id string, balance decimal.Decimal, role string) {
	s.UsersByID[id] = &models.User{
		ID:            id,
		Email:         id + "@example.com",
		Role:          role,
		WalletBalance: balance,
	}
}

type articles struct{ s *Store }

func (a *articles) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	article, ok := a.s.ArticlesByID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *article
	return &copied, nil
}

func (a *articles) ListActive(ctx context.Context) ([]models.Article, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []models.Article
	for _, article := range a.s.ArticlesByID {
		if article.Active {
			out = append(out, *article)
		}
	}
	return out, nil
}

func (a *articles) IncrementViews(ctx context.Context, id uuid.UUID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	article, ok := a.s.ArticlesByID[id]
	if !ok {
		return models.ErrNotFound
	}
	article.Views++
	return nil
}

type users struct{ s *Store }

func (u *users) Get(ctx context.Context, id string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.UsersByID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (u *users) Create(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.UsersByID[user.ID]; ok {
		return models.ErrConflict
	}
	copied := *user
	u.s.UsersByID[user.ID] = &copied
	return nil
}

func (u *users) SetRole(ctx context.Context, id, role string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.UsersByID[id]
	if !ok {
		return models.ErrNotFound
	}
	user.Role = role
	return nil
}

func (u *users) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.CreditErr != nil {
		return u.s.CreditErr
	}
	user, ok := u.s.UsersByID[id]
	if !ok {
		return models.ErrNotFound
	}
	user.WalletBalance = user.WalletBalance.Add(amount)
	user.TotalViews++
	return nil
}

func (u *users) Debit(ctx context.Context, id string, amount decimal.Decimal) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.UsersByID[id]
	if !ok {
		return models.ErrNotFound
	}
	if user.WalletBalance.LessThan(amount) {
		return models.ErrInsufficientBalance
	}
	user.WalletBalance = user.WalletBalance.Sub(amount)
	return nil
}

type views struct{ s *Store }

func (v *views) Create(ctx context.Context, event *models.ViewEvent) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	copied := *event
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	v.s.Events = append(v.s.Events, &copied)
	return nil
}

func (v *views) AnyByIPSince(ctx context.Context, articleID uuid.UUID, ip string, since time.Time) (bool, error) {
	return v.anyMatch(articleID, since, func(e *models.ViewEvent) bool {
		return e.IP == ip
	})
}

func (v *views) AnyByFingerprintSince(ctx context.Context, articleID uuid.UUID, fingerprint string, since time.Time) (bool, error) {
	return v.anyMatch(articleID, since, func(e *models.ViewEvent) bool {
		return e.Fingerprint != nil && *e.Fingerprint == fingerprint
	})
}

func (v *views) AnyByBeneficiarySince(ctx context.Context, articleID uuid.UUID, beneficiaryID string, since time.Time) (bool, error) {
	return v.anyMatch(articleID, since, func(e *models.ViewEvent) bool {
		return e.BeneficiaryID != nil && *e.BeneficiaryID == beneficiaryID
	})
}

func (v *views) anyMatch(articleID uuid.UUID, since time.Time, match func(*models.ViewEvent) bool) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, event := range v.s.Events {
		if event.ArticleID == articleID && event.CreatedAt.After(since) && match(event) {
			return true, nil
		}
	}
	return false, nil
}

type withdrawals struct{ s *Store }

func (w *withdrawals) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	copied := *request
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	request.ID = copied.ID
	w.s.WithdrawalsByID[copied.ID] = &copied
	return nil
}

func (w *withdrawals) Get(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	request, ok := w.s.WithdrawalsByID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (w *withdrawals) MarkSettled(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	request, ok := w.s.WithdrawalsByID[id]
	if !ok || request.Status != models.WithdrawalPending {
		return false, nil
	}
	request.Status = status
	return true, nil
}

func (w *withdrawals) ListByUser(ctx context.Context, userID string) ([]models.WithdrawalRequest, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	var out []models.WithdrawalRequest
	for _, request := range w.s.WithdrawalsByID {
		if request.UserID == userID {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (w *withdrawals) ListByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	var out []models.WithdrawalRequest
	for _, request := range w.s.WithdrawalsByID {
		if request.Status == status {
			out = append(out, *request)
		}
	}
	return out, nil
}

type settings struct{ s *Store }

func (st *settings) Get(ctx context.Context) (*models.Settings, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.SettingsErr != nil {
		return nil, st.s.SettingsErr
	}
	if st.s.SettingsRow == nil {
		return nil, models.ErrNotFound
	}
	copied := *st.s.SettingsRow
	return &copied, nil
}

func (st *settings) Save(ctx context.Context, row *models.Settings) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	copied := *row
	copied.ID = models.SettingsID
	st.s.SettingsRow = &copied
	return nil
}
