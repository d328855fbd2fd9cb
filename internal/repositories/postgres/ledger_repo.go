package postgres

import (
	"context"
	"errors"

	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore is the persistence boundary of the token ledger. Atomic runs
// fn against a store bound to one database transaction: every read and
// write inside fn commits or rolls back as a unit, and the ForUpdate
// getters take row locks so concurrent operations on the same wallet or
// session serialize instead of double-applying.
type LedgerStore interface {
	Atomic(ctx context.Context, fn func(LedgerStore) error) error

	GetWalletByUserID(ctx context.Context, userID uint) (*models.TokenWallet, error)
	GetWalletByUserIDForUpdate(ctx context.Context, userID uint) (*models.TokenWallet, error)
	GetWalletByIDForUpdate(ctx context.Context, walletID uint) (*models.TokenWallet, error)
	CreateWallet(ctx context.Context, w *models.TokenWallet) error
	UpdateWalletBalance(ctx context.Context, walletID uint, newBalance int) error

	CreateTransaction(ctx context.Context, t *models.TokenTransaction) error
	UpdateTransactionStatus(ctx context.Context, transactionID uint, status models.TransactionStatus) error
	ListUserTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.TokenTransaction, error)
	ListSessionTransactions(ctx context.Context, sessionID string) ([]models.TokenTransaction, error)
	HasCompletedTransaction(ctx context.Context, sessionID string, typ models.TransactionType) (bool, error)
	SumCompleted(ctx context.Context, walletID uint, types ...models.TransactionType) (int, error)
	TotalBalance(ctx context.Context) (int64, error)
}

type ledgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &ledgerStore{db: db}
}

func (s *ledgerStore) Atomic(ctx context.Context, fn func(LedgerStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerStore{db: tx})
	})
}

func (s *ledgerStore) GetWalletByUserID(ctx context.Context, userID uint) (*models.TokenWallet, error) {
	return s.walletByUserID(ctx, userID, false)
}

func (s *ledgerStore) GetWalletByUserIDForUpdate(ctx context.Context, userID uint) (*models.TokenWallet, error) {
	return s.walletByUserID(ctx, userID, true)
}

func (s *ledgerStore) walletByUserID(ctx context.Context, userID uint, forUpdate bool) (*models.TokenWallet, error) {
	q := s.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var w models.TokenWallet
	err := q.Where("user_id = ?", userID).Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &w, err
}

func (s *ledgerStore) GetWalletByIDForUpdate(ctx context.Context, walletID uint) (*models.TokenWallet, error) {
	var w models.TokenWallet
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", walletID).
		Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &w, err
}

func (s *ledgerStore) CreateWallet(ctx context.Context, w *models.TokenWallet) error {
	return s.db.WithContext(ctx).Create(w).Error
}

// UpdateWalletBalance also bumps updated_at through gorm's auto-update.
func (s *ledgerStore) UpdateWalletBalance(ctx context.Context, walletID uint, newBalance int) error {
	res := s.db.WithContext(ctx).
		Model(&models.TokenWallet{}).
		Where("id = ?", walletID).
		Update("balance", newBalance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *ledgerStore) CreateTransaction(ctx context.Context, t *models.TokenTransaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *ledgerStore) UpdateTransactionStatus(ctx context.Context, transactionID uint, status models.TransactionStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.TokenTransaction{}).
		Where("id = ?", transactionID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *ledgerStore) ListUserTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.TokenTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.TokenTransaction
	err := s.db.WithContext(ctx).
		Joins("JOIN token_wallets ON token_wallets.id = token_transactions.wallet_id").
		Where("token_wallets.user_id = ?", userID).
		Order("token_transactions.timestamp DESC, token_transactions.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (s *ledgerStore) ListSessionTransactions(ctx context.Context, sessionID string) ([]models.TokenTransaction, error) {
	var rows []models.TokenTransaction
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (s *ledgerStore) HasCompletedTransaction(ctx context.Context, sessionID string, typ models.TransactionType) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TokenTransaction{}).
		Where("session_id = ? AND type = ? AND status = ?", sessionID, typ, models.TransactionCompleted).
		Count(&count).Error
	return count > 0, err
}

func (s *ledgerStore) SumCompleted(ctx context.Context, walletID uint, types ...models.TransactionType) (int, error) {
	var sum *int
	err := s.db.WithContext(ctx).
		Model(&models.TokenTransaction{}).
		Select("SUM(amount)").
		Where("wallet_id = ? AND type IN ? AND status = ?", walletID, types, models.TransactionCompleted).
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (s *ledgerStore) TotalBalance(ctx context.Context) (int64, error) {
	var total *int64
	err := s.db.WithContext(ctx).
		Model(&models.TokenWallet{}).
		Select("SUM(balance)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
