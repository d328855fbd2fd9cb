package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillswap/backend/config"
	"github.com/skillswap/backend/internal/models"
	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
	"github.com/skillswap/backend/internal/utils"
)

// TokenOperationResult reports one completed ledger mutation.
type TokenOperationResult struct {
	TransactionID   uint      `json:"transaction_id"`
	Amount          int       `json:"amount"`
	PreviousBalance int       `json:"previous_balance"`
	NewBalance      int       `json:"new_balance"`
	SessionID       string    `json:"session_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// TransactionEntry is the display shape of a ledger row. Type collapses to
// CREDIT/DEBIT/INITIAL_ALLOCATION and Amount is absolute; clients decide
// the sign from the type.
type TransactionEntry struct {
	TransactionID uint      `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        int       `json:"amount"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	SessionID     string    `json:"session_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type BookingEligibility struct {
	CanBook         bool `json:"can_book"`
	CurrentBalance  int  `json:"current_balance"`
	RequiredBalance int  `json:"required_balance"`
	SessionCost     int  `json:"session_cost"`
	Deficit         int  `json:"deficit"`
}

type TokenStatistics struct {
	TotalEarned    int `json:"total_earned"`
	TotalSpent     int `json:"total_spent"`
	CurrentBalance int `json:"current_balance"`
}

type TokenService interface {
	InitializeWallet(ctx context.Context, userID uint) (*models.TokenWallet, error)
	GetBalance(ctx context.Context, userID uint) (int, error)
	Spend(ctx context.Context, userID uint, sessionID string, amount int) (*TokenOperationResult, error)
	Earn(ctx context.Context, userID uint, sessionID string, amount int) (*TokenOperationResult, error)
	Refund(ctx context.Context, sessionID, reason string) (*TokenOperationResult, error)
	RefundForUser(ctx context.Context, userID uint, sessionID, reason string) (*TokenOperationResult, error)
	TransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]TransactionEntry, error)
	CanBook(ctx context.Context, userID uint) (*BookingEligibility, error)
	UserStatistics(ctx context.Context, userID uint) (*TokenStatistics, error)
	TokensInCirculation(ctx context.Context) (int64, error)
}

type tokenService struct {
	ledger pgrepo.LedgerStore
	policy config.TokenPolicy
}

func NewTokenService(ledger pgrepo.LedgerStore, policy config.TokenPolicy) TokenService {
	return &tokenService{ledger: ledger, policy: policy}
}

// InitializeWallet creates a wallet with the initial allocation, recorded
// as a completed "initial" transaction. Called once at registration.
func (s *tokenService) InitializeWallet(ctx context.Context, userID uint) (*models.TokenWallet, error) {
	const op = "TokenService.InitializeWallet"

	if userID == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if existing, err := s.ledger.GetWalletByUserID(ctx, userID); err == nil && existing != nil {
		return nil, utils.E(utils.CodeConflict, op, "wallet already exists", nil)
	} else if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check wallet", err)
	}

	var wallet *models.TokenWallet
	err := s.ledger.Atomic(ctx, func(tx pgrepo.LedgerStore) error {
		w := &models.TokenWallet{UserID: userID, Balance: s.policy.InitialAllocation}
		if err := tx.CreateWallet(ctx, w); err != nil {
			return err
		}
		grant := &models.TokenTransaction{
			WalletID:    w.ID,
			Amount:      s.policy.InitialAllocation,
			Type:        models.TransactionInitial,
			Status:      models.TransactionCompleted,
			Description: "Initial token allocation",
		}
		if err := tx.CreateTransaction(ctx, grant); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, s.wrap(op, "failed to initialize wallet", err)
	}
	return wallet, nil
}

func (s *tokenService) GetBalance(ctx context.Context, userID uint) (int, error) {
	const op = "TokenService.GetBalance"

	wallet, err := s.ledger.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return 0, utils.E(utils.CodeNotFound, op, "wallet not found", err)
		}
		return 0, utils.E(utils.CodeInternal, op, "failed to get wallet", err)
	}
	return wallet.Balance, nil
}

// Spend debits the learner's wallet for a session booking. An amount of 0
// falls back to the policy session cost. The duplicate guard is keyed by
// (session, spend): the second spend for a session is rejected, not retried.
func (s *tokenService) Spend(ctx context.Context, userID uint, sessionID string, amount int) (*TokenOperationResult, error) {
	const op = "TokenService.Spend"

	if userID == 0 || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if amount <= 0 {
		amount = s.policy.SessionCost
	}

	var result *TokenOperationResult
	err := s.ledger.Atomic(ctx, func(tx pgrepo.LedgerStore) error {
		wallet, err := tx.GetWalletByUserIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "wallet not found", err)
			}
			return err
		}
		if wallet.Balance < amount {
			return utils.E(utils.CodeInvalidArgument, op,
				fmt.Sprintf("insufficient balance: required %d, available %d", amount, wallet.Balance), nil)
		}
		dup, err := tx.HasCompletedTransaction(ctx, sessionID, models.TransactionSpend)
		if err != nil {
			return err
		}
		if dup {
			return utils.E(utils.CodeConflict, op, "tokens already deducted for this session", nil)
		}

		r, err := s.apply(ctx, tx, wallet, -amount, models.TransactionSpend, sessionID,
			"Session booking - session "+sessionID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, s.wrap(op, "token spending failed", err)
	}
	return result, nil
}

// Earn credits the mentor's wallet after session completion. An amount of
// 0 falls back to the policy session reward.
func (s *tokenService) Earn(ctx context.Context, userID uint, sessionID string, amount int) (*TokenOperationResult, error) {
	const op = "TokenService.Earn"

	if userID == 0 || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if amount <= 0 {
		amount = s.policy.SessionReward
	}

	var result *TokenOperationResult
	err := s.ledger.Atomic(ctx, func(tx pgrepo.LedgerStore) error {
		wallet, err := tx.GetWalletByUserIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "wallet not found", err)
			}
			return err
		}
		dup, err := tx.HasCompletedTransaction(ctx, sessionID, models.TransactionEarn)
		if err != nil {
			return err
		}
		if dup {
			return utils.E(utils.CodeConflict, op, "tokens already awarded for this session", nil)
		}

		r, err := s.apply(ctx, tx, wallet, amount, models.TransactionEarn, sessionID,
			"Session completion reward - session "+sessionID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, s.wrap(op, "token earning failed", err)
	}
	return result, nil
}

// Refund credits back the exact amount of the session's completed spend to
// the wallet that was debited. The original spend row is never mutated; a
// session can be refunded at most once.
func (s *tokenService) Refund(ctx context.Context, sessionID, reason string) (*TokenOperationResult, error) {
	const op = "TokenService.Refund"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if reason == "" {
		reason = "Session cancelled"
	}

	var result *TokenOperationResult
	err := s.ledger.Atomic(ctx, func(tx pgrepo.LedgerStore) error {
		spend, err := s.findCompletedSpend(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		wallet, err := tx.GetWalletByIDForUpdate(ctx, spend.WalletID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "wallet not found for refund", err)
			}
			return err
		}

		// Checked under the wallet lock, like the spend/earn guards, so
		// two concurrent refunds for the same session serialize and the
		// second one observes the first's committed row.
		refunded, err := tx.HasCompletedTransaction(ctx, sessionID, models.TransactionRefund)
		if err != nil {
			return err
		}
		if refunded {
			return utils.E(utils.CodeConflict, op, "session already refunded", nil)
		}

		amount := spend.Amount
		if amount < 0 {
			amount = -amount
		}
		r, err := s.apply(ctx, tx, wallet, amount, models.TransactionRefund, sessionID, "Refund: "+reason)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, s.wrap(op, "refund failed", err)
	}
	return result, nil
}

// RefundForUser is the session-lifecycle entry point: it additionally
// verifies the spend being refunded belongs to the given user's wallet.
func (s *tokenService) RefundForUser(ctx context.Context, userID uint, sessionID, reason string) (*TokenOperationResult, error) {
	const op = "TokenService.RefundForUser"

	wallet, err := s.ledger.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "wallet not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get wallet", err)
	}

	spend, err := s.findCompletedSpend(ctx, s.ledger, sessionID)
	if err != nil {
		return nil, s.wrap(op, "refund failed", err)
	}
	if spend.WalletID != wallet.ID {
		return nil, utils.E(utils.CodeForbidden, op, "spend transaction does not belong to this user", nil)
	}

	return s.Refund(ctx, sessionID, reason)
}

func (s *tokenService) TransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]TransactionEntry, error) {
	const op = "TokenService.TransactionHistory"

	rows, err := s.ledger.ListUserTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transactions", err)
	}

	entries := make([]TransactionEntry, len(rows))
	for i, t := range rows {
		amount := t.Amount
		if amount < 0 {
			amount = -amount
		}
		entries[i] = TransactionEntry{
			TransactionID: t.ID,
			Type:          displayType(t.Type),
			Amount:        amount,
			Status:        strings.ToUpper(string(t.Status)),
			Description:   t.Description,
			SessionID:     t.SessionID,
			Timestamp:     t.Timestamp,
		}
	}
	return entries, nil
}

// CanBook is a pure read: current balance against the minimum required,
// with the shortfall when ineligible.
func (s *tokenService) CanBook(ctx context.Context, userID uint) (*BookingEligibility, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	deficit := s.policy.MinimumBalance - balance
	if deficit < 0 {
		deficit = 0
	}
	return &BookingEligibility{
		CanBook:         balance >= s.policy.MinimumBalance,
		CurrentBalance:  balance,
		RequiredBalance: s.policy.MinimumBalance,
		SessionCost:     s.policy.SessionCost,
		Deficit:         deficit,
	}, nil
}

func (s *tokenService) UserStatistics(ctx context.Context, userID uint) (*TokenStatistics, error) {
	const op = "TokenService.UserStatistics"

	wallet, err := s.ledger.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return &TokenStatistics{}, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get wallet", err)
	}

	earned, err := s.ledger.SumCompleted(ctx, wallet.ID, models.TransactionEarn, models.TransactionInitial)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sum earnings", err)
	}
	spent, err := s.ledger.SumCompleted(ctx, wallet.ID, models.TransactionSpend)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sum spending", err)
	}
	if spent < 0 {
		spent = -spent
	}
	return &TokenStatistics{
		TotalEarned:    earned,
		TotalSpent:     spent,
		CurrentBalance: wallet.Balance,
	}, nil
}

func (s *tokenService) TokensInCirculation(ctx context.Context) (int64, error) {
	const op = "TokenService.TokensInCirculation"

	total, err := s.ledger.TotalBalance(ctx)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to sum balances", err)
	}
	return total, nil
}

// apply writes one balance mutation: transaction row created initiated,
// balance updated, row flipped to completed. Callers run it inside Atomic
// so a failure anywhere rolls the whole mutation back.
func (s *tokenService) apply(ctx context.Context, tx pgrepo.LedgerStore, wallet *models.TokenWallet,
	amount int, typ models.TransactionType, sessionID, description string) (*TokenOperationResult, error) {

	txn := &models.TokenTransaction{
		WalletID:    wallet.ID,
		SessionID:   sessionID,
		Amount:      amount,
		Type:        typ,
		Status:      models.TransactionInitiated,
		Description: description,
	}
	if err := tx.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	newBalance := wallet.Balance + amount
	if err := tx.UpdateWalletBalance(ctx, wallet.ID, newBalance); err != nil {
		return nil, err
	}
	if err := tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionCompleted); err != nil {
		return nil, err
	}

	return &TokenOperationResult{
		TransactionID:   txn.ID,
		Amount:          amount,
		PreviousBalance: wallet.Balance,
		NewBalance:      newBalance,
		SessionID:       sessionID,
		Timestamp:       txn.Timestamp,
	}, nil
}

func (s *tokenService) findCompletedSpend(ctx context.Context, store pgrepo.LedgerStore, sessionID string) (*models.TokenTransaction, error) {
	rows, err := store.ListSessionTransactions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Type == models.TransactionSpend && rows[i].Status == models.TransactionCompleted {
			return &rows[i], nil
		}
	}
	return nil, utils.E(utils.CodeNotFound, "TokenService.Refund",
		"no completed spend transaction found for session", nil)
}

// wrap passes AppErrors through untouched and labels everything else as
// an internal failure of op.
func (s *tokenService) wrap(op, msg string, err error) error {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return err
	}
	return utils.E(utils.CodeInternal, op, msg, err)
}

func displayType(t models.TransactionType) string {
	switch t {
	case models.TransactionEarn, models.TransactionRefund:
		return "CREDIT"
	case models.TransactionSpend:
		return "DEBIT"
	case models.TransactionInitial:
		return "INITIAL_ALLOCATION"
	default:
		return strings.ToUpper(string(t))
	}
}
