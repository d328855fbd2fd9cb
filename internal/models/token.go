package models

import "time"

type TransactionType string

const (
	TransactionInitial TransactionType = "initial"
	TransactionEarn    TransactionType = "earn"
	TransactionSpend   TransactionType = "spend"
	TransactionRefund  TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionInitiated  TransactionStatus = "initiated"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionFailed     TransactionStatus = "failed"
	TransactionRolledBack TransactionStatus = "rolled_back"
)

type TokenWallet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Balance   int       `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (TokenWallet) TableName() string { return "token_wallets" }

// TokenTransaction is an append-only ledger entry. Amount is positive for
// credits and negative for debits. SessionID is empty for entries not tied
// to a session (initial allocation).
type TokenTransaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	WalletID    uint              `gorm:"column:wallet_id;index;not null" json:"wallet_id"`
	SessionID   string            `gorm:"column:session_id;size:64;index" json:"session_id,omitempty"`
	Amount      int               `gorm:"column:amount;not null" json:"amount"`
	Type        TransactionType   `gorm:"column:type;size:20;not null;index" json:"type"`
	Status      TransactionStatus `gorm:"column:status;size:20;not null;default:initiated" json:"status"`
	Description string            `gorm:"column:description;size:255" json:"description"`
	Timestamp   time.Time         `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (TokenTransaction) TableName() string { return "token_transactions" }
