package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType kind of ledger movement.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
	TransactionPayment    TransactionType = "payment"
)

// Title returns a human-readable representation.
func (t TransactionType) Title() string {
	switch t {
	case TransactionDeposit:
		return "Deposit"
	case TransactionWithdrawal:
		return "Withdrawal"
	case TransactionTransfer:
		return "Transfer"
	case TransactionPayment:
		return "Payment"
	default:
		return string(t)
	}
}

// TransactionStatus processing state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Title returns a human-readable representation.
func (s TransactionStatus) Title() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// TransactionRecord a single history entry. Immutable once fetched.
type TransactionRecord struct {
	ID        int64             `json:"id"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Asset     string            `json:"asset"`
	Status    TransactionStatus `json:"status"`
	FeeAmount decimal.Decimal   `json:"fee_amount"`
	Memo      string            `json:"memo"`
	CreatedAt time.Time         `json:"created_at"`
}
