// internal/domain/transaction.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a credit transaction.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT" // increases the balance (top-up)
	TransactionTypeDebit  TransactionType = "DEBIT"  // decreases the balance (spend)
	TransactionTypeRefund TransactionType = "REFUND" // decreases the balance (reversal of a prior credit)
)

// ParseTransactionType parses a case-insensitive transaction type string.
// The boolean result reports whether the input named a known type.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToUpper(s)) {
	case TransactionTypeCredit:
		return TransactionTypeCredit, true
	case TransactionTypeDebit:
		return TransactionTypeDebit, true
	case TransactionTypeRefund:
		return TransactionTypeRefund, true
	default:
		return "", false
	}
}

// IsManual reports whether the type may be used for a manually created
// transaction. DEBIT records are only ever produced by deductions.
func (t TransactionType) IsManual() bool {
	return t == TransactionTypeCredit || t == TransactionTypeRefund
}

// Transaction represents one immutable balance-changing event.
// Once written, a Transaction is never mutated or deleted; created_at is
// the canonical ordering key (descending = newest first).
type Transaction struct {
	ID        int64           `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB, insertion-ordered
	CreditID  int64           `db:"credit_id" json:"credit_id"`   // Foreign key to Credit
	Type      TransactionType `db:"type" json:"type"`             // CREDIT, DEBIT or REFUND
	Amount    decimal.Decimal `db:"amount" json:"amount"`         // Always positive; direction implied by Type
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of record creation
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(creditID int64, txType TransactionType, amount decimal.Decimal) *Transaction {
	return &Transaction{
		CreditID:  creditID,
		Type:      txType,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}
