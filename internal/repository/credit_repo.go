// internal/repository/credit_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"credit-ledger/internal/domain"
)

// CreditRepository defines the interface for credit account data operations.
type CreditRepository interface {
	// CreateCredit inserts a new credit account using the provided DBExecutor.
	CreateCredit(ctx context.Context, q DBExecutor, credit *domain.Credit) error
	// GetCreditByUserID retrieves a credit account by user ID using the provided DBExecutor.
	GetCreditByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Credit, error)
	// GetCreditByUserIDForUpdate retrieves a credit account and locks its row
	// for the remainder of the surrounding database transaction. Concurrent
	// mutations against the same account serialize on this lock.
	GetCreditByUserIDForUpdate(ctx context.Context, q DBExecutor, userID int64) (*domain.Credit, error)
	// UpdateCreditBalance sets the balance of a credit account to newBalance.
	UpdateCreditBalance(ctx context.Context, q DBExecutor, creditID int64, newBalance decimal.Decimal) error
}
