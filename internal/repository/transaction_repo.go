// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"credit-ledger/internal/domain"
)

// OwnedTransaction pairs a transaction with the user owning its credit account.
type OwnedTransaction struct {
	domain.Transaction
	UserID int64 `db:"user_id"`
}

// TransactionRepository defines the interface for transaction data operations.
// Transactions are append-only; there are no update or delete methods.
type TransactionRepository interface {
	// CreateTransaction appends a new transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// ListByCreditID retrieves transactions for one credit account, newest
	// first, optionally filtered by type (nil means all types).
	ListByCreditID(ctx context.Context, q DBExecutor, creditID int64, typeFilter *domain.TransactionType, limit, offset int) ([]domain.Transaction, error)
	// CountByCreditID counts transactions for one credit account under the same filter.
	CountByCreditID(ctx context.Context, q DBExecutor, creditID int64, typeFilter *domain.TransactionType) (int64, error)
	// List retrieves transactions across all accounts, newest first,
	// optionally filtered by type.
	List(ctx context.Context, q DBExecutor, typeFilter *domain.TransactionType, limit, offset int) ([]domain.Transaction, error)
	// Count counts transactions across all accounts under the same filter.
	Count(ctx context.Context, q DBExecutor, typeFilter *domain.TransactionType) (int64, error)
	// GetTransactionByID retrieves a single transaction together with its owning user.
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*OwnedTransaction, error)
}
