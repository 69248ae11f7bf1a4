// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"credit-ledger/internal/domain"
	"credit-ledger/internal/repository"
	"credit-ledger/internal/util"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO credit_transactions (credit_id, type, amount, created_at)
              VALUES ($1, $2, $3, $4) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.CreditID,
		transaction.Type,
		transaction.Amount,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByCreditID retrieves a page of transactions for one credit account,
// ordered by created_at descending. The id tie-breaker keeps the order
// stable for transactions created within the same timestamp tick.
func (r *TransactionRepository) ListByCreditID(ctx context.Context, q repository.DBExecutor, creditID int64, typeFilter *domain.TransactionType, limit, offset int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, credit_id, type, amount, created_at
		FROM credit_transactions
		WHERE credit_id = $1 AND ($2::varchar IS NULL OR type = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	err := q.SelectContext(ctx, &transactions, query, creditID, typeFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for credit %d: %w", creditID, err)
	}

	return transactions, nil
}

// CountByCreditID counts transactions for one credit account under the same filter.
func (r *TransactionRepository) CountByCreditID(ctx context.Context, q repository.DBExecutor, creditID int64, typeFilter *domain.TransactionType) (int64, error) {
	var totalCount int64
	query := `
		SELECT COUNT(*)
		FROM credit_transactions
		WHERE credit_id = $1 AND ($2::varchar IS NULL OR type = $2)`
	err := q.GetContext(ctx, &totalCount, query, creditID, typeFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for credit %d: %w", creditID, err)
	}
	return totalCount, nil
}

// List retrieves a page of transactions across all accounts, newest first.
func (r *TransactionRepository) List(ctx context.Context, q repository.DBExecutor, typeFilter *domain.TransactionType, limit, offset int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, credit_id, type, amount, created_at
		FROM credit_transactions
		WHERE $1::varchar IS NULL OR type = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, typeFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, nil
}

// Count counts transactions across all accounts under the same filter.
func (r *TransactionRepository) Count(ctx context.Context, q repository.DBExecutor, typeFilter *domain.TransactionType) (int64, error) {
	var totalCount int64
	query := `SELECT COUNT(*) FROM credit_transactions WHERE $1::varchar IS NULL OR type = $1`
	err := q.GetContext(ctx, &totalCount, query, typeFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return totalCount, nil
}

// GetTransactionByID retrieves a single transaction together with the user
// owning its credit account.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*repository.OwnedTransaction, error) {
	var transaction repository.OwnedTransaction
	query := `
		SELECT t.id, t.credit_id, t.type, t.amount, t.created_at, c.user_id
		FROM credit_transactions t
		JOIN credits c ON c.id = t.credit_id
		WHERE t.id = $1`
	err := q.GetContext(ctx, &transaction, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &transaction, nil
}
