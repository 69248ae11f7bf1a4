// internal/repository/postgres/credit_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"credit-ledger/internal/domain"
	"credit-ledger/internal/repository"
	"credit-ledger/internal/util"
)

// CreditRepository implements repository.CreditRepository for PostgreSQL.
type CreditRepository struct{}

// NewCreditRepository creates a new CreditRepository.
func NewCreditRepository() repository.CreditRepository {
	return &CreditRepository{}
}

// CreateCredit inserts a new credit account using the provided DBExecutor.
func (r *CreditRepository) CreateCredit(ctx context.Context, q repository.DBExecutor, credit *domain.Credit) error {
	query := `INSERT INTO credits (user_id, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, credit.UserID, credit.Balance, credit.CreatedAt, credit.UpdatedAt).Scan(&credit.ID)
	if err != nil {
		return fmt.Errorf("failed to create credit account for user %d: %w", credit.UserID, err)
	}
	return nil
}

// GetCreditByUserID retrieves a credit account by user ID using the provided DBExecutor.
func (r *CreditRepository) GetCreditByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Credit, error) {
	var credit domain.Credit
	query := `SELECT id, user_id, balance, created_at, updated_at FROM credits WHERE user_id = $1`
	err := q.GetContext(ctx, &credit, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credit account for user %d: %w", userID, err)
	}
	return &credit, nil
}

// GetCreditByUserIDForUpdate retrieves a credit account and takes a row-level
// lock on it. Must be called on a transaction executor; the lock is held
// until the transaction commits or rolls back.
func (r *CreditRepository) GetCreditByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Credit, error) {
	var credit domain.Credit
	query := `SELECT id, user_id, balance, created_at, updated_at FROM credits WHERE user_id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &credit, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock credit account for user %d: %w", userID, err)
	}
	return &credit, nil
}

// UpdateCreditBalance sets the balance of a credit account to newBalance.
func (r *CreditRepository) UpdateCreditBalance(ctx context.Context, q repository.DBExecutor, creditID int64, newBalance decimal.Decimal) error {
	query := `UPDATE credits SET balance = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, newBalance, time.Now().UTC(), creditID)
	if err != nil {
		return fmt.Errorf("failed to update balance for credit %d: %w", creditID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating credit %d: %w", creditID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating credit %d: %w", creditID, util.ErrNotFound)
	}
	return nil
}
