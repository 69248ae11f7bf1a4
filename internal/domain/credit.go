// internal/domain/credit.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Credit represents a user's spendable credit balance.
// There is at most one Credit row per user; it is created lazily on the
// first credit or manual transaction and never deleted.
type Credit struct {
	ID        int64           `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	UserID    int64           `db:"user_id" json:"user_id"`       // Externally issued user identifier, unique
	Balance   decimal.Decimal `db:"balance" json:"balance"`       // Current balance, NUMERIC(20, 4) in DB, never negative
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // Timestamp of last balance change
}

// NewCredit creates a new Credit instance with the given opening balance.
func NewCredit(userID int64, balance decimal.Decimal) *Credit {
	now := time.Now().UTC()
	return &Credit{
		UserID:    userID,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
