// internal/events/publisher.go
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"credit-ledger/internal/domain"
)

// TransactionCompleted is emitted after a balance-changing transaction has
// committed.
type TransactionCompleted struct {
	EventID       string          `json:"event_id"`
	UserID        int64           `json:"user_id"`
	TransactionID int64           `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewTransactionCompleted builds the event envelope for a committed transaction.
func NewTransactionCompleted(userID int64, transaction *domain.Transaction) TransactionCompleted {
	return TransactionCompleted{
		EventID:       uuid.New().String(),
		UserID:        userID,
		TransactionID: transaction.ID,
		Type:          string(transaction.Type),
		Amount:        transaction.Amount,
		CreatedAt:     transaction.CreatedAt,
	}
}

// Publisher publishes ledger events for downstream consumers.
// Publishing is best-effort: the ledger state is already committed when an
// event goes out, so failures are logged, never rolled back.
type Publisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
	Close() error
}

// NopPublisher discards all events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event TransactionCompleted) error { return nil }

func (NopPublisher) Close() error { return nil }
