// internal/service/credit_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"credit-ledger/internal/auth"
	"credit-ledger/internal/domain"
	"credit-ledger/internal/events"
	"credit-ledger/internal/repository"
	"credit-ledger/internal/util"
	"credit-ledger/pkg/db"
)

const (
	// DefaultUserPageLimit is the page size for per-account listings.
	DefaultUserPageLimit = 10
	// DefaultAllPageLimit is the page size for the system-wide listing.
	DefaultAllPageLimit = 20

	// maxTxRetries bounds automatic retries of transactions that lost a
	// serialization race.
	maxTxRetries = 3
)

// TransactionPage is one page of a transaction listing. TotalCount and
// TotalPages are computed over the filtered population; CurrentPage and
// Limit carry the effective pagination after defaults were applied.
type TransactionPage struct {
	TotalCount  int64                `json:"total_count"`
	TotalPages  int64                `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
	Limit       int                  `json:"limit"`
	Items       []domain.Transaction `json:"items"`
}

// CreditService defines the business operations of the credit ledger.
// Every operation checks the caller's identity against the access policy
// and validates its input before touching the store.
type CreditService interface {
	GetBalance(ctx context.Context, ident auth.Identity, userID int64) (decimal.Decimal, error)
	AddCredit(ctx context.Context, ident auth.Identity, userID int64, amount decimal.Decimal) (*domain.Credit, error)
	DeductCredit(ctx context.Context, ident auth.Identity, userID int64, amount decimal.Decimal) (*domain.Credit, error)
	CreateManualTransaction(ctx context.Context, ident auth.Identity, userID int64, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error)
	ListUserTransactions(ctx context.Context, ident auth.Identity, userID int64, typeFilter *domain.TransactionType, page, limit int) (*TransactionPage, error)
	ListAllTransactions(ctx context.Context, ident auth.Identity, typeFilter *domain.TransactionType, page, limit int) (*TransactionPage, error)
	GetTransactionByID(ctx context.Context, ident auth.Identity, id int64) (*domain.Transaction, error)
}

// creditService implements the CreditService interface.
type creditService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	creditRepo      repository.CreditRepository
	transactionRepo repository.TransactionRepository
	policy          *Policy
	publisher       events.Publisher
	logger          *slog.Logger
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewCreditService creates a new instance of CreditService.
func NewCreditService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	creditRepo repository.CreditRepository,
	transactionRepo repository.TransactionRepository,
	policy *Policy,
	publisher events.Publisher,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) CreditService {
	return &creditService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		creditRepo:      creditRepo,
		transactionRepo: transactionRepo,
		policy:          policy,
		publisher:       publisher,
		logger:          logger,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// GetBalance returns the user's current balance. A user without a credit
// account has a balance of zero; absence is not an error.
func (s *creditService) GetBalance(ctx context.Context, ident auth.Identity, userID int64) (decimal.Decimal, error) {
	if err := s.policy.Authorize(ident, OpGetBalance, userID); err != nil {
		return decimal.Zero, err
	}

	credit, err := s.creditRepo.GetCreditByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get balance: failed to get credit for user %d: %w", userID, err)
	}
	return credit.Balance, nil
}

// AddCredit increases a user's balance, creating the credit account on
// first use. The balance update and the CREDIT transaction record commit
// as one atomic unit.
func (s *creditService) AddCredit(ctx context.Context, ident auth.Identity, userID int64, amount decimal.Decimal) (*domain.Credit, error) {
	if err := s.policy.Authorize(ident, OpAddCredit, userID); err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	var (
		credit      *domain.Credit
		transaction *domain.Transaction
	)
	err := s.inTransaction(ctx, func(q repository.DBExecutor) error {
		var err error
		credit, err = s.creditRepo.GetCreditByUserIDForUpdate(ctx, q, userID)
		switch {
		case err == nil:
			credit.Balance = credit.Balance.Add(amount)
			if err := s.creditRepo.UpdateCreditBalance(ctx, q, credit.ID, credit.Balance); err != nil {
				return fmt.Errorf("add credit: failed to update balance: %w", err)
			}
		case util.IsError(err, util.ErrNotFound):
			credit = domain.NewCredit(userID, amount)
			if err := s.creditRepo.CreateCredit(ctx, q, credit); err != nil {
				return fmt.Errorf("add credit: failed to create credit account: %w", err)
			}
		default:
			return fmt.Errorf("add credit: failed to get credit for user %d: %w", userID, err)
		}

		transaction = domain.NewTransaction(credit.ID, domain.TransactionTypeCredit, amount)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return fmt.Errorf("add credit: failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTransaction(ctx, userID, transaction)
	return credit, nil
}

// DeductCredit decreases a user's balance. The sufficiency check, the
// balance update and the DEBIT transaction record are all part of one
// atomic unit; the row lock taken by the read serializes concurrent
// deductions against the same account.
func (s *creditService) DeductCredit(ctx context.Context, ident auth.Identity, userID int64, amount decimal.Decimal) (*domain.Credit, error) {
	if err := s.policy.Authorize(ident, OpDeductCredit, userID); err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	var (
		credit      *domain.Credit
		transaction *domain.Transaction
	)
	err := s.inTransaction(ctx, func(q repository.DBExecutor) error {
		var err error
		credit, err = s.creditRepo.GetCreditByUserIDForUpdate(ctx, q, userID)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrCreditNotFound
			}
			return fmt.Errorf("deduct credit: failed to get credit for user %d: %w", userID, err)
		}

		if credit.Balance.LessThan(amount) {
			return util.ErrInsufficientBalance
		}

		credit.Balance = credit.Balance.Sub(amount)
		if err := s.creditRepo.UpdateCreditBalance(ctx, q, credit.ID, credit.Balance); err != nil {
			return fmt.Errorf("deduct credit: failed to update balance: %w", err)
		}

		transaction = domain.NewTransaction(credit.ID, domain.TransactionTypeDebit, amount)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return fmt.Errorf("deduct credit: failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTransaction(ctx, userID, transaction)
	return credit, nil
}

// CreateManualTransaction records an administrative CREDIT or REFUND,
// creating the credit account with a zero opening balance when absent.
// A REFUND that would drive the balance negative is rejected.
func (s *creditService) CreateManualTransaction(ctx context.Context, ident auth.Identity, userID int64, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error) {
	if err := s.policy.Authorize(ident, OpCreateManualTransaction, userID); err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}
	if !txType.IsManual() {
		return nil, fmt.Errorf("%w: transaction type must be CREDIT or REFUND", util.ErrInvalidInput)
	}

	var transaction *domain.Transaction
	err := s.inTransaction(ctx, func(q repository.DBExecutor) error {
		credit, err := s.creditRepo.GetCreditByUserIDForUpdate(ctx, q, userID)
		if util.IsError(err, util.ErrNotFound) {
			credit = domain.NewCredit(userID, decimal.Zero)
			if err := s.creditRepo.CreateCredit(ctx, q, credit); err != nil {
				return fmt.Errorf("manual transaction: failed to create credit account: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("manual transaction: failed to get credit for user %d: %w", userID, err)
		}

		switch txType {
		case domain.TransactionTypeCredit:
			credit.Balance = credit.Balance.Add(amount)
		case domain.TransactionTypeRefund:
			credit.Balance = credit.Balance.Sub(amount)
			if credit.Balance.IsNegative() {
				return util.ErrInsufficientBalance
			}
		}

		if err := s.creditRepo.UpdateCreditBalance(ctx, q, credit.ID, credit.Balance); err != nil {
			return fmt.Errorf("manual transaction: failed to update balance: %w", err)
		}

		transaction = domain.NewTransaction(credit.ID, txType, amount)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return fmt.Errorf("manual transaction: failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTransaction(ctx, userID, transaction)
	return transaction, nil
}

// ListUserTransactions returns one page of a user's transactions, newest
// first, together with the total count under the same type filter.
func (s *creditService) ListUserTransactions(ctx context.Context, ident auth.Identity, userID int64, typeFilter *domain.TransactionType, page, limit int) (*TransactionPage, error) {
	if err := s.policy.Authorize(ident, OpListUserTransactions, userID); err != nil {
		return nil, err
	}
	page, limit, err := normalizePage(page, limit, DefaultUserPageLimit)
	if err != nil {
		return nil, err
	}

	credit, err := s.creditRepo.GetCreditByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCreditNotFound
		}
		return nil, fmt.Errorf("list transactions: failed to get credit for user %d: %w", userID, err)
	}

	transactions, err := s.transactionRepo.ListByCreditID(ctx, s.dbExecutor, credit.ID, typeFilter, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	totalCount, err := s.transactionRepo.CountByCreditID(ctx, s.dbExecutor, credit.ID, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return newTransactionPage(transactions, totalCount, page, limit), nil
}

// ListAllTransactions returns one page of the system-wide transaction log.
func (s *creditService) ListAllTransactions(ctx context.Context, ident auth.Identity, typeFilter *domain.TransactionType, page, limit int) (*TransactionPage, error) {
	if err := s.policy.Authorize(ident, OpListAllTransactions, ident.UserID); err != nil {
		return nil, err
	}
	page, limit, err := normalizePage(page, limit, DefaultAllPageLimit)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.List(ctx, s.dbExecutor, typeFilter, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	totalCount, err := s.transactionRepo.Count(ctx, s.dbExecutor, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}

	return newTransactionPage(transactions, totalCount, page, limit), nil
}

func newTransactionPage(items []domain.Transaction, totalCount int64, page, limit int) *TransactionPage {
	totalPages := totalCount / int64(limit)
	if totalCount%int64(limit) != 0 {
		totalPages++
	}
	return &TransactionPage{
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
		Items:       items,
	}
}

// GetTransactionByID returns a single transaction. Non-admin callers may
// only fetch transactions belonging to their own account.
func (s *creditService) GetTransactionByID(ctx context.Context, ident auth.Identity, id int64) (*domain.Transaction, error) {
	owned, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, id)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: failed to get transaction %d: %w", id, err)
	}

	if err := s.policy.Authorize(ident, OpGetTransactionByID, owned.UserID); err != nil {
		return nil, err
	}

	return &owned.Transaction, nil
}

// normalizePage applies defaults for absent pagination values (zero) and
// rejects negative or otherwise invalid ones.
func normalizePage(page, limit, defaultLimit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 || limit < 1 {
		return 0, 0, fmt.Errorf("%w: page and limit must be positive", util.ErrInvalidInput)
	}
	return page, limit, nil
}

// inTransaction runs fn inside a database transaction, retrying a bounded
// number of times when the transaction loses a serialization race.
func (s *creditService) inTransaction(ctx context.Context, fn func(q repository.DBExecutor) error) error {
	var err error
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err = s.runInTx(ctx, fn)
		if err == nil || !util.IsError(err, util.ErrConflict) {
			return err
		}
		s.logger.Warn("Retrying transaction after serialization conflict", "attempt", attempt)
	}
	return err
}

func (s *creditService) runInTx(ctx context.Context, fn func(q repository.DBExecutor) error) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	if err := fn(txExecutor); err != nil {
		if db.IsRetryableTxError(err) {
			return fmt.Errorf("%w: %v", util.ErrConflict, err)
		}
		return err
	}

	if err := s.commitTx(txController); err != nil {
		if db.IsRetryableTxError(err) {
			return fmt.Errorf("%w: %v", util.ErrConflict, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// publishTransaction emits a transaction-completed event. The ledger state
// is already committed; a publish failure is logged and not surfaced.
func (s *creditService) publishTransaction(ctx context.Context, userID int64, transaction *domain.Transaction) {
	if s.publisher == nil || transaction == nil {
		return
	}
	event := events.NewTransactionCompleted(userID, transaction)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish transaction event",
			"event_id", event.EventID, "transaction_id", transaction.ID, "error", err)
	}
}
