// internal/api/handler/credit.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"credit-ledger/internal/api/types"
	"credit-ledger/internal/auth"
	"credit-ledger/internal/domain"
	"credit-ledger/internal/service"
	"credit-ledger/internal/util" // For custom errors
)

// DefaultTimeout is the per-request timeout applied by the router.
const DefaultTimeout = 60 * time.Second

// CreditHandler handles HTTP requests related to credit ledger operations.
type CreditHandler struct {
	service service.CreditService
	logger  *slog.Logger
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(svc service.CreditService, logger *slog.Logger) *CreditHandler {
	return &CreditHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *CreditHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *CreditHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrCreditNotFound), util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Forbidden: insufficient rights"
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusBadRequest
		message = "Insufficient credit balance"
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		message = "Concurrent modification, please retry"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// identity extracts the authenticated caller, responding with 401 when the
// request did not pass through the auth middleware.
func (h *CreditHandler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, types.ErrorResponse{Error: "Authentication required"})
		return auth.Identity{}, false
	}
	return ident, true
}

func parseUserID(r *http.Request) (int64, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		return 0, util.ErrInvalidInput
	}
	return userID, nil
}

// parseListQuery parses the type/page/limit query parameters. Absent
// values are reported as zero (the service applies defaults); non-numeric
// or non-positive values are rejected rather than silently coerced.
func parseListQuery(r *http.Request) (typeFilter *domain.TransactionType, page, limit int, err error) {
	if v := r.URL.Query().Get("type"); v != "" {
		t, ok := domain.ParseTransactionType(v)
		if !ok {
			return nil, 0, 0, util.ErrInvalidInput
		}
		typeFilter = &t
	}
	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, 0, 0, util.ErrInvalidInput
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return nil, 0, 0, util.ErrInvalidInput
		}
	}
	return typeFilter, page, limit, nil
}

// GetBalance handles the get credit balance request.
// GET /credit/user/{userID}
func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	userID, err := parseUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), ident, userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.BalanceResponse{UserID: userID, Balance: balance})
}

// AmountRequest is the request body for the add and deduct endpoints.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// AddCredit handles the add credit request.
// POST /credit/user/{userID}/add
func (h *CreditHandler) AddCredit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	userID, err := parseUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	credit, err := h.service.AddCredit(r.Context(), ident, userID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Credit added successfully",
		"credit":  credit,
	})
}

// DeductCredit handles the deduct credit request.
// POST /credit/user/{userID}/deduct
func (h *CreditHandler) DeductCredit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	userID, err := parseUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	credit, err := h.service.DeductCredit(r.Context(), ident, userID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, credit)
}

// GetUserTransactions handles the per-user transaction listing request.
// GET /credit/transactions/user/{userID}?type=&page=&limit=
func (h *CreditHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	userID, err := parseUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	typeFilter, page, limit, err := parseListQuery(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	pageResult, err := h.service.ListUserTransactions(r.Context(), ident, userID, typeFilter, page, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       pageResult.Items,
		Page:       pageResult.CurrentPage,
		Limit:      pageResult.Limit,
		TotalCount: pageResult.TotalCount,
	})
}

// ManualTransactionRequest is the request body for manual transactions.
type ManualTransactionRequest struct {
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// CreateTransaction handles the manual transaction request.
// POST /credit/transactions
func (h *CreditHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req ManualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.UserID <= 0 {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	txType, ok := domain.ParseTransactionType(req.Type)
	if !ok || !txType.IsManual() {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	transaction, err := h.service.CreateManualTransaction(r.Context(), ident, req.UserID, req.Amount, txType)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, transaction)
}

// GetTransactions handles the system-wide transaction listing request.
// GET /credit/transactions?type=&page=&limit=
func (h *CreditHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	typeFilter, page, limit, err := parseListQuery(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	pageResult, err := h.service.ListAllTransactions(r.Context(), ident, typeFilter, page, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, pageResult)
}

// GetTransactionByID handles the single transaction request.
// GET /credit/{id}
func (h *CreditHandler) GetTransactionByID(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	transaction, err := h.service.GetTransactionByID(r.Context(), ident, id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, transaction)
}
