// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"credit-ledger/internal/api/handler"
	"credit-ledger/internal/auth"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(creditHandler *handler.CreditHandler, authMiddleware *auth.Middleware, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(middleware.Logger)                          // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"credit-service","status":"ok"}`))
	})

	// Credit ledger API routes; all require an authenticated identity.
	r.Route("/credit", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/user/{userID}", creditHandler.GetBalance)
		r.Post("/user/{userID}/add", creditHandler.AddCredit)
		r.Post("/user/{userID}/deduct", creditHandler.DeductCredit)

		r.Get("/transactions/user/{userID}", creditHandler.GetUserTransactions)
		r.Post("/transactions", creditHandler.CreateTransaction)
		r.Get("/transactions", creditHandler.GetTransactions)

		r.Get("/{id}", creditHandler.GetTransactionByID)
	})

	return r
}
