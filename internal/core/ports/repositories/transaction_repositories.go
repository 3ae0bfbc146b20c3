package repositories

import (
	"context"
	"time"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// TransactionReader defines read operations on exchange transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its id.
	FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// FindTransactionByNumber retrieves a transaction by its business
	// number within a house.
	FindTransactionByNumber(ctx context.Context, houseID int64, number string) (*domain.Transaction, error)

	// ListTransactionsByWindow retrieves the transactions of a window with
	// keyset pagination, newest first, optionally restricted to a single
	// day. Returns the page and the token for the next one, if any.
	ListTransactionsByWindow(ctx context.Context, windowID int64, limit int, nextToken *string, day *time.Time) ([]domain.Transaction, *string, error)

	// ListTransactionsByCustomer retrieves the transactions of a registered
	// customer, newest first.
	ListTransactionsByCustomer(ctx context.Context, customerID int64) ([]domain.Transaction, error)

	// ListCompletedByOpening retrieves every COMPLETED transaction recorded
	// under an opening.
	ListCompletedByOpening(ctx context.Context, openingID int64) ([]domain.Transaction, error)

	// CountTransactionsByRate returns how many transactions reference a
	// rate.
	CountTransactionsByRate(ctx context.Context, rateID int64) (int64, error)
}

// TransactionWriter defines write operations on exchange transactions.
type TransactionWriter interface {
	// SaveTransaction performs the atomic exchange unit: locks the float
	// entries of the opening, re-checks target availability, claims the
	// next daily sequence number for the house, persists the transaction
	// and applies the float deltas, all in one database transaction.
	// Returns an *apperrors.InsufficientFundsError when the target float
	// cannot cover the payout.
	SaveTransaction(ctx context.Context, houseID int64, txn domain.Transaction) (*domain.Transaction, error)

	// MarkTransactionCancelled flips a transaction to CANCELLED and appends
	// the cancellation note. Float amounts are left untouched.
	MarkTransactionCancelled(ctx context.Context, transactionID int64, notes string, updatedBy int64, at time.Time) error
}

// TransactionRepositoryFacade combines all transaction repository
// operations.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
