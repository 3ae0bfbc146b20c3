package services

import (
	"context"
	"time"

	"github.com/cambix/cambix_backend/internal/dto"
)

// TransactionSvcFacade defines the exchange transaction operations.
type TransactionSvcFacade interface {
	// ProcessTransaction records an exchange at a window: resolves the
	// active rate, computes payout and profit, verifies float availability
	// and persists the transaction with its float effect atomically.
	ProcessTransaction(ctx context.Context, windowID int64, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error)

	// CancelTransaction marks a completed transaction cancelled with a
	// mandatory reason. The float is not reversed.
	CancelTransaction(ctx context.Context, transactionID int64, req dto.CancelTransactionRequest) (*dto.TransactionResponse, error)

	// GetTransaction retrieves a transaction by id.
	GetTransaction(ctx context.Context, transactionID int64) (*dto.TransactionResponse, error)

	// GetTransactionByNumber retrieves a transaction by its business
	// number.
	GetTransactionByNumber(ctx context.Context, houseID int64, number string) (*dto.TransactionResponse, error)

	// CalculateConversion quotes a conversion at the current active rate
	// without recording anything.
	CalculateConversion(ctx context.Context, houseID int64, req dto.ConversionRequest) (*dto.ConversionResponse, error)

	// ListTransactionsByWindow pages through the transactions of a window,
	// newest first, optionally restricted to one day.
	ListTransactionsByWindow(ctx context.Context, windowID int64, limit int, nextToken *string, day *time.Time) (*dto.ListTransactionsResponse, error)

	// ListTransactionsByCustomer retrieves the transactions of a registered
	// customer.
	ListTransactionsByCustomer(ctx context.Context, customerID int64) ([]dto.TransactionResponse, error)
}
