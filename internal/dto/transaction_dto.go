package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// TemporaryCustomerInput identifies a walk-in customer captured inline on a
// transaction.
type TemporaryCustomerInput struct {
	Names       string `json:"names" binding:"required,max=100"`
	Surnames    string `json:"surnames" binding:"required,max=100"`
	Document    string `json:"document" binding:"max=20"`
	Description string `json:"description" binding:"max=200"`
}

// CreateTransactionRequest defines the payload for processing an exchange
// transaction at a window.
type CreateTransactionRequest struct {
	SourceCurrencyCode string                  `json:"sourceCurrencyCode" binding:"required,currency_code"`
	TargetCurrencyCode string                  `json:"targetCurrencyCode" binding:"required,currency_code"`
	SourceAmount       decimal.Decimal         `json:"sourceAmount" binding:"required"`
	CustomerID         *int64                  `json:"customerId"`
	TemporaryCustomer  *TemporaryCustomerInput `json:"temporaryCustomer"`
	Notes              string                  `json:"notes" binding:"max=500"`
}

// ConversionRequest defines the payload for quoting a conversion without
// recording it.
type ConversionRequest struct {
	SourceCurrencyCode string          `json:"sourceCurrencyCode" form:"sourceCurrencyCode" binding:"required,currency_code"`
	TargetCurrencyCode string          `json:"targetCurrencyCode" form:"targetCurrencyCode" binding:"required,currency_code"`
	SourceAmount       decimal.Decimal `json:"sourceAmount" form:"sourceAmount" binding:"required"`
}

// ConversionResponse is the computed quote for a conversion.
type ConversionResponse struct {
	SourceCurrencyCode string          `json:"sourceCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	SourceAmount       decimal.Decimal `json:"sourceAmount"`
	TargetAmount       decimal.Decimal `json:"targetAmount"`
	AppliedRate        decimal.Decimal `json:"appliedRate"`
	Profit             decimal.Decimal `json:"profit"`
	RateID             int64           `json:"rateId"`
}

// AvailabilityResponse reports whether the window float can cover a payout.
type AvailabilityResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Sufficient   bool            `json:"sufficient"`
}

// CancelTransactionRequest defines the payload for cancelling a completed
// transaction.
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TemporaryCustomerResponse echoes an inline customer back to the caller.
type TemporaryCustomerResponse struct {
	Names       string `json:"names"`
	Surnames    string `json:"surnames"`
	Document    string `json:"document,omitempty"`
	Description string `json:"description,omitempty"`
}

// TransactionResponse defines the API representation of an exchange
// transaction.
type TransactionResponse struct {
	TransactionID      int64                      `json:"transactionId"`
	Number             string                     `json:"number"`
	WindowID           int64                      `json:"windowId"`
	OpeningID          int64                      `json:"openingId"`
	SourceCurrencyCode string                     `json:"sourceCurrencyCode"`
	TargetCurrencyCode string                     `json:"targetCurrencyCode"`
	SourceAmount       decimal.Decimal            `json:"sourceAmount"`
	TargetAmount       decimal.Decimal            `json:"targetAmount"`
	AppliedRate        decimal.Decimal            `json:"appliedRate"`
	Profit             decimal.Decimal            `json:"profit"`
	RateID             int64                      `json:"rateId"`
	State              string                     `json:"state"`
	CustomerID         *int64                     `json:"customerId,omitempty"`
	TemporaryCustomer  *TemporaryCustomerResponse `json:"temporaryCustomer,omitempty"`
	Notes              string                     `json:"notes,omitempty"`
	CreatedAt          time.Time                  `json:"createdAt"`
}

// ListTransactionsResponse is one keyset page of transactions.
type ListTransactionsResponse struct {
	Items     []TransactionResponse `json:"items"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse maps a domain transaction to its API
// representation. codes maps currency ids to codes.
func ToTransactionResponse(txn domain.Transaction, codes map[int64]string) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:      txn.TransactionID,
		Number:             txn.Number,
		WindowID:           txn.WindowID,
		OpeningID:          txn.OpeningID,
		SourceCurrencyCode: codes[txn.SourceCurrencyID],
		TargetCurrencyCode: codes[txn.TargetCurrencyID],
		SourceAmount:       txn.SourceAmount,
		TargetAmount:       txn.TargetAmount,
		AppliedRate:        txn.AppliedRate,
		Profit:             txn.Profit,
		RateID:             txn.RateID,
		State:              string(txn.State),
		CustomerID:         txn.CustomerID,
		Notes:              txn.Notes,
		CreatedAt:          txn.CreatedAt,
	}
	if txn.TemporaryCustomer != nil {
		resp.TemporaryCustomer = &TemporaryCustomerResponse{
			Names:       txn.TemporaryCustomer.Names,
			Surnames:    txn.TemporaryCustomer.Surnames,
			Document:    txn.TemporaryCustomer.Document,
			Description: txn.TemporaryCustomer.Description,
		}
	}
	return resp
}
