package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionState indicates the state of an exchange transaction.
type TransactionState string

const (
	TransactionCompleted TransactionState = "COMPLETED"
	TransactionCancelled TransactionState = "CANCELLED"
	TransactionPending   TransactionState = "PENDING"
)

// TemporaryCustomer holds inline customer data for walk-in exchanges that are
// not linked to a registered customer.
type TemporaryCustomer struct {
	Names       string `json:"names,omitempty"`
	Surnames    string `json:"surnames,omitempty"`
	Document    string `json:"document,omitempty"`
	Description string `json:"description,omitempty"`
}

// Transaction is a single currency exchange processed at a teller window.
// It is immutable once created, except for State and Notes on cancellation.
type Transaction struct {
	TransactionID     int64              `json:"transactionID"` // Primary Key
	Number            string             `json:"number"`        // TXyymmddNNNN, unique within a house
	WindowID          int64              `json:"windowID"`
	OpeningID         int64              `json:"openingID"`
	SourceCurrencyID  int64              `json:"sourceCurrencyID"`
	TargetCurrencyID  int64              `json:"targetCurrencyID"`
	SourceAmount      decimal.Decimal    `json:"sourceAmount"` // received from the customer
	TargetAmount      decimal.Decimal    `json:"targetAmount"` // paid out to the customer
	AppliedRate       decimal.Decimal    `json:"appliedRate"`  // sell rate at processing time
	Profit            decimal.Decimal    `json:"profit"`
	RateID            int64              `json:"rateID"` // FK -> ExchangeRate, for traceability
	State             TransactionState   `json:"state"`
	CustomerID        *int64             `json:"customerID,omitempty"`
	TemporaryCustomer *TemporaryCustomer `json:"temporaryCustomer,omitempty"`
	Notes             string             `json:"notes"`
	AuditFields
}
