package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/dto"
)

// FloatLedgerSvcFacade defines read and reconciliation operations on the
// per-opening float ledger.
type FloatLedgerSvcFacade interface {
	// GetFloat retrieves the live float balances of a window's active
	// opening.
	GetFloat(ctx context.Context, windowID int64) ([]dto.FloatEntryResponse, error)

	// CheckAvailability reports whether the active opening of a window
	// holds at least the given amount of a currency.
	CheckAvailability(ctx context.Context, windowID int64, currencyCode string, amount decimal.Decimal) (*dto.AvailabilityResponse, error)

	// ExpectedAmounts reconciles an opening: seed plus the signed effect of
	// every completed transaction, per currency, with the accumulated
	// profit and transaction count.
	ExpectedAmounts(ctx context.Context, openingID int64) (*dto.ClosingSummaryResponse, error)
}
