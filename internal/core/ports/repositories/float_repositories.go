package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// FloatReader defines read operations on the float ledger.
type FloatReader interface {
	// ListFloatEntries retrieves all float entries of an opening.
	ListFloatEntries(ctx context.Context, openingID int64) ([]domain.FloatEntry, error)

	// FindFloatEntry retrieves the float entry for a single currency of an
	// opening. Returns apperrors.ErrNotFound when the currency was never
	// seeded.
	FindFloatEntry(ctx context.Context, openingID, currencyID int64) (*domain.FloatEntry, error)
}

// FloatWriter defines write operations on the float ledger. The in-tx
// variants take an open pgx.Tx so callers can compose them into a larger
// atomic unit.
type FloatWriter interface {
	// FindFloatEntriesForUpdate locks and retrieves the float entries of an
	// opening for the given currencies, keyed by currency id. Locked rows
	// stay locked until the surrounding transaction ends.
	FindFloatEntriesForUpdate(ctx context.Context, tx pgx.Tx, openingID int64, currencyIDs []int64) (map[int64]domain.FloatEntry, error)

	// ApplyFloatDeltasInTx adds the given signed deltas to the float
	// entries of an opening, keyed by currency id.
	ApplyFloatDeltasInTx(ctx context.Context, tx pgx.Tx, openingID int64, deltas map[int64]decimal.Decimal) error
}

// FloatRepositoryFacade combines all float ledger repository operations.
type FloatRepositoryFacade interface {
	FloatReader
	FloatWriter
}
