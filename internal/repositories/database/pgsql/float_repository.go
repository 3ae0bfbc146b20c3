package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	"github.com/cambix/cambix_backend/internal/models"
	"github.com/cambix/cambix_backend/internal/utils/mapping"
)

type PgxFloatRepository struct {
	BaseRepository
}

// newPgxFloatRepository creates a new repository for per-opening float
// balances.
func newPgxFloatRepository(pool *pgxpool.Pool) portsrepo.FloatRepositoryFacade {
	return &PgxFloatRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FloatRepositoryFacade = (*PgxFloatRepository)(nil)

// ListFloatEntries retrieves all float entries of an opening.
func (r *PgxFloatRepository) ListFloatEntries(ctx context.Context, openingID int64) ([]domain.FloatEntry, error) {
	query := `
		SELECT entry_id, opening_id, currency_id, amount, seed_amount
		FROM float_entries
		WHERE opening_id = $1
		ORDER BY currency_id;
	`
	rows, err := r.Pool.Query(ctx, query, openingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list float entries for opening %d: %w", openingID, err)
	}
	defer rows.Close()

	var ms []models.FloatEntry
	for rows.Next() {
		var m models.FloatEntry
		if err := rows.Scan(&m.EntryID, &m.OpeningID, &m.CurrencyID, &m.Amount, &m.SeedAmount); err != nil {
			return nil, fmt.Errorf("failed to scan float entry row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating float entry rows: %w", err)
	}
	return mapping.ToDomainFloatEntrySlice(ms), nil
}

// FindFloatEntry retrieves the float entry for one currency of an opening.
func (r *PgxFloatRepository) FindFloatEntry(ctx context.Context, openingID, currencyID int64) (*domain.FloatEntry, error) {
	query := `
		SELECT entry_id, opening_id, currency_id, amount, seed_amount
		FROM float_entries
		WHERE opening_id = $1 AND currency_id = $2;
	`
	var m models.FloatEntry
	err := r.Pool.QueryRow(ctx, query, openingID, currencyID).Scan(&m.EntryID, &m.OpeningID, &m.CurrencyID, &m.Amount, &m.SeedAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find float entry for opening %d currency %d: %w", openingID, currencyID, err)
	}
	d := mapping.ToDomainFloatEntry(m)
	return &d, nil
}

// FindFloatEntriesForUpdate locks and retrieves float entries inside an open
// transaction, keyed by currency id. Rows are locked in currency order to
// keep lock acquisition deterministic across concurrent exchanges.
func (r *PgxFloatRepository) FindFloatEntriesForUpdate(ctx context.Context, tx pgx.Tx, openingID int64, currencyIDs []int64) (map[int64]domain.FloatEntry, error) {
	if len(currencyIDs) == 0 {
		return map[int64]domain.FloatEntry{}, nil
	}
	query := `
		SELECT entry_id, opening_id, currency_id, amount, seed_amount
		FROM float_entries
		WHERE opening_id = $1 AND currency_id = ANY($2)
		ORDER BY currency_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, openingID, currencyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock float entries for opening %d: %w", openingID, err)
	}
	defer rows.Close()

	locked := make(map[int64]domain.FloatEntry)
	for rows.Next() {
		var m models.FloatEntry
		if err := rows.Scan(&m.EntryID, &m.OpeningID, &m.CurrencyID, &m.Amount, &m.SeedAmount); err != nil {
			return nil, fmt.Errorf("failed to scan locked float entry: %w", err)
		}
		locked[m.CurrencyID] = mapping.ToDomainFloatEntry(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked float entries: %w", err)
	}
	return locked, nil
}

// ApplyFloatDeltasInTx adds the signed deltas to the float entries of an
// opening. Callers must have locked the rows first.
func (r *PgxFloatRepository) ApplyFloatDeltasInTx(ctx context.Context, tx pgx.Tx, openingID int64, deltas map[int64]decimal.Decimal) error {
	query := `
		UPDATE float_entries
		SET amount = amount + $3
		WHERE opening_id = $1 AND currency_id = $2;
	`
	for currencyID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		tag, err := tx.Exec(ctx, query, openingID, currencyID, delta)
		if err != nil {
			return fmt.Errorf("failed to apply float delta for currency %d: %w", currencyID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("no float entry for currency %d in opening %d", currencyID, openingID))
		}
	}
	return nil
}
