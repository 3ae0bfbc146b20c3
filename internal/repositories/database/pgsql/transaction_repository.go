package pgsql

import (
	"context"
	"errors"
	"fmt"

	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	"github.com/cambix/cambix_backend/internal/models"
	"github.com/cambix/cambix_backend/internal/utils/exchange"
	"github.com/cambix/cambix_backend/internal/utils/mapping"
	"github.com/cambix/cambix_backend/internal/utils/pagination"
)

type PgxTransactionRepository struct {
	BaseRepository
	floatRepo portsrepo.FloatRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for exchange
// transactions. The float repository is injected so float mutations share
// the transaction's database transaction.
func newPgxTransactionRepository(pool *pgxpool.Pool, floatRepo portsrepo.FloatRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		floatRepo:      floatRepo,
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, number, window_id, opening_id, source_currency_id, target_currency_id, source_amount, target_amount, applied_rate, profit, rate_id, state, customer_id, temp_names, temp_surnames, temp_document, temp_description, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Number,
		&m.WindowID,
		&m.OpeningID,
		&m.SourceCurrencyID,
		&m.TargetCurrencyID,
		&m.SourceAmount,
		&m.TargetAmount,
		&m.AppliedRate,
		&m.Profit,
		&m.RateID,
		&m.State,
		&m.CustomerID,
		&m.TempNames,
		&m.TempSurnames,
		&m.TempDocument,
		&m.TempDescription,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var ms []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return mapping.ToDomainTransactionSlice(ms), nil
}

// SaveTransaction performs the whole exchange as one database transaction:
// verify the opening is still active, lock the float rows, re-check target
// availability under the lock, claim the daily sequence number, insert the
// transaction and apply the float deltas.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, houseID int64, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// The opening must still be active. FOR SHARE blocks a concurrent
	// closing without serializing exchanges against each other.
	var active bool
	err = tx.QueryRow(ctx, `
		SELECT active FROM openings WHERE opening_id = $1 FOR SHARE;
	`, txn.OpeningID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock opening %d: %w", txn.OpeningID, err)
	}
	if !active {
		return nil, fmt.Errorf("%w: opening %d is closed", apperrors.ErrInvalidState, txn.OpeningID)
	}

	locked, err := r.floatRepo.FindFloatEntriesForUpdate(ctx, tx, txn.OpeningID, []int64{txn.SourceCurrencyID, txn.TargetCurrencyID})
	if err != nil {
		return nil, err
	}

	target, ok := locked[txn.TargetCurrencyID]
	if !ok {
		return nil, r.insufficientFunds(ctx, tx, txn.TargetCurrencyID, txn.TargetAmount, decimal.Zero)
	}
	if target.Amount.LessThan(txn.TargetAmount) {
		return nil, r.insufficientFunds(ctx, tx, txn.TargetCurrencyID, txn.TargetAmount, target.Amount)
	}

	// The received currency may not have been seeded; create its entry on
	// first use.
	if _, ok := locked[txn.SourceCurrencyID]; !ok {
		_, err = tx.Exec(ctx, `
			INSERT INTO float_entries (opening_id, currency_id, amount, seed_amount)
			VALUES ($1, $2, 0, 0)
			ON CONFLICT (opening_id, currency_id) DO NOTHING;
		`, txn.OpeningID, txn.SourceCurrencyID)
		if err != nil {
			return nil, fmt.Errorf("failed to create float entry for currency %d: %w", txn.SourceCurrencyID, err)
		}
	}

	// Claim the next daily sequence for the house. The counter row is
	// created on first use; the upsert serializes concurrent claims.
	day := txn.CreatedAt.Truncate(24 * time.Hour)
	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO transaction_counters (house_id, day, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (house_id, day) DO UPDATE SET seq = transaction_counters.seq + 1
		RETURNING seq;
	`, houseID, day).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("failed to claim transaction sequence for house %d: %w", houseID, err)
	}
	txn.Number = exchange.FormatTransactionNumber(txn.CreatedAt, seq)

	m := mapping.ToModelTransaction(txn)
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (number, window_id, opening_id, source_currency_id, target_currency_id, source_amount, target_amount, applied_rate, profit, rate_id, state, customer_id, temp_names, temp_surnames, temp_document, temp_description, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING transaction_id;
	`, m.Number, m.WindowID, m.OpeningID, m.SourceCurrencyID, m.TargetCurrencyID, m.SourceAmount, m.TargetAmount, m.AppliedRate, m.Profit, m.RateID, m.State, m.CustomerID, m.TempNames, m.TempSurnames, m.TempDocument, m.TempDescription, m.Notes, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy).Scan(&txn.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction %s: %w", txn.Number, err)
	}

	deltas := map[int64]decimal.Decimal{
		txn.SourceCurrencyID: txn.SourceAmount,
		txn.TargetCurrencyID: txn.TargetAmount.Neg(),
	}
	if txn.SourceCurrencyID == txn.TargetCurrencyID {
		// Degenerate same-currency case; keep one net delta.
		deltas = map[int64]decimal.Decimal{
			txn.SourceCurrencyID: txn.SourceAmount.Sub(txn.TargetAmount),
		}
	}
	if err := r.floatRepo.ApplyFloatDeltasInTx(ctx, tx, txn.OpeningID, deltas); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

// insufficientFunds builds the typed availability error with the currency
// code resolved for the message.
func (r *PgxTransactionRepository) insufficientFunds(ctx context.Context, tx pgx.Tx, currencyID int64, required, available decimal.Decimal) error {
	var code string
	if err := tx.QueryRow(ctx, `SELECT code FROM currencies WHERE currency_id = $1;`, currencyID).Scan(&code); err != nil {
		code = fmt.Sprintf("currency %d", currencyID)
	}
	return apperrors.NewInsufficientFundsError(code, required, available)
}

// MarkTransactionCancelled flips a COMPLETED transaction to CANCELLED and
// stores the annotated notes. The compare-and-set on state makes a double
// cancel surface as ErrConflict.
func (r *PgxTransactionRepository) MarkTransactionCancelled(ctx context.Context, transactionID int64, notes string, updatedBy int64, at time.Time) error {
	query := `
		UPDATE transactions
		SET state = $2, notes = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1 AND state = $6;
	`
	tag, err := r.Pool.Exec(ctx, query,
		transactionID,
		string(domain.TransactionCancelled),
		notes,
		at,
		updatedBy,
		string(domain.TransactionCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to cancel transaction %d: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %d is not in COMPLETED state", apperrors.ErrConflict, transactionID)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindTransactionByNumber retrieves a transaction by its business number
// within a house.
func (r *PgxTransactionRepository) FindTransactionByNumber(ctx context.Context, houseID int64, number string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.number = $2
		  AND EXISTS (SELECT 1 FROM teller_windows w WHERE w.window_id = t.window_id AND w.house_id = $1);
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, houseID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", number, err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// ListTransactionsByWindow pages through the transactions of a window with a
// keyset cursor, newest first.
func (r *PgxTransactionRepository) ListTransactionsByWindow(ctx context.Context, windowID int64, limit int, nextToken *string, day *time.Time) ([]domain.Transaction, *string, error) {
	var cursorTime *time.Time
	var cursorID *int64
	if nextToken != nil && *nextToken != "" {
		t, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid pagination token")
		}
		cursorTime, cursorID = &t, &id
	}

	var dayStart, dayEnd *time.Time
	if day != nil {
		start := day.Truncate(24 * time.Hour)
		end := start.Add(24 * time.Hour)
		dayStart, dayEnd = &start, &end
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE window_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		  AND ($4::timestamptz IS NULL OR (created_at, transaction_id) < ($4, $5))
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $6;
	`
	rows, err := r.Pool.Query(ctx, query, windowID, dayStart, dayEnd, cursorTime, cursorID, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions for window %d: %w", windowID, err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		next = &token
	}
	return txns, next, nil
}

// ListTransactionsByCustomer retrieves the transactions of a registered
// customer, newest first.
func (r *PgxTransactionRepository) ListTransactionsByCustomer(ctx context.Context, customerID int64) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC, transaction_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for customer %d: %w", customerID, err)
	}
	return collectTransactions(rows)
}

// ListCompletedByOpening retrieves every COMPLETED transaction recorded
// under an opening, oldest first.
func (r *PgxTransactionRepository) ListCompletedByOpening(ctx context.Context, openingID int64) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE opening_id = $1 AND state = $2
		ORDER BY created_at ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, openingID, string(domain.TransactionCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to list completed transactions for opening %d: %w", openingID, err)
	}
	return collectTransactions(rows)
}

// CountTransactionsByRate returns how many transactions reference a rate.
func (r *PgxTransactionRepository) CountTransactionsByRate(ctx context.Context, rateID int64) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE rate_id = $1;`, rateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for rate %d: %w", rateID, err)
	}
	return count, nil
}
