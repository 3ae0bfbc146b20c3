package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	"github.com/cambix/cambix_backend/internal/models"
	"github.com/cambix/cambix_backend/internal/utils/mapping"
)

// uqActiveRatePerPair is the partial unique index over (house_id,
// source_currency_id, target_currency_id) WHERE active. It is the arbiter
// of the single-active-rate rule under concurrency.
const uqActiveRatePerPair = "uq_rates_active_pair"

type PgxRateRepository struct {
	BaseRepository
}

// newPgxRateRepository creates a new repository for exchange rates and their
// audit trail.
func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepositoryFacade {
	return &PgxRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

const rateColumns = `rate_id, house_id, source_currency_id, target_currency_id, buy_rate, sell_rate, active, keep_daily, effective_at, created_at, created_by, last_updated_at, last_updated_by`

func scanRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.RateID,
		&m.HouseID,
		&m.SourceCurrencyID,
		&m.TargetCurrencyID,
		&m.BuyRate,
		&m.SellRate,
		&m.Active,
		&m.KeepDaily,
		&m.EffectiveAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectRates(rows pgx.Rows) ([]domain.ExchangeRate, error) {
	defer rows.Close()
	var ms []models.ExchangeRate
	for rows.Next() {
		m, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate rows: %w", err)
	}
	return mapping.ToDomainRateSlice(ms), nil
}

// SaveRate persists a new rate. The partial unique index turns a duplicate
// active pair into ErrConflict.
func (r *PgxRateRepository) SaveRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error) {
	m := mapping.ToModelRate(rate)
	query := `
		INSERT INTO exchange_rates (house_id, source_currency_id, target_currency_id, buy_rate, sell_rate, active, keep_daily, effective_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING rate_id;
	`
	err := r.Pool.QueryRow(ctx, query,
		m.HouseID,
		m.SourceCurrencyID,
		m.TargetCurrencyID,
		m.BuyRate,
		m.SellRate,
		m.Active,
		m.KeepDaily,
		m.EffectiveAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&rate.RateID)
	if err != nil {
		if isUniqueViolation(err, uqActiveRatePerPair) {
			return nil, apperrors.NewConflictError("an active rate already exists for this currency pair")
		}
		return nil, fmt.Errorf("failed to save rate: %w", err)
	}
	return &rate, nil
}

// UpdateRate updates the margins and keep-daily flag of a rate.
func (r *PgxRateRepository) UpdateRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		UPDATE exchange_rates
		SET buy_rate = $2, sell_rate = $3, keep_daily = $4, last_updated_at = $5, last_updated_by = $6
		WHERE rate_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		rate.RateID,
		rate.BuyRate,
		rate.SellRate,
		rate.KeepDaily,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update rate %d: %w", rate.RateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetRateActive flips the active flag. On activation the partial unique
// index rejects a second active rate for the pair.
func (r *PgxRateRepository) SetRateActive(ctx context.Context, rateID int64, active bool, updatedBy int64, at time.Time) error {
	query := `
		UPDATE exchange_rates
		SET active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE rate_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, rateID, active, at, updatedBy)
	if err != nil {
		if isUniqueViolation(err, uqActiveRatePerPair) {
			return apperrors.NewConflictError("another active rate exists for this currency pair")
		}
		return fmt.Errorf("failed to set rate %d active=%t: %w", rateID, active, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindRateByID retrieves a rate by its ID.
func (r *PgxRateRepository) FindRateByID(ctx context.Context, rateID int64) (*domain.ExchangeRate, error) {
	query := `SELECT ` + rateColumns + ` FROM exchange_rates WHERE rate_id = $1;`
	m, err := scanRate(r.Pool.QueryRow(ctx, query, rateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rate %d: %w", rateID, err)
	}
	d := mapping.ToDomainRate(m)
	return &d, nil
}

// FindActiveRate retrieves the single active rate for a pair within a house.
func (r *PgxRateRepository) FindActiveRate(ctx context.Context, houseID, sourceCurrencyID, targetCurrencyID int64) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE house_id = $1 AND source_currency_id = $2 AND target_currency_id = $3 AND active = TRUE;
	`
	m, err := scanRate(r.Pool.QueryRow(ctx, query, houseID, sourceCurrencyID, targetCurrencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active rate for pair %d->%d: %w", sourceCurrencyID, targetCurrencyID, err)
	}
	d := mapping.ToDomainRate(m)
	return &d, nil
}

// ListActiveRatesByHouse retrieves all active rates of a house.
func (r *PgxRateRepository) ListActiveRatesByHouse(ctx context.Context, houseID int64) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE house_id = $1 AND active = TRUE
		ORDER BY source_currency_id, target_currency_id;
	`
	rows, err := r.Pool.Query(ctx, query, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rates for house %d: %w", houseID, err)
	}
	return collectRates(rows)
}

// CountActiveRatesByHouse returns the number of active rates of a house.
func (r *PgxRateRepository) CountActiveRatesByHouse(ctx context.Context, houseID int64) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exchange_rates WHERE house_id = $1 AND active = TRUE;`, houseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active rates for house %d: %w", houseID, err)
	}
	return count, nil
}

// ListRateHistory retrieves every rate for a pair, newest first.
func (r *PgxRateRepository) ListRateHistory(ctx context.Context, houseID, sourceCurrencyID, targetCurrencyID int64, from, to *time.Time) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE house_id = $1 AND source_currency_id = $2 AND target_currency_id = $3
		  AND ($4::timestamptz IS NULL OR effective_at >= $4)
		  AND ($5::timestamptz IS NULL OR effective_at <= $5)
		ORDER BY effective_at DESC, rate_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, houseID, sourceCurrencyID, targetCurrencyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history for pair %d->%d: %w", sourceCurrencyID, targetCurrencyID, err)
	}
	return collectRates(rows)
}

// DeleteRate removes a rate permanently. The service layer has already
// verified no transaction references it.
func (r *PgxRateRepository) DeleteRate(ctx context.Context, rateID int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM exchange_rates WHERE rate_id = $1;`, rateID)
	if err != nil {
		return fmt.Errorf("failed to delete rate %d: %w", rateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RenewKeepDailyRates deactivates every keep-daily active rate of the house
// whose effective date is older than day, and inserts a fresh active copy
// effective at day, in one transaction.
func (r *PgxRateRepository) RenewKeepDailyRates(ctx context.Context, houseID int64, day time.Time, renewedBy int64) ([]domain.ExchangeRate, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Lock the stale keep-daily rates so two first-opens of the day cannot
	// both renew them.
	selectQuery := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE house_id = $1 AND active = TRUE AND keep_daily = TRUE AND effective_at < $2
		ORDER BY rate_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, selectQuery, houseID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to select stale keep-daily rates for house %d: %w", houseID, err)
	}
	stale, err := collectRates(rows)
	if err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return nil, r.Commit(ctx, tx)
	}

	now := time.Now().UTC()
	renewed := make([]domain.ExchangeRate, 0, len(stale))
	for _, old := range stale {
		_, err = tx.Exec(ctx, `
			UPDATE exchange_rates
			SET active = FALSE, last_updated_at = $2, last_updated_by = $3
			WHERE rate_id = $1;
		`, old.RateID, now, renewedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to deactivate stale rate %d: %w", old.RateID, err)
		}

		fresh := old
		fresh.RateID = 0
		fresh.Active = true
		fresh.EffectiveAt = day
		fresh.CreatedAt = now
		fresh.CreatedBy = renewedBy
		fresh.LastUpdatedAt = now
		fresh.LastUpdatedBy = renewedBy

		err = tx.QueryRow(ctx, `
			INSERT INTO exchange_rates (house_id, source_currency_id, target_currency_id, buy_rate, sell_rate, active, keep_daily, effective_at, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, TRUE, TRUE, $6, $7, $8, $7, $8)
			RETURNING rate_id;
		`, fresh.HouseID, fresh.SourceCurrencyID, fresh.TargetCurrencyID, fresh.BuyRate, fresh.SellRate, fresh.EffectiveAt, now, renewedBy).Scan(&fresh.RateID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert renewed rate for pair %d->%d: %w", fresh.SourceCurrencyID, fresh.TargetCurrencyID, err)
		}
		renewed = append(renewed, fresh)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return renewed, nil
}

// SaveRateAudit appends an audit entry. Snapshots are stored as JSONB.
func (r *PgxRateRepository) SaveRateAudit(ctx context.Context, entry domain.RateAuditEntry) error {
	m := mapping.ToModelRateAudit(entry)
	query := `
		INSERT INTO rate_audit_entries (audit_id, rate_id, operator_id, action, before_state, after_state, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AuditID,
		m.RateID,
		m.OperatorID,
		m.Action,
		m.Before,
		m.After,
		m.Reason,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit entry for rate %d: %w", m.RateID, err)
	}
	return nil
}

// ListRateAudit retrieves the audit trail of a rate, newest first.
func (r *PgxRateRepository) ListRateAudit(ctx context.Context, rateID int64) ([]domain.RateAuditEntry, error) {
	query := `
		SELECT audit_id, rate_id, operator_id, action, before_state, after_state, reason, created_at
		FROM rate_audit_entries
		WHERE rate_id = $1
		ORDER BY created_at DESC, audit_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for rate %d: %w", rateID, err)
	}
	defer rows.Close()

	var ms []models.RateAuditEntry
	for rows.Next() {
		var m models.RateAuditEntry
		if err := rows.Scan(
			&m.AuditID,
			&m.RateID,
			&m.OperatorID,
			&m.Action,
			&m.Before,
			&m.After,
			&m.Reason,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return mapping.ToDomainRateAuditSlice(ms), nil
}
