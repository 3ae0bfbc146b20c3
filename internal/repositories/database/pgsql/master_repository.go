package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	"github.com/cambix/cambix_backend/internal/models"
	"github.com/cambix/cambix_backend/internal/utils/mapping"
)

type PgxMasterDataRepository struct {
	BaseRepository
}

// newPgxMasterDataRepository creates the read-only repository for houses,
// currencies, operators and customers.
func newPgxMasterDataRepository(pool *pgxpool.Pool) portsrepo.MasterDataRepositoryFacade {
	return &PgxMasterDataRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MasterDataRepositoryFacade = (*PgxMasterDataRepository)(nil)

// FindHouseByID retrieves an exchange house by its ID.
func (r *PgxMasterDataRepository) FindHouseByID(ctx context.Context, houseID int64) (*domain.ExchangeHouse, error) {
	query := `
		SELECT house_id, identifier, name, master_currency_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_houses
		WHERE house_id = $1;
	`
	var m models.ExchangeHouse
	err := r.Pool.QueryRow(ctx, query, houseID).Scan(
		&m.HouseID,
		&m.Identifier,
		&m.Name,
		&m.MasterCurrencyID,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find house %d: %w", houseID, err)
	}
	d := mapping.ToDomainHouse(m)
	return &d, nil
}

// ListActiveHouses retrieves every active exchange house.
func (r *PgxMasterDataRepository) ListActiveHouses(ctx context.Context) ([]domain.ExchangeHouse, error) {
	query := `
		SELECT house_id, identifier, name, master_currency_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_houses
		WHERE is_active = TRUE
		ORDER BY house_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	defer rows.Close()

	var houses []domain.ExchangeHouse
	for rows.Next() {
		var m models.ExchangeHouse
		if err := rows.Scan(
			&m.HouseID,
			&m.Identifier,
			&m.Name,
			&m.MasterCurrencyID,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan house row: %w", err)
		}
		houses = append(houses, mapping.ToDomainHouse(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating house rows: %w", err)
	}
	return houses, nil
}

func (r *PgxMasterDataRepository) scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var m models.Currency
	err := row.Scan(
		&m.CurrencyID,
		&m.Code,
		&m.Name,
		&m.Symbol,
		&m.Decimals,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan currency: %w", err)
	}
	d := mapping.ToDomainCurrency(m)
	return &d, nil
}

// FindCurrencyByID retrieves a currency by its ID.
func (r *PgxMasterDataRepository) FindCurrencyByID(ctx context.Context, currencyID int64) (*domain.Currency, error) {
	query := `
		SELECT currency_id, code, name, symbol, decimals, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		WHERE currency_id = $1;
	`
	return r.scanCurrency(r.Pool.QueryRow(ctx, query, currencyID))
}

// FindCurrencyByCode retrieves a currency by its ISO code.
func (r *PgxMasterDataRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `
		SELECT currency_id, code, name, symbol, decimals, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		WHERE code = $1;
	`
	return r.scanCurrency(r.Pool.QueryRow(ctx, query, code))
}

// FindCurrenciesByIDs retrieves multiple currencies keyed by id.
func (r *PgxMasterDataRepository) FindCurrenciesByIDs(ctx context.Context, currencyIDs []int64) (map[int64]domain.Currency, error) {
	if len(currencyIDs) == 0 {
		return map[int64]domain.Currency{}, nil
	}
	query := `
		SELECT currency_id, code, name, symbol, decimals, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		WHERE currency_id = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, query, currencyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies by ids: %w", err)
	}
	defer rows.Close()

	currencies := make(map[int64]domain.Currency)
	for rows.Next() {
		var m models.Currency
		if err := rows.Scan(
			&m.CurrencyID,
			&m.Code,
			&m.Name,
			&m.Symbol,
			&m.Decimals,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		currencies[m.CurrencyID] = mapping.ToDomainCurrency(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency rows: %w", err)
	}
	return currencies, nil
}

func (r *PgxMasterDataRepository) scanOperator(row pgx.Row) (*domain.Operator, error) {
	var m models.Operator
	err := row.Scan(
		&m.OperatorID,
		&m.Username,
		&m.PasswordHash,
		&m.Name,
		&m.Role,
		&m.HouseID,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan operator: %w", err)
	}
	d := mapping.ToDomainOperator(m)
	return &d, nil
}

// FindOperatorByID retrieves an operator by its ID.
func (r *PgxMasterDataRepository) FindOperatorByID(ctx context.Context, operatorID int64) (*domain.Operator, error) {
	query := `
		SELECT operator_id, username, password_hash, name, role, house_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM operators
		WHERE operator_id = $1;
	`
	return r.scanOperator(r.Pool.QueryRow(ctx, query, operatorID))
}

// FindOperatorByUsername retrieves an operator by username, for login.
func (r *PgxMasterDataRepository) FindOperatorByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	query := `
		SELECT operator_id, username, password_hash, name, role, house_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM operators
		WHERE username = $1;
	`
	return r.scanOperator(r.Pool.QueryRow(ctx, query, username))
}

// FindCustomerByID retrieves a registered customer by its ID.
func (r *PgxMasterDataRepository) FindCustomerByID(ctx context.Context, customerID int64) (*domain.Customer, error) {
	query := `
		SELECT customer_id, name, document, description, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM customers
		WHERE customer_id = $1;
	`
	var m models.Customer
	err := r.Pool.QueryRow(ctx, query, customerID).Scan(
		&m.CustomerID,
		&m.Name,
		&m.Document,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer %d: %w", customerID, err)
	}
	d := mapping.ToDomainCustomer(m)
	return &d, nil
}
