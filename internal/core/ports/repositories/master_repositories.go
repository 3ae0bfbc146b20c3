package repositories

import (
	"context"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// MasterDataReader defines read access to houses, currencies, operators and
// customers.
type MasterDataReader interface {
	FindHouseByID(ctx context.Context, houseID int64) (*domain.ExchangeHouse, error)
	ListActiveHouses(ctx context.Context) ([]domain.ExchangeHouse, error)

	FindCurrencyByID(ctx context.Context, currencyID int64) (*domain.Currency, error)
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// FindCurrenciesByIDs retrieves currencies keyed by id. Missing ids are
	// simply absent from the map.
	FindCurrenciesByIDs(ctx context.Context, currencyIDs []int64) (map[int64]domain.Currency, error)

	FindOperatorByID(ctx context.Context, operatorID int64) (*domain.Operator, error)
	FindOperatorByUsername(ctx context.Context, username string) (*domain.Operator, error)

	FindCustomerByID(ctx context.Context, customerID int64) (*domain.Customer, error)
}

// MasterDataRepositoryFacade combines master data repository operations.
type MasterDataRepositoryFacade interface {
	MasterDataReader
}
