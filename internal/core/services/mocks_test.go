package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/middleware"
)

// --- Mock repositories shared by the service test suites ---

// MockRateRepository is a mock type for the RateRepositoryFacade interface
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindRateByID(ctx context.Context, rateID int64) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) FindActiveRate(ctx context.Context, houseID, sourceCurrencyID, targetCurrencyID int64) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, houseID, sourceCurrencyID, targetCurrencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) ListActiveRatesByHouse(ctx context.Context, houseID int64) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, houseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) CountActiveRatesByHouse(ctx context.Context, houseID int64) (int64, error) {
	args := m.Called(ctx, houseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateRepository) ListRateHistory(ctx context.Context, houseID, sourceCurrencyID, targetCurrencyID int64, from, to *time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, houseID, sourceCurrencyID, targetCurrencyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) SaveRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) UpdateRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) SetRateActive(ctx context.Context, rateID int64, active bool, updatedBy int64, at time.Time) error {
	args := m.Called(ctx, rateID, active, updatedBy, at)
	return args.Error(0)
}

func (m *MockRateRepository) DeleteRate(ctx context.Context, rateID int64) error {
	args := m.Called(ctx, rateID)
	return args.Error(0)
}

func (m *MockRateRepository) RenewKeepDailyRates(ctx context.Context, houseID int64, day time.Time, renewedBy int64) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, houseID, day, renewedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) SaveRateAudit(ctx context.Context, entry domain.RateAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRateRepository) ListRateAudit(ctx context.Context, rateID int64) ([]domain.RateAuditEntry, error) {
	args := m.Called(ctx, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateAuditEntry), args.Error(1)
}

// MockWindowRepository is a mock type for the WindowRepositoryFacade interface
type MockWindowRepository struct {
	mock.Mock
}

func (m *MockWindowRepository) FindWindowByID(ctx context.Context, windowID int64) (*domain.TellerWindow, error) {
	args := m.Called(ctx, windowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TellerWindow), args.Error(1)
}

func (m *MockWindowRepository) FindWindowByIdentifier(ctx context.Context, houseID int64, identifier string) (*domain.TellerWindow, error) {
	args := m.Called(ctx, houseID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TellerWindow), args.Error(1)
}

func (m *MockWindowRepository) ListWindowsByHouse(ctx context.Context, houseID int64, state *domain.WindowState) ([]domain.TellerWindow, error) {
	args := m.Called(ctx, houseID, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TellerWindow), args.Error(1)
}

func (m *MockWindowRepository) SaveWindow(ctx context.Context, window domain.TellerWindow) (*domain.TellerWindow, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TellerWindow), args.Error(1)
}

func (m *MockWindowRepository) UpdateWindow(ctx context.Context, window domain.TellerWindow) error {
	args := m.Called(ctx, window)
	return args.Error(0)
}

func (m *MockWindowRepository) UpdateWindowState(ctx context.Context, windowID int64, from, to domain.WindowState, updatedBy int64, at time.Time) error {
	args := m.Called(ctx, windowID, from, to, updatedBy, at)
	return args.Error(0)
}

func (m *MockWindowRepository) SetWindowActive(ctx context.Context, windowID int64, active bool, updatedBy int64, at time.Time) error {
	args := m.Called(ctx, windowID, active, updatedBy, at)
	return args.Error(0)
}

func (m *MockWindowRepository) FindOpeningByID(ctx context.Context, openingID int64) (*domain.Opening, error) {
	args := m.Called(ctx, openingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opening), args.Error(1)
}

func (m *MockWindowRepository) FindActiveOpening(ctx context.Context, windowID int64) (*domain.Opening, error) {
	args := m.Called(ctx, windowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opening), args.Error(1)
}

func (m *MockWindowRepository) FindActiveOpeningByOperator(ctx context.Context, operatorID int64) (*domain.Opening, error) {
	args := m.Called(ctx, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opening), args.Error(1)
}

func (m *MockWindowRepository) ListOpeningsByWindow(ctx context.Context, windowID int64, from, to *time.Time) ([]domain.Opening, error) {
	args := m.Called(ctx, windowID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Opening), args.Error(1)
}

func (m *MockWindowRepository) CreateOpening(ctx context.Context, opening domain.Opening) (*domain.Opening, error) {
	args := m.Called(ctx, opening)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opening), args.Error(1)
}

func (m *MockWindowRepository) FindClosingByID(ctx context.Context, closingID int64) (*domain.Closing, error) {
	args := m.Called(ctx, closingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Closing), args.Error(1)
}

func (m *MockWindowRepository) FindClosingByOpening(ctx context.Context, openingID int64) (*domain.Closing, error) {
	args := m.Called(ctx, openingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Closing), args.Error(1)
}

func (m *MockWindowRepository) ListClosingsByWindow(ctx context.Context, windowID int64, from, to *time.Time) ([]domain.Closing, error) {
	args := m.Called(ctx, windowID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Closing), args.Error(1)
}

func (m *MockWindowRepository) CreateClosing(ctx context.Context, closing domain.Closing) (*domain.Closing, error) {
	args := m.Called(ctx, closing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Closing), args.Error(1)
}

// MockFloatRepository is a mock type for the FloatRepositoryFacade interface
type MockFloatRepository struct {
	mock.Mock
}

func (m *MockFloatRepository) ListFloatEntries(ctx context.Context, openingID int64) ([]domain.FloatEntry, error) {
	args := m.Called(ctx, openingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FloatEntry), args.Error(1)
}

func (m *MockFloatRepository) FindFloatEntry(ctx context.Context, openingID, currencyID int64) (*domain.FloatEntry, error) {
	args := m.Called(ctx, openingID, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FloatEntry), args.Error(1)
}

func (m *MockFloatRepository) FindFloatEntriesForUpdate(ctx context.Context, tx pgx.Tx, openingID int64, currencyIDs []int64) (map[int64]domain.FloatEntry, error) {
	args := m.Called(ctx, tx, openingID, currencyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.FloatEntry), args.Error(1)
}

func (m *MockFloatRepository) ApplyFloatDeltasInTx(ctx context.Context, tx pgx.Tx, openingID int64, deltas map[int64]decimal.Decimal) error {
	args := m.Called(ctx, tx, openingID, deltas)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByNumber(ctx context.Context, houseID int64, number string) (*domain.Transaction, error) {
	args := m.Called(ctx, houseID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByWindow(ctx context.Context, windowID int64, limit int, nextToken *string, day *time.Time) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, windowID, limit, nextToken, day)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return txns, next, args.Error(2)
}

func (m *MockTransactionRepository) ListTransactionsByCustomer(ctx context.Context, customerID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListCompletedByOpening(ctx context.Context, openingID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, openingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountTransactionsByRate(ctx context.Context, rateID int64) (int64, error) {
	args := m.Called(ctx, rateID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, houseID int64, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, houseID, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkTransactionCancelled(ctx context.Context, transactionID int64, notes string, updatedBy int64, at time.Time) error {
	args := m.Called(ctx, transactionID, notes, updatedBy, at)
	return args.Error(0)
}

// MockMasterDataRepository is a mock type for the MasterDataRepositoryFacade interface
type MockMasterDataRepository struct {
	mock.Mock
}

func (m *MockMasterDataRepository) FindHouseByID(ctx context.Context, houseID int64) (*domain.ExchangeHouse, error) {
	args := m.Called(ctx, houseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeHouse), args.Error(1)
}

func (m *MockMasterDataRepository) ListActiveHouses(ctx context.Context) ([]domain.ExchangeHouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeHouse), args.Error(1)
}

func (m *MockMasterDataRepository) FindCurrencyByID(ctx context.Context, currencyID int64) (*domain.Currency, error) {
	args := m.Called(ctx, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockMasterDataRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockMasterDataRepository) FindCurrenciesByIDs(ctx context.Context, currencyIDs []int64) (map[int64]domain.Currency, error) {
	args := m.Called(ctx, currencyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.Currency), args.Error(1)
}

func (m *MockMasterDataRepository) FindOperatorByID(ctx context.Context, operatorID int64) (*domain.Operator, error) {
	args := m.Called(ctx, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}

func (m *MockMasterDataRepository) FindOperatorByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}

func (m *MockMasterDataRepository) FindCustomerByID(ctx context.Context, customerID int64) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// --- Context and fixture helpers ---

func ctxWithOperator(operatorID int64, role domain.OperatorRole, houseID int64) context.Context {
	return middleware.WithOperator(context.Background(), middleware.OperatorContext{
		OperatorID: operatorID,
		Role:       role,
		HouseID:    houseID,
	})
}

func adminCtx(operatorID, houseID int64) context.Context {
	return ctxWithOperator(operatorID, domain.RoleAdmin, houseID)
}

func masterAdminCtx(operatorID, houseID int64) context.Context {
	return ctxWithOperator(operatorID, domain.RoleMasterAdmin, houseID)
}

func tellerCtx(operatorID, houseID int64) context.Context {
	return ctxWithOperator(operatorID, domain.RoleTeller, houseID)
}

func testCurrency(id int64, code string) *domain.Currency {
	return &domain.Currency{CurrencyID: id, Code: code, Name: code, Decimals: 2, IsActive: true}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
