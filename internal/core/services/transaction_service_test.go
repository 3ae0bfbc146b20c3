package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/core/services"
	"github.com/cambix/cambix_backend/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo    *MockTransactionRepository
	mockWindowRepo *MockWindowRepository
	mockRateRepo   *MockRateRepository
	mockMasterRepo *MockMasterDataRepository
	service        *services.TransactionService
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockWindowRepo = new(MockWindowRepository)
	suite.mockRateRepo = new(MockRateRepository)
	suite.mockMasterRepo = new(MockMasterDataRepository)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockWindowRepo, suite.mockRateRepo, suite.mockMasterRepo)
}

func usdPenRate() *domain.ExchangeRate {
	return &domain.ExchangeRate{
		RateID:           42,
		HouseID:          1,
		SourceCurrencyID: 10,
		TargetCurrencyID: 20,
		BuyRate:          dec("3.70"),
		SellRate:         dec("3.75"),
		Active:           true,
	}
}

func (suite *TransactionServiceTestSuite) expectOpenWindowWithHolder(holderID int64) {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: holderID, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()
}

func (suite *TransactionServiceTestSuite) expectPairAndRate() {
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(testCurrency(10, "USD"), nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "PEN").Return(testCurrency(20, "PEN"), nil).Once()
	suite.mockRateRepo.On("FindActiveRate", mock.Anything, int64(1), int64(10), int64(20)).Return(usdPenRate(), nil).Once()
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_Success() {
	suite.expectOpenWindowWithHolder(3)
	suite.expectPairAndRate()
	suite.mockTxnRepo.On("SaveTransaction", mock.Anything, int64(1), mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			txn := args.Get(2).(domain.Transaction)
			suite.True(txn.TargetAmount.Equal(dec("375.00")), "target amount was %s", txn.TargetAmount)
			suite.True(txn.Profit.Equal(dec("5.00")), "profit was %s", txn.Profit)
			suite.True(txn.AppliedRate.Equal(dec("3.75")))
			suite.Equal(int64(42), txn.RateID)
			suite.Equal(domain.TransactionCompleted, txn.State)
			suite.Equal(int64(3), txn.CreatedBy)
		}).
		Return(&domain.Transaction{
			TransactionID:    100,
			Number:           "TX2506100001",
			WindowID:         2,
			OpeningID:        5,
			SourceCurrencyID: 10,
			TargetCurrencyID: 20,
			SourceAmount:     dec("100"),
			TargetAmount:     dec("375.00"),
			AppliedRate:      dec("3.75"),
			Profit:           dec("5.00"),
			RateID:           42,
			State:            domain.TransactionCompleted,
		}, nil).Once()
	suite.mockMasterRepo.On("FindCurrenciesByIDs", mock.Anything, []int64{10, 20}).
		Return(map[int64]domain.Currency{10: *testCurrency(10, "USD"), 20: *testCurrency(20, "PEN")}, nil).Once()

	resp, err := suite.service.ProcessTransaction(tellerCtx(3, 1), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
	})

	suite.Require().NoError(err)
	suite.Equal("TX2506100001", resp.Number)
	suite.True(resp.TargetAmount.Equal(dec("375.00")))
	suite.True(resp.Profit.Equal(dec("5.00")))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_InsufficientFloat() {
	suite.expectOpenWindowWithHolder(3)
	suite.expectPairAndRate()
	suite.mockTxnRepo.On("SaveTransaction", mock.Anything, int64(1), mock.AnythingOfType("domain.Transaction")).
		Return(nil, apperrors.NewInsufficientFundsError("PEN", dec("375.00"), dec("300"))).Once()

	_, err := suite.service.ProcessTransaction(tellerCtx(3, 1), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	var insufficient *apperrors.InsufficientFundsError
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal("PEN", insufficient.CurrencyCode)
	suite.True(insufficient.Available.Equal(dec("300")))
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_WindowNotOpen() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(closedWindow(), nil).Once()

	_, err := suite.service.ProcessTransaction(tellerCtx(3, 1), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_CrossHouseAdminForbidden() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	_, err := suite.service.ProcessTransaction(adminCtx(77, 99), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_NonHolderForbidden() {
	suite.expectOpenWindowWithHolder(3)

	_, err := suite.service.ProcessTransaction(tellerCtx(99, 1), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_BothCustomerFormsRejected() {
	customerID := int64(8)
	_, err := suite.service.ProcessTransaction(tellerCtx(3, 1), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
		CustomerID:         &customerID,
		TemporaryCustomer:  &dto.TemporaryCustomerInput{Names: "Ana", Surnames: "Diaz"},
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_NonPositiveAmount() {
	_, err := suite.service.ProcessTransaction(tellerCtx(3, 1), 2, dto.CreateTransactionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("0"),
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_CreatorCancels() {
	txn := &domain.Transaction{
		TransactionID:    100,
		Number:           "TX2506100001",
		WindowID:         2,
		SourceCurrencyID: 10,
		TargetCurrencyID: 20,
		State:            domain.TransactionCompleted,
		Notes:            "walk-in",
		AuditFields:      domain.AuditFields{CreatedBy: 3},
	}
	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, int64(100)).Return(txn, nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	suite.mockTxnRepo.On("MarkTransactionCancelled", mock.Anything, int64(100), "walk-in\nCANCELLED: customer changed their mind", int64(3), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockMasterRepo.On("FindCurrenciesByIDs", mock.Anything, []int64{10, 20}).
		Return(map[int64]domain.Currency{10: *testCurrency(10, "USD"), 20: *testCurrency(20, "PEN")}, nil).Once()

	resp, err := suite.service.CancelTransaction(tellerCtx(3, 1), 100, dto.CancelTransactionRequest{Reason: "customer changed their mind"})

	suite.Require().NoError(err)
	suite.Equal("CANCELLED", resp.State)
	suite.Contains(resp.Notes, "CANCELLED: customer changed their mind")
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_OtherTellerForbidden() {
	txn := &domain.Transaction{TransactionID: 100, WindowID: 2, State: domain.TransactionCompleted, AuditFields: domain.AuditFields{CreatedBy: 3}}
	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, int64(100)).Return(txn, nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	_, err := suite.service.CancelTransaction(tellerCtx(99, 1), 100, dto.CancelTransactionRequest{Reason: "typo"})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "MarkTransactionCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_CrossHouseAdminForbidden() {
	txn := &domain.Transaction{TransactionID: 100, WindowID: 2, State: domain.TransactionCompleted, AuditFields: domain.AuditFields{CreatedBy: 3}}
	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, int64(100)).Return(txn, nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	_, err := suite.service.CancelTransaction(adminCtx(77, 99), 100, dto.CancelTransactionRequest{Reason: "not ours"})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "MarkTransactionCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_BlankReasonRejected() {
	_, err := suite.service.CancelTransaction(tellerCtx(3, 1), 100, dto.CancelTransactionRequest{Reason: "   "})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_AlreadyCancelled() {
	txn := &domain.Transaction{TransactionID: 100, WindowID: 2, State: domain.TransactionCancelled, AuditFields: domain.AuditFields{CreatedBy: 3}}
	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, int64(100)).Return(txn, nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	suite.mockTxnRepo.On("MarkTransactionCancelled", mock.Anything, int64(100), mock.AnythingOfType("string"), int64(3), mock.AnythingOfType("time.Time")).
		Return(apperrors.NewConflictError("transaction 100 is not in COMPLETED state")).Once()

	_, err := suite.service.CancelTransaction(tellerCtx(3, 1), 100, dto.CancelTransactionRequest{Reason: "duplicate"})

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransactionServiceTestSuite) TestCalculateConversion_Quote() {
	suite.expectPairAndRate()

	resp, err := suite.service.CalculateConversion(tellerCtx(3, 1), 1, dto.ConversionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("250"),
	})

	suite.Require().NoError(err)
	suite.True(resp.TargetAmount.Equal(dec("937.50")), "target amount was %s", resp.TargetAmount)
	suite.True(resp.Profit.Equal(dec("12.50")), "profit was %s", resp.Profit)
	suite.Equal(int64(42), resp.RateID)
}

func (suite *TransactionServiceTestSuite) TestCalculateConversion_NoActiveRate() {
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(testCurrency(10, "USD"), nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "EUR").Return(testCurrency(30, "EUR"), nil).Once()
	suite.mockRateRepo.On("FindActiveRate", mock.Anything, int64(1), int64(10), int64(30)).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CalculateConversion(tellerCtx(3, 1), 1, dto.ConversionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "EUR",
		SourceAmount:       dec("100"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Contains(err.Error(), "no active rate")
}

func (suite *TransactionServiceTestSuite) TestCalculateConversion_CrossHouseForbidden() {
	_, err := suite.service.CalculateConversion(tellerCtx(3, 2), 1, dto.ConversionRequest{
		SourceCurrencyCode: "USD",
		TargetCurrencyCode: "PEN",
		SourceAmount:       dec("100"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindActiveRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestListTransactionsByWindow_LimitDefaultsAndCaps() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Twice()
	suite.mockMasterRepo.On("FindCurrenciesByIDs", mock.Anything, mock.Anything).Return(map[int64]domain.Currency{}, nil)

	// Zero limit falls back to the default page size.
	suite.mockTxnRepo.On("ListTransactionsByWindow", mock.Anything, int64(2), 50, (*string)(nil), (*time.Time)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()
	_, err := suite.service.ListTransactionsByWindow(tellerCtx(3, 1), 2, 0, nil, nil)
	suite.Require().NoError(err)

	// Oversized limits are capped.
	suite.mockTxnRepo.On("ListTransactionsByWindow", mock.Anything, int64(2), 100, (*string)(nil), (*time.Time)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()
	_, err = suite.service.ListTransactionsByWindow(tellerCtx(3, 1), 2, 500, nil, nil)
	suite.Require().NoError(err)

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
