package services_test

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/core/services"
	"github.com/cambix/cambix_backend/internal/dto"
)

type WindowServiceTestSuite struct {
	suite.Suite
	mockWindowRepo *MockWindowRepository
	mockRateRepo   *MockRateRepository
	mockFloatRepo  *MockFloatRepository
	mockTxnRepo    *MockTransactionRepository
	mockMasterRepo *MockMasterDataRepository
	service        *services.WindowService
}

func (suite *WindowServiceTestSuite) SetupTest() {
	suite.mockWindowRepo = new(MockWindowRepository)
	suite.mockRateRepo = new(MockRateRepository)
	suite.mockFloatRepo = new(MockFloatRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockMasterRepo = new(MockMasterDataRepository)

	rateSvc := services.NewRateService(suite.mockRateRepo, suite.mockTxnRepo, suite.mockMasterRepo)
	floatSvc := services.NewFloatLedgerService(suite.mockWindowRepo, suite.mockFloatRepo, suite.mockTxnRepo, suite.mockMasterRepo)
	suite.service = services.NewWindowService(suite.mockWindowRepo, suite.mockRateRepo, suite.mockMasterRepo, rateSvc, floatSvc)
}

func closedWindow() *domain.TellerWindow {
	return &domain.TellerWindow{WindowID: 2, HouseID: 1, Identifier: "V-01", Name: "Main window", State: domain.WindowClosed, IsActive: true}
}

func openWindow() *domain.TellerWindow {
	w := closedWindow()
	w.State = domain.WindowOpen
	return w
}

func (suite *WindowServiceTestSuite) TestCreateWindow_Success() {
	suite.mockMasterRepo.On("FindHouseByID", mock.Anything, int64(1)).Return(&domain.ExchangeHouse{HouseID: 1, IsActive: true}, nil).Once()
	suite.mockWindowRepo.On("SaveWindow", mock.Anything, mock.AnythingOfType("domain.TellerWindow")).
		Run(func(args mock.Arguments) {
			w := args.Get(1).(domain.TellerWindow)
			suite.Equal(domain.WindowClosed, w.State)
			suite.True(w.IsActive)
		}).
		Return(closedWindow(), nil).Once()

	resp, err := suite.service.CreateWindow(adminCtx(7, 1), dto.CreateWindowRequest{HouseID: 1, Identifier: "V-01", Name: "Main window"})

	suite.Require().NoError(err)
	suite.Equal("CLOSED", resp.State)
	suite.mockWindowRepo.AssertExpectations(suite.T())
}

func (suite *WindowServiceTestSuite) TestCreateWindow_RequiresAdmin() {
	_, err := suite.service.CreateWindow(tellerCtx(3, 1), dto.CreateWindowRequest{HouseID: 1, Identifier: "V-01", Name: "Main window"})
	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *WindowServiceTestSuite) TestCreateWindow_CrossHouseAdminForbidden() {
	_, err := suite.service.CreateWindow(adminCtx(7, 99), dto.CreateWindowRequest{HouseID: 1, Identifier: "V-01", Name: "Main window"})
	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "SaveWindow", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_Success() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(closedWindow(), nil).Once()
	suite.mockWindowRepo.On("FindActiveOpeningByOperator", mock.Anything, int64(3)).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("RenewKeepDailyRates", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), int64(3)).Return([]domain.ExchangeRate{}, nil).Once()
	suite.mockRateRepo.On("CountActiveRatesByHouse", mock.Anything, int64(1)).Return(int64(2), nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(testCurrency(10, "USD"), nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "PEN").Return(testCurrency(20, "PEN"), nil).Once()
	suite.mockWindowRepo.On("CreateOpening", mock.Anything, mock.AnythingOfType("domain.Opening")).
		Run(func(args mock.Arguments) {
			opening := args.Get(1).(domain.Opening)
			suite.Equal(int64(3), opening.OperatorID)
			suite.True(opening.Active)
			suite.Require().Len(opening.FloatEntries, 2)
			suite.True(opening.FloatEntries[0].SeedAmount.Equal(dec("1000")))
			suite.True(opening.FloatEntries[0].Amount.Equal(dec("1000")))
		}).
		Return(&domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}, nil).Once()

	resp, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{
			{CurrencyCode: "USD", Amount: dec("1000")},
			{CurrencyCode: "PEN", Amount: dec("2000")},
		},
	})

	suite.Require().NoError(err)
	suite.Equal(int64(5), resp.OpeningID)
	suite.mockWindowRepo.AssertExpectations(suite.T())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *WindowServiceTestSuite) TestOpenWindow_DisabledWindow() {
	w := closedWindow()
	w.IsActive = false
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(w, nil).Once()

	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("1000")}},
	})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_AlreadyOpen() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("1000")}},
	})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "CreateOpening", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_NoActiveRates() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(closedWindow(), nil).Once()
	suite.mockWindowRepo.On("FindActiveOpeningByOperator", mock.Anything, int64(3)).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("RenewKeepDailyRates", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), int64(3)).Return([]domain.ExchangeRate{}, nil).Once()
	suite.mockRateRepo.On("CountActiveRatesByHouse", mock.Anything, int64(1)).Return(int64(0), nil).Once()

	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("1000")}},
	})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.Contains(err.Error(), "no active exchange rates")
}

func (suite *WindowServiceTestSuite) TestOpenWindow_DuplicateSeedCurrency() {
	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{
			{CurrencyCode: "USD", Amount: dec("1000")},
			{CurrencyCode: "USD", Amount: dec("500")},
		},
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_NegativeSeedAmount() {
	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("-1")}},
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_AllZeroSeed() {
	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{
			{CurrencyCode: "USD", Amount: dec("0")},
			{CurrencyCode: "PEN", Amount: dec("0")},
		},
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "greater than zero")
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "CreateOpening", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_CrossHouseForbidden() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(closedWindow(), nil).Once()

	_, err := suite.service.OpenWindow(tellerCtx(3, 99), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("1000")}},
	})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "CreateOpening", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_TellerAlreadyHoldsWindow() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(closedWindow(), nil).Once()
	elsewhere := &domain.Opening{OpeningID: 8, WindowID: 4, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpeningByOperator", mock.Anything, int64(3)).Return(elsewhere, nil).Once()

	_, err := suite.service.OpenWindow(tellerCtx(3, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("1000")}},
	})

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "CreateOpening", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestOpenWindow_AdminMayHoldSecondWindow() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(closedWindow(), nil).Once()
	suite.mockRateRepo.On("RenewKeepDailyRates", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), int64(7)).Return([]domain.ExchangeRate{}, nil).Once()
	suite.mockRateRepo.On("CountActiveRatesByHouse", mock.Anything, int64(1)).Return(int64(2), nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(testCurrency(10, "USD"), nil).Once()
	suite.mockWindowRepo.On("CreateOpening", mock.Anything, mock.AnythingOfType("domain.Opening")).
		Return(&domain.Opening{OpeningID: 6, WindowID: 2, OperatorID: 7, Active: true}, nil).Once()

	resp, err := suite.service.OpenWindow(adminCtx(7, 1), 2, dto.OpenWindowRequest{
		Float: []dto.FloatSeedInput{{CurrencyCode: "USD", Amount: dec("1000")}},
	})

	suite.Require().NoError(err)
	suite.Equal(int64(6), resp.OpeningID)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "FindActiveOpeningByOperator", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestPauseWindow_NonHolderForbidden() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()

	_, err := suite.service.PauseWindow(tellerCtx(99, 1), 2)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "UpdateWindowState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestPauseWindow_CrossHouseAdminForbidden() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	_, err := suite.service.PauseWindow(adminCtx(77, 99), 2)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "FindActiveOpening", mock.Anything, mock.Anything)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "UpdateWindowState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestPauseWindow_MasterAdminSpansHouses() {
	paused := closedWindow()
	paused.State = domain.WindowPaused
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()
	suite.mockWindowRepo.On("UpdateWindowState", mock.Anything, int64(2), domain.WindowOpen, domain.WindowPaused, int64(8), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(paused, nil).Once()

	resp, err := suite.service.PauseWindow(masterAdminCtx(8, 99), 2)

	suite.Require().NoError(err)
	suite.Equal("PAUSED", resp.State)
}

func (suite *WindowServiceTestSuite) TestPauseWindow_HolderPauses() {
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()
	suite.mockWindowRepo.On("UpdateWindowState", mock.Anything, int64(2), domain.WindowOpen, domain.WindowPaused, int64(3), mock.AnythingOfType("time.Time")).Return(nil).Once()
	paused := closedWindow()
	paused.State = domain.WindowPaused
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(paused, nil).Once()

	resp, err := suite.service.PauseWindow(tellerCtx(3, 1), 2)

	suite.Require().NoError(err)
	suite.Equal("PAUSED", resp.State)
	suite.mockWindowRepo.AssertExpectations(suite.T())
}

func (suite *WindowServiceTestSuite) TestResumeWindow_AdminMayResume() {
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()
	suite.mockWindowRepo.On("UpdateWindowState", mock.Anything, int64(2), domain.WindowPaused, domain.WindowOpen, int64(7), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Twice()

	resp, err := suite.service.ResumeWindow(adminCtx(7, 1), 2)

	suite.Require().NoError(err)
	suite.Equal("OPEN", resp.State)
}

func (suite *WindowServiceTestSuite) TestCloseWindow_PausedMustResumeFirst() {
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()
	paused := closedWindow()
	paused.State = domain.WindowPaused
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(paused, nil).Once()

	_, err := suite.service.CloseWindow(tellerCtx(3, 1), 2, dto.CloseWindowRequest{})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *WindowServiceTestSuite) expectCloseReconciliation() {
	opening := seededOpening()
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	suite.mockTxnRepo.On("ListCompletedByOpening", mock.Anything, int64(5)).Return([]domain.Transaction{
		{
			OpeningID:        5,
			SourceCurrencyID: 10,
			TargetCurrencyID: 20,
			SourceAmount:     dec("100"),
			TargetAmount:     dec("375.00"),
			Profit:           dec("5.00"),
			State:            domain.TransactionCompleted,
		},
	}, nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(testCurrency(10, "USD"), nil).Once()
	suite.mockMasterRepo.On("FindCurrencyByCode", mock.Anything, "PEN").Return(testCurrency(20, "PEN"), nil).Once()
}

func (suite *WindowServiceTestSuite) TestCloseWindow_DiscrepancyNeedsConfirmation() {
	suite.expectCloseReconciliation()

	_, err := suite.service.CloseWindow(tellerCtx(3, 1), 2, dto.CloseWindowRequest{
		Counts: []dto.PhysicalCountInput{
			{CurrencyCode: "USD", Amount: dec("1100")},
			{CurrencyCode: "PEN", Amount: dec("1610")}, // 15 short
		},
		Confirmed: false,
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "confirmation")
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "CreateClosing", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestCloseWindow_ConfirmedDiscrepancyRecorded() {
	suite.expectCloseReconciliation()
	suite.mockWindowRepo.On("CreateClosing", mock.Anything, mock.AnythingOfType("domain.Closing")).
		Run(func(args mock.Arguments) {
			closing := args.Get(1).(domain.Closing)
			suite.Equal(int64(5), closing.OpeningID)
			suite.True(closing.TotalProfit.Equal(dec("5.00")))
			suite.Require().Len(closing.Entries, 2)
			for _, entry := range closing.Entries {
				switch entry.CurrencyID {
				case 10:
					suite.True(entry.DiscrepancyAmount.IsZero(), "USD discrepancy was %s", entry.DiscrepancyAmount)
				case 20:
					suite.True(entry.DiscrepancyAmount.Equal(dec("-15.00")), "PEN discrepancy was %s", entry.DiscrepancyAmount)
					// |-15 / 1625| * 100 = 0.92%
					suite.True(entry.DiscrepancyPercent.Equal(dec("0.92")), "PEN discrepancy percent was %s", entry.DiscrepancyPercent)
				default:
					suite.Failf("unexpected closing entry", "currency %d", entry.CurrencyID)
				}
			}
		}).
		Return(&domain.Closing{ClosingID: 9, OpeningID: 5, WindowID: 2, OperatorID: 3, TotalProfit: dec("5.00")}, nil).Once()

	resp, err := suite.service.CloseWindow(tellerCtx(3, 1), 2, dto.CloseWindowRequest{
		Counts: []dto.PhysicalCountInput{
			{CurrencyCode: "USD", Amount: dec("1100")},
			{CurrencyCode: "PEN", Amount: dec("1610")},
		},
		Confirmed: true,
	})

	suite.Require().NoError(err)
	suite.Equal(int64(9), resp.ClosingID)
	suite.mockWindowRepo.AssertExpectations(suite.T())
}

func (suite *WindowServiceTestSuite) TestCloseWindow_MissingCountedCurrency() {
	suite.expectCloseReconciliation()
	suite.mockMasterRepo.On("FindCurrenciesByIDs", mock.Anything, mock.Anything).
		Return(map[int64]domain.Currency{20: *testCurrency(20, "PEN")}, nil)

	_, err := suite.service.CloseWindow(tellerCtx(3, 1), 2, dto.CloseWindowRequest{
		Counts: []dto.PhysicalCountInput{
			{CurrencyCode: "USD", Amount: dec("1100")},
		},
		Confirmed: true,
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "physical count missing")
}

func (suite *WindowServiceTestSuite) TestToggleWindowActive_OpenWindowCannotBeDisabled() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	_, err := suite.service.ToggleWindowActive(adminCtx(7, 1), 2, false)

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "SetWindowActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestCanOperate_HolderOfOpenWindow() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()
	opening := &domain.Opening{OpeningID: 5, WindowID: 2, OperatorID: 3, Active: true}
	suite.mockWindowRepo.On("FindActiveOpening", mock.Anything, int64(2)).Return(opening, nil).Once()

	ok, err := suite.service.CanOperate(tellerCtx(3, 1), 2)

	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *WindowServiceTestSuite) TestCanOperate_CrossHouseAdmin() {
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(openWindow(), nil).Once()

	ok, err := suite.service.CanOperate(adminCtx(77, 99), 2)

	suite.Require().NoError(err)
	suite.False(ok)
	suite.mockWindowRepo.AssertNotCalled(suite.T(), "FindActiveOpening", mock.Anything, mock.Anything)
}

func (suite *WindowServiceTestSuite) TestCanOperate_PausedWindow() {
	paused := closedWindow()
	paused.State = domain.WindowPaused
	suite.mockWindowRepo.On("FindWindowByID", mock.Anything, int64(2)).Return(paused, nil).Once()

	ok, err := suite.service.CanOperate(tellerCtx(3, 1), 2)

	suite.Require().NoError(err)
	suite.False(ok)
}

func TestWindowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WindowServiceTestSuite))
}
