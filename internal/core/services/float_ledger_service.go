package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
)

// FloatLedgerService provides read and reconciliation logic over the
// per-opening float ledger. Float mutation happens only inside the window
// and transaction repositories' atomic units.
type FloatLedgerService struct {
	windowRepo portsrepo.WindowRepositoryFacade
	floatRepo  portsrepo.FloatRepositoryFacade
	txnRepo    portsrepo.TransactionReader
	masterRepo portsrepo.MasterDataRepositoryFacade
}

// NewFloatLedgerService creates a new FloatLedgerService.
func NewFloatLedgerService(windowRepo portsrepo.WindowRepositoryFacade, floatRepo portsrepo.FloatRepositoryFacade, txnRepo portsrepo.TransactionReader, masterRepo portsrepo.MasterDataRepositoryFacade) *FloatLedgerService {
	return &FloatLedgerService{
		windowRepo: windowRepo,
		floatRepo:  floatRepo,
		txnRepo:    txnRepo,
		masterRepo: masterRepo,
	}
}

var _ portssvc.FloatLedgerSvcFacade = (*FloatLedgerService)(nil)

// GetFloat retrieves the live float balances of a window's active opening.
func (s *FloatLedgerService) GetFloat(ctx context.Context, windowID int64) ([]dto.FloatEntryResponse, error) {
	opening, err := s.windowRepo.FindActiveOpening(ctx, windowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: window %d has no active opening", apperrors.ErrInvalidState, windowID)
		}
		return nil, err
	}

	ids := make([]int64, len(opening.FloatEntries))
	for i, entry := range opening.FloatEntries {
		ids[i] = entry.CurrencyID
	}
	codes, err := codesForIDs(ctx, s.masterRepo, ids)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.FloatEntryResponse, len(opening.FloatEntries))
	for i, entry := range opening.FloatEntries {
		resps[i] = dto.FloatEntryResponse{CurrencyCode: codes[entry.CurrencyID], Amount: entry.Amount}
	}
	return resps, nil
}

// CheckAvailability reports whether the active opening of a window holds at
// least the given amount of a currency. A currency the float never saw
// simply reports zero available.
func (s *FloatLedgerService) CheckAvailability(ctx context.Context, windowID int64, currencyCode string, amount decimal.Decimal) (*dto.AvailabilityResponse, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	currency, err := resolveCurrency(ctx, s.masterRepo, currencyCode)
	if err != nil {
		return nil, err
	}
	opening, err := s.windowRepo.FindActiveOpening(ctx, windowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: window %d has no active opening", apperrors.ErrInvalidState, windowID)
		}
		return nil, err
	}

	available := decimal.Zero
	entry, err := s.floatRepo.FindFloatEntry(ctx, opening.OpeningID, currency.CurrencyID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if entry != nil {
		available = entry.Amount
	}

	return &dto.AvailabilityResponse{
		CurrencyCode: currency.Code,
		Required:     amount,
		Available:    available,
		Sufficient:   available.GreaterThanOrEqual(amount),
	}, nil
}

// reconcileOpening derives per-currency expected amounts from the opening
// seed plus every completed transaction, with the accumulated profit.
// Cancelled transactions are excluded, so their unreversed cash shows up as
// a counted discrepancy at closing time.
func (s *FloatLedgerService) reconcileOpening(ctx context.Context, opening *domain.Opening) (map[int64]decimal.Decimal, decimal.Decimal, int64, error) {
	expected := make(map[int64]decimal.Decimal, len(opening.FloatEntries))
	for _, entry := range opening.FloatEntries {
		expected[entry.CurrencyID] = entry.SeedAmount
	}

	txns, err := s.txnRepo.ListCompletedByOpening(ctx, opening.OpeningID)
	if err != nil {
		return nil, decimal.Zero, 0, err
	}

	profit := decimal.Zero
	for _, txn := range txns {
		expected[txn.SourceCurrencyID] = expected[txn.SourceCurrencyID].Add(txn.SourceAmount)
		expected[txn.TargetCurrencyID] = expected[txn.TargetCurrencyID].Sub(txn.TargetAmount)
		profit = profit.Add(txn.Profit)
	}
	return expected, profit, int64(len(txns)), nil
}

// ExpectedAmounts reconciles an opening and reports what the drawer should
// hold per currency.
func (s *FloatLedgerService) ExpectedAmounts(ctx context.Context, openingID int64) (*dto.ClosingSummaryResponse, error) {
	opening, err := s.windowRepo.FindOpeningByID(ctx, openingID)
	if err != nil {
		return nil, err
	}

	expected, profit, count, err := s.reconcileOpening(ctx, opening)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(expected))
	for id := range expected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	codes, err := codesForIDs(ctx, s.masterRepo, ids)
	if err != nil {
		return nil, err
	}

	amounts := make([]dto.FloatEntryResponse, len(ids))
	for i, id := range ids {
		amounts[i] = dto.FloatEntryResponse{CurrencyCode: codes[id], Amount: expected[id]}
	}

	return &dto.ClosingSummaryResponse{
		OpeningID:        opening.OpeningID,
		WindowID:         opening.WindowID,
		ExpectedAmounts:  amounts,
		TotalProfit:      profit,
		TransactionCount: count,
	}, nil
}
