package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
	"github.com/cambix/cambix_backend/internal/middleware"
	"github.com/cambix/cambix_backend/internal/utils/exchange"
)

const (
	defaultTransactionPageSize = 50
	maxTransactionPageSize     = 100
)

// TransactionService provides business logic for processing exchanges.
type TransactionService struct {
	txnRepo    portsrepo.TransactionRepositoryFacade
	windowRepo portsrepo.WindowRepositoryFacade
	rateRepo   portsrepo.RateReader
	masterRepo portsrepo.MasterDataRepositoryFacade
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, windowRepo portsrepo.WindowRepositoryFacade, rateRepo portsrepo.RateReader, masterRepo portsrepo.MasterDataRepositoryFacade) *TransactionService {
	return &TransactionService{
		txnRepo:    txnRepo,
		windowRepo: windowRepo,
		rateRepo:   rateRepo,
		masterRepo: masterRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*TransactionService)(nil)

func (s *TransactionService) toResponse(ctx context.Context, txn domain.Transaction) (*dto.TransactionResponse, error) {
	codes, err := codesForIDs(ctx, s.masterRepo, []int64{txn.SourceCurrencyID, txn.TargetCurrencyID})
	if err != nil {
		return nil, err
	}
	resp := dto.ToTransactionResponse(txn, codes)
	return &resp, nil
}

func (s *TransactionService) toResponseSlice(ctx context.Context, txns []domain.Transaction) ([]dto.TransactionResponse, error) {
	ids := make([]int64, 0, len(txns)*2)
	for _, txn := range txns {
		ids = append(ids, txn.SourceCurrencyID, txn.TargetCurrencyID)
	}
	codes, err := codesForIDs(ctx, s.masterRepo, ids)
	if err != nil {
		return nil, err
	}
	resps := make([]dto.TransactionResponse, len(txns))
	for i, txn := range txns {
		resps[i] = dto.ToTransactionResponse(txn, codes)
	}
	return resps, nil
}

// resolvePair resolves and validates the currency pair of an exchange.
func (s *TransactionService) resolvePair(ctx context.Context, sourceCode, targetCode string) (*domain.Currency, *domain.Currency, error) {
	if sourceCode == targetCode {
		return nil, nil, fmt.Errorf("%w: source and target currencies must differ", apperrors.ErrValidation)
	}
	source, err := resolveCurrency(ctx, s.masterRepo, sourceCode)
	if err != nil {
		return nil, nil, err
	}
	target, err := resolveCurrency(ctx, s.masterRepo, targetCode)
	if err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

// activeRateFor fetches the active rate for a pair, spelling the pair out
// in the not-found message.
func (s *TransactionService) activeRateFor(ctx context.Context, houseID int64, source, target *domain.Currency) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindActiveRate(ctx, houseID, source.CurrencyID, target.CurrencyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active rate for %s -> %s", apperrors.ErrNotFound, source.Code, target.Code)
		}
		return nil, err
	}
	return rate, nil
}

// ProcessTransaction records an exchange at a window. Amount math happens
// here; availability and the float mutation are re-verified under row locks
// inside the repository's single database transaction.
func (s *TransactionService) ProcessTransaction(ctx context.Context, windowID int64, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if req.SourceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: source amount must be positive", apperrors.ErrValidation)
	}
	if req.CustomerID != nil && req.TemporaryCustomer != nil {
		return nil, fmt.Errorf("%w: provide either a registered customer or a temporary customer, not both", apperrors.ErrValidation)
	}

	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, window.HouseID); err != nil {
		return nil, err
	}
	if !window.IsActive || window.State != domain.WindowOpen {
		return nil, fmt.Errorf("%w: window %d is not open for business", apperrors.ErrInvalidState, windowID)
	}
	opening, err := s.windowRepo.FindActiveOpening(ctx, windowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: window %d has no active opening", apperrors.ErrInvalidState, windowID)
		}
		return nil, err
	}
	if !op.Role.IsAdmin() && opening.OperatorID != op.OperatorID {
		return nil, fmt.Errorf("%w: window %d was opened by another operator", apperrors.ErrForbidden, windowID)
	}

	source, target, err := s.resolvePair(ctx, req.SourceCurrencyCode, req.TargetCurrencyCode)
	if err != nil {
		return nil, err
	}
	rate, err := s.activeRateFor(ctx, window.HouseID, source, target)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		if _, err := s.masterRepo.FindCustomerByID(ctx, *req.CustomerID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: customer %d not found", apperrors.ErrValidation, *req.CustomerID)
			}
			return nil, err
		}
	}

	targetAmount := exchange.TargetAmount(req.SourceAmount, rate.SellRate)
	profit := exchange.Profit(req.SourceAmount, rate.BuyRate, rate.SellRate)

	now := time.Now().UTC()
	txn := domain.Transaction{
		WindowID:         windowID,
		OpeningID:        opening.OpeningID,
		SourceCurrencyID: source.CurrencyID,
		TargetCurrencyID: target.CurrencyID,
		SourceAmount:     req.SourceAmount,
		TargetAmount:     targetAmount,
		AppliedRate:      rate.SellRate,
		Profit:           profit,
		RateID:           rate.RateID,
		State:            domain.TransactionCompleted,
		CustomerID:       req.CustomerID,
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     op.OperatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: op.OperatorID,
		},
	}
	if tc := req.TemporaryCustomer; tc != nil {
		txn.TemporaryCustomer = &domain.TemporaryCustomer{
			Names:       tc.Names,
			Surnames:    tc.Surnames,
			Document:    tc.Document,
			Description: tc.Description,
		}
	}

	saved, err := s.txnRepo.SaveTransaction(ctx, window.HouseID, txn)
	if err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("transaction processed",
		"number", saved.Number, "windowID", windowID,
		"source", source.Code, "target", target.Code,
		"sourceAmount", saved.SourceAmount.String(), "targetAmount", saved.TargetAmount.String())

	return s.toResponse(ctx, *saved)
}

// CancelTransaction flips a completed transaction to CANCELLED with a
// mandatory reason appended to its notes. The float keeps the transaction's
// effect; the mismatch surfaces in the closing reconciliation.
func (s *TransactionService) CancelTransaction(ctx context.Context, transactionID int64, req dto.CancelTransactionRequest) (*dto.TransactionResponse, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", apperrors.ErrValidation)
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	window, err := s.windowRepo.FindWindowByID(ctx, txn.WindowID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, window.HouseID); err != nil {
		return nil, err
	}
	if !op.Role.IsAdmin() && txn.CreatedBy != op.OperatorID {
		return nil, fmt.Errorf("%w: only the processing operator or an administrator of the house may cancel", apperrors.ErrForbidden)
	}

	notes := txn.Notes
	if notes != "" {
		notes += "\n"
	}
	notes += "CANCELLED: " + strings.TrimSpace(req.Reason)

	now := time.Now().UTC()
	if err := s.txnRepo.MarkTransactionCancelled(ctx, transactionID, notes, op.OperatorID, now); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("transaction cancelled",
		"number", txn.Number, "transactionID", transactionID, "operatorID", op.OperatorID)

	txn.State = domain.TransactionCancelled
	txn.Notes = notes
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = op.OperatorID
	return s.toResponse(ctx, *txn)
}

// GetTransaction retrieves a transaction by id.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID int64) (*dto.TransactionResponse, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *txn)
}

// GetTransactionByNumber retrieves a transaction by its business number.
func (s *TransactionService) GetTransactionByNumber(ctx context.Context, houseID int64, number string) (*dto.TransactionResponse, error) {
	txn, err := s.txnRepo.FindTransactionByNumber(ctx, houseID, number)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *txn)
}

// CalculateConversion quotes a conversion at the current active rate
// without touching the ledger.
func (s *TransactionService) CalculateConversion(ctx context.Context, houseID int64, req dto.ConversionRequest) (*dto.ConversionResponse, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, houseID); err != nil {
		return nil, err
	}
	if req.SourceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: source amount must be positive", apperrors.ErrValidation)
	}
	source, target, err := s.resolvePair(ctx, req.SourceCurrencyCode, req.TargetCurrencyCode)
	if err != nil {
		return nil, err
	}
	rate, err := s.activeRateFor(ctx, houseID, source, target)
	if err != nil {
		return nil, err
	}

	return &dto.ConversionResponse{
		SourceCurrencyCode: source.Code,
		TargetCurrencyCode: target.Code,
		SourceAmount:       req.SourceAmount,
		TargetAmount:       exchange.TargetAmount(req.SourceAmount, rate.SellRate),
		AppliedRate:        rate.SellRate,
		Profit:             exchange.Profit(req.SourceAmount, rate.BuyRate, rate.SellRate),
		RateID:             rate.RateID,
	}, nil
}

// ListTransactionsByWindow pages through the transactions of a window.
func (s *TransactionService) ListTransactionsByWindow(ctx context.Context, windowID int64, limit int, nextToken *string, day *time.Time) (*dto.ListTransactionsResponse, error) {
	if _, err := s.windowRepo.FindWindowByID(ctx, windowID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	if limit > maxTransactionPageSize {
		limit = maxTransactionPageSize
	}

	txns, next, err := s.txnRepo.ListTransactionsByWindow(ctx, windowID, limit, nextToken, day)
	if err != nil {
		return nil, err
	}
	items, err := s.toResponseSlice(ctx, txns)
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{Items: items, NextToken: next}, nil
}

// ListTransactionsByCustomer retrieves the transactions of a registered
// customer.
func (s *TransactionService) ListTransactionsByCustomer(ctx context.Context, customerID int64) ([]dto.TransactionResponse, error) {
	if _, err := s.masterRepo.FindCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	txns, err := s.txnRepo.ListTransactionsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.toResponseSlice(ctx, txns)
}
