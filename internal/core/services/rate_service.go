package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
	"github.com/cambix/cambix_backend/internal/middleware"
	"github.com/cambix/cambix_backend/internal/utils/exchange"
)

// Margin sanity bounds. Rates outside these limits are almost certainly
// data entry mistakes.
var (
	minRateValue     = decimal.RequireFromString("0.01")
	maxRateValue     = decimal.NewFromInt(1000)
	maxSpreadPercent = decimal.NewFromInt(50)
)

// RateService provides business logic for the exchange rate registry.
type RateService struct {
	rateRepo   portsrepo.RateRepositoryFacade
	txnRepo    portsrepo.TransactionReader
	masterRepo portsrepo.MasterDataRepositoryFacade
}

// NewRateService creates a new RateService.
func NewRateService(rateRepo portsrepo.RateRepositoryFacade, txnRepo portsrepo.TransactionReader, masterRepo portsrepo.MasterDataRepositoryFacade) *RateService {
	return &RateService{
		rateRepo:   rateRepo,
		txnRepo:    txnRepo,
		masterRepo: masterRepo,
	}
}

var _ portssvc.RateSvcFacade = (*RateService)(nil)

// validateMargins enforces the rate sanity rules shared by create and
// update.
func validateMargins(buy, sell decimal.Decimal) error {
	if buy.LessThan(minRateValue) || buy.GreaterThan(maxRateValue) {
		return fmt.Errorf("%w: buy rate must be between %s and %s", apperrors.ErrValidation, minRateValue, maxRateValue)
	}
	if sell.LessThan(minRateValue) || sell.GreaterThan(maxRateValue) {
		return fmt.Errorf("%w: sell rate must be between %s and %s", apperrors.ErrValidation, minRateValue, maxRateValue)
	}
	if !sell.GreaterThan(buy) {
		return fmt.Errorf("%w: sell rate must be greater than buy rate", apperrors.ErrValidation)
	}
	if exchange.SpreadPercent(buy, sell).GreaterThan(maxSpreadPercent) {
		return fmt.Errorf("%w: spread exceeds %s%% of the buy rate", apperrors.ErrValidation, maxSpreadPercent)
	}
	return nil
}

// writeAudit appends an audit entry. Audit failures never abort the primary
// operation; they are logged and dropped.
func (s *RateService) writeAudit(ctx context.Context, rateID, operatorID int64, action domain.RateAuditAction, before, after map[string]any, reason string) {
	entry := domain.RateAuditEntry{
		AuditID:    uuid.NewString(),
		RateID:     rateID,
		OperatorID: operatorID,
		Action:     action,
		Before:     before,
		After:      after,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.rateRepo.SaveRateAudit(ctx, entry); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("failed to write rate audit entry",
			"rateID", rateID, "action", action, "error", err)
	}
}

func (s *RateService) toResponse(ctx context.Context, rate domain.ExchangeRate) (*dto.RateResponse, error) {
	codes, err := codesForIDs(ctx, s.masterRepo, []int64{rate.SourceCurrencyID, rate.TargetCurrencyID})
	if err != nil {
		return nil, err
	}
	resp := dto.ToRateResponse(rate, codes, exchange.SpreadPercent(rate.BuyRate, rate.SellRate).Round(2))
	return &resp, nil
}

func (s *RateService) toResponseSlice(ctx context.Context, rates []domain.ExchangeRate) ([]dto.RateResponse, error) {
	ids := make([]int64, 0, len(rates)*2)
	for _, rate := range rates {
		ids = append(ids, rate.SourceCurrencyID, rate.TargetCurrencyID)
	}
	codes, err := codesForIDs(ctx, s.masterRepo, ids)
	if err != nil {
		return nil, err
	}
	resps := make([]dto.RateResponse, len(rates))
	for i, rate := range rates {
		resps[i] = dto.ToRateResponse(rate, codes, exchange.SpreadPercent(rate.BuyRate, rate.SellRate).Round(2))
	}
	return resps, nil
}

// CreateRate registers a new rate for a currency pair.
func (s *RateService) CreateRate(ctx context.Context, req dto.CreateRateRequest) (*dto.RateResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, req.HouseID); err != nil {
		return nil, err
	}

	if req.SourceCurrencyCode == req.TargetCurrencyCode {
		return nil, fmt.Errorf("%w: source and target currencies must differ", apperrors.ErrValidation)
	}
	if err := validateMargins(req.BuyRate, req.SellRate); err != nil {
		return nil, err
	}

	if _, err := s.masterRepo.FindHouseByID(ctx, req.HouseID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: exchange house %d not found", apperrors.ErrValidation, req.HouseID)
		}
		return nil, err
	}
	source, err := resolveCurrency(ctx, s.masterRepo, req.SourceCurrencyCode)
	if err != nil {
		return nil, err
	}
	target, err := resolveCurrency(ctx, s.masterRepo, req.TargetCurrencyCode)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		HouseID:          req.HouseID,
		SourceCurrencyID: source.CurrencyID,
		TargetCurrencyID: target.CurrencyID,
		BuyRate:          req.BuyRate,
		SellRate:         req.SellRate,
		Active:           active,
		KeepDaily:        req.KeepDaily,
		EffectiveAt:      now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     op.OperatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: op.OperatorID,
		},
	}

	saved, err := s.rateRepo.SaveRate(ctx, rate)
	if err != nil {
		return nil, err
	}
	s.writeAudit(ctx, saved.RateID, op.OperatorID, domain.RateAuditCreate, nil, saved.Snapshot(), "")

	return s.toResponse(ctx, *saved)
}

// GetRate retrieves a rate by id.
func (s *RateService) GetRate(ctx context.Context, rateID int64) (*dto.RateResponse, error) {
	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *rate)
}

// UpdateRate adjusts the margins or keep-daily flag of a rate.
func (s *RateService) UpdateRate(ctx context.Context, rateID int64, req dto.UpdateRateRequest) (*dto.RateResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, rate.HouseID); err != nil {
		return nil, err
	}
	before := rate.Snapshot()

	updated := *rate
	if req.BuyRate != nil {
		updated.BuyRate = *req.BuyRate
	}
	if req.SellRate != nil {
		updated.SellRate = *req.SellRate
	}
	if req.KeepDaily != nil {
		updated.KeepDaily = *req.KeepDaily
	}
	if err := validateMargins(updated.BuyRate, updated.SellRate); err != nil {
		return nil, err
	}

	updated.LastUpdatedAt = time.Now().UTC()
	updated.LastUpdatedBy = op.OperatorID
	if err := s.rateRepo.UpdateRate(ctx, updated); err != nil {
		return nil, err
	}
	s.writeAudit(ctx, rateID, op.OperatorID, domain.RateAuditUpdate, before, updated.Snapshot(), req.Reason)

	return s.toResponse(ctx, updated)
}

// ActivateRate marks a rate active. The single-active-rate rule is enforced
// by the storage layer; a concurrent or pre-existing active rate for the
// pair surfaces as a conflict, never as an implicit supersession.
func (s *RateService) ActivateRate(ctx context.Context, rateID int64, reason string) (*dto.RateResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, rate.HouseID); err != nil {
		return nil, err
	}
	if rate.Active {
		return s.toResponse(ctx, *rate)
	}
	before := rate.Snapshot()

	now := time.Now().UTC()
	if err := s.rateRepo.SetRateActive(ctx, rateID, true, op.OperatorID, now); err != nil {
		return nil, err
	}

	rate.Active = true
	rate.LastUpdatedAt = now
	rate.LastUpdatedBy = op.OperatorID
	s.writeAudit(ctx, rateID, op.OperatorID, domain.RateAuditActivate, before, rate.Snapshot(), reason)

	return s.toResponse(ctx, *rate)
}

// DeactivateRate marks a rate inactive. Pairs may legitimately end up with
// no active rate; transactions on them fail until a new rate is activated.
func (s *RateService) DeactivateRate(ctx context.Context, rateID int64, reason string) (*dto.RateResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, rate.HouseID); err != nil {
		return nil, err
	}
	if !rate.Active {
		return s.toResponse(ctx, *rate)
	}
	before := rate.Snapshot()

	now := time.Now().UTC()
	if err := s.rateRepo.SetRateActive(ctx, rateID, false, op.OperatorID, now); err != nil {
		return nil, err
	}

	rate.Active = false
	rate.LastUpdatedAt = now
	rate.LastUpdatedBy = op.OperatorID
	s.writeAudit(ctx, rateID, op.OperatorID, domain.RateAuditDeactivate, before, rate.Snapshot(), reason)

	return s.toResponse(ctx, *rate)
}

// DeleteRate removes a rate that no transaction references. Referenced
// rates must be deactivated instead so traceability survives.
func (s *RateService) DeleteRate(ctx context.Context, rateID int64) error {
	op, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return err
	}
	if err := requireSameHouse(op, rate.HouseID); err != nil {
		return err
	}

	count, err := s.txnRepo.CountTransactionsByRate(ctx, rateID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflictError(fmt.Sprintf("rate %d is referenced by %d transactions; deactivate it instead", rateID, count))
	}

	if err := s.rateRepo.DeleteRate(ctx, rateID); err != nil {
		return err
	}
	s.writeAudit(ctx, rateID, op.OperatorID, domain.RateAuditDelete, rate.Snapshot(), nil, "")
	return nil
}

// CurrentRateFor resolves the single active rate for a pair.
func (s *RateService) CurrentRateFor(ctx context.Context, houseID int64, sourceCode, targetCode string) (*dto.RateResponse, error) {
	source, err := resolveCurrency(ctx, s.masterRepo, sourceCode)
	if err != nil {
		return nil, err
	}
	target, err := resolveCurrency(ctx, s.masterRepo, targetCode)
	if err != nil {
		return nil, err
	}
	rate, err := s.rateRepo.FindActiveRate(ctx, houseID, source.CurrencyID, target.CurrencyID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *rate)
}

// ListActiveRates retrieves the active rates of a house.
func (s *RateService) ListActiveRates(ctx context.Context, houseID int64) ([]dto.RateResponse, error) {
	rates, err := s.rateRepo.ListActiveRatesByHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	return s.toResponseSlice(ctx, rates)
}

// RateHistory retrieves every rate ever registered for a pair, newest first.
func (s *RateService) RateHistory(ctx context.Context, houseID int64, sourceCode, targetCode string, from, to *time.Time) ([]dto.RateResponse, error) {
	source, err := resolveCurrency(ctx, s.masterRepo, sourceCode)
	if err != nil {
		return nil, err
	}
	target, err := resolveCurrency(ctx, s.masterRepo, targetCode)
	if err != nil {
		return nil, err
	}
	rates, err := s.rateRepo.ListRateHistory(ctx, houseID, source.CurrencyID, target.CurrencyID, from, to)
	if err != nil {
		return nil, err
	}
	return s.toResponseSlice(ctx, rates)
}

// AuditTrail retrieves the mutation history of a rate.
func (s *RateService) AuditTrail(ctx context.Context, rateID int64) ([]dto.RateAuditResponse, error) {
	if _, err := s.rateRepo.FindRateByID(ctx, rateID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	entries, err := s.rateRepo.ListRateAudit(ctx, rateID)
	if err != nil {
		return nil, err
	}
	resps := make([]dto.RateAuditResponse, len(entries))
	for i, entry := range entries {
		resps[i] = dto.ToRateAuditResponse(entry)
	}
	return resps, nil
}

// RenewDailyRates recreates the keep-daily rates of a house for the given
// day. Called lazily on the first window open of the day and by the
// midnight sweep; both paths are idempotent because renewal only touches
// rates effective before the day.
func (s *RateService) RenewDailyRates(ctx context.Context, houseID int64, day time.Time) (int, error) {
	var operatorID int64
	if op, ok := middleware.GetOperatorFromCtx(ctx); ok {
		operatorID = op.OperatorID
	}

	day = day.Truncate(24 * time.Hour)
	renewed, err := s.rateRepo.RenewKeepDailyRates(ctx, houseID, day, operatorID)
	if err != nil {
		return 0, err
	}
	for _, rate := range renewed {
		s.writeAudit(ctx, rate.RateID, operatorID, domain.RateAuditCreate, nil, rate.Snapshot(), "daily renewal")
	}
	if len(renewed) > 0 {
		middleware.GetLoggerFromCtx(ctx).Info("renewed keep-daily rates",
			"houseID", houseID, "day", day.Format("2006-01-02"), "count", len(renewed))
	}
	return len(renewed), nil
}
