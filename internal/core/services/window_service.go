package services

import (
	"context"
	"errors"
	"fmt"
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

// WindowService provides business logic for the teller window lifecycle.
type WindowService struct {
	windowRepo portsrepo.WindowRepositoryFacade
	rateRepo   portsrepo.RateReader
	masterRepo portsrepo.MasterDataRepositoryFacade
	rateSvc    portssvc.RateSvcFacade
	floatSvc   *FloatLedgerService
}

// NewWindowService creates a new WindowService.
func NewWindowService(windowRepo portsrepo.WindowRepositoryFacade, rateRepo portsrepo.RateReader, masterRepo portsrepo.MasterDataRepositoryFacade, rateSvc portssvc.RateSvcFacade, floatSvc *FloatLedgerService) *WindowService {
	return &WindowService{
		windowRepo: windowRepo,
		rateRepo:   rateRepo,
		masterRepo: masterRepo,
		rateSvc:    rateSvc,
		floatSvc:   floatSvc,
	}
}

var _ portssvc.WindowSvcFacade = (*WindowService)(nil)

// CreateWindow registers a new window in CLOSED state.
func (s *WindowService) CreateWindow(ctx context.Context, req dto.CreateWindowRequest) (*dto.WindowResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, req.HouseID); err != nil {
		return nil, err
	}
	if _, err := s.masterRepo.FindHouseByID(ctx, req.HouseID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: exchange house %d not found", apperrors.ErrValidation, req.HouseID)
		}
		return nil, err
	}

	now := time.Now().UTC()
	window := domain.TellerWindow{
		HouseID:    req.HouseID,
		Identifier: req.Identifier,
		Name:       req.Name,
		State:      domain.WindowClosed,
		IsActive:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     op.OperatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: op.OperatorID,
		},
	}
	saved, err := s.windowRepo.SaveWindow(ctx, window)
	if err != nil {
		return nil, err
	}
	resp := dto.ToWindowResponse(*saved)
	return &resp, nil
}

// GetWindow retrieves a window by id.
func (s *WindowService) GetWindow(ctx context.Context, windowID int64) (*dto.WindowResponse, error) {
	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToWindowResponse(*window)
	return &resp, nil
}

// ListWindows retrieves the windows of a house, optionally filtered by
// lifecycle state.
func (s *WindowService) ListWindows(ctx context.Context, houseID int64, state *string) ([]dto.WindowResponse, error) {
	var stateFilter *domain.WindowState
	if state != nil && *state != "" {
		ws := domain.WindowState(*state)
		switch ws {
		case domain.WindowClosed, domain.WindowOpen, domain.WindowPaused:
			stateFilter = &ws
		default:
			return nil, fmt.Errorf("%w: unknown window state %q", apperrors.ErrValidation, *state)
		}
	}
	windows, err := s.windowRepo.ListWindowsByHouse(ctx, houseID, stateFilter)
	if err != nil {
		return nil, err
	}
	resps := make([]dto.WindowResponse, len(windows))
	for i, w := range windows {
		resps[i] = dto.ToWindowResponse(w)
	}
	return resps, nil
}

// UpdateWindow renames a window.
func (s *WindowService) UpdateWindow(ctx context.Context, windowID int64, req dto.UpdateWindowRequest) (*dto.WindowResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, window.HouseID); err != nil {
		return nil, err
	}
	if req.Name != nil {
		window.Name = *req.Name
	}
	window.LastUpdatedAt = time.Now().UTC()
	window.LastUpdatedBy = op.OperatorID
	if err := s.windowRepo.UpdateWindow(ctx, *window); err != nil {
		return nil, err
	}
	resp := dto.ToWindowResponse(*window)
	return &resp, nil
}

// ToggleWindowActive enables or disables a window. A window mid-cycle
// cannot be disabled.
func (s *WindowService) ToggleWindowActive(ctx context.Context, windowID int64, active bool) (*dto.WindowResponse, error) {
	op, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, window.HouseID); err != nil {
		return nil, err
	}
	if !active && window.State != domain.WindowClosed {
		return nil, fmt.Errorf("%w: window %d must be CLOSED before it can be disabled", apperrors.ErrInvalidState, windowID)
	}

	now := time.Now().UTC()
	if err := s.windowRepo.SetWindowActive(ctx, windowID, active, op.OperatorID, now); err != nil {
		return nil, err
	}
	window.IsActive = active
	window.LastUpdatedAt = now
	window.LastUpdatedBy = op.OperatorID
	resp := dto.ToWindowResponse(*window)
	return &resp, nil
}

// validateSeed rejects negative amounts and duplicate currencies in the
// float declaration, and requires at least one positive amount so a window
// never opens with nothing to exchange.
func validateSeed(entries []dto.FloatSeedInput) error {
	seen := make(map[string]bool, len(entries))
	hasPositive := false
	for _, entry := range entries {
		if entry.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: float amount for %s cannot be negative", apperrors.ErrValidation, entry.CurrencyCode)
		}
		if seen[entry.CurrencyCode] {
			return fmt.Errorf("%w: duplicate float currency %s", apperrors.ErrValidation, entry.CurrencyCode)
		}
		seen[entry.CurrencyCode] = true
		if entry.Amount.GreaterThan(decimal.Zero) {
			hasPositive = true
		}
	}
	if !hasPositive {
		return fmt.Errorf("%w: at least one float amount must be greater than zero", apperrors.ErrValidation)
	}
	return nil
}

// OpenWindow moves a CLOSED window to OPEN with the declared float seed.
// Keep-daily rates of the house are renewed first so the day's rates are in
// place before the first exchange.
func (s *WindowService) OpenWindow(ctx context.Context, windowID int64, req dto.OpenWindowRequest) (*dto.OpeningResponse, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateSeed(req.Float); err != nil {
		return nil, err
	}

	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if err := requireSameHouse(op, window.HouseID); err != nil {
		return nil, err
	}
	if !window.IsActive {
		return nil, fmt.Errorf("%w: window %d is disabled", apperrors.ErrInvalidState, windowID)
	}
	if window.State != domain.WindowClosed {
		return nil, fmt.Errorf("%w: window %d is %s, expected CLOSED", apperrors.ErrInvalidState, windowID, window.State)
	}

	// Tellers hold at most one open window at a time. Administrators are
	// exempt and may cover several windows.
	if !op.Role.IsAdmin() {
		existing, err := s.windowRepo.FindActiveOpeningByOperator(ctx, op.OperatorID)
		if err == nil {
			return nil, apperrors.NewConflictError(fmt.Sprintf("operator already holds window %d open", existing.WindowID))
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if _, err := s.rateSvc.RenewDailyRates(ctx, window.HouseID, now); err != nil {
		// Renewal failure leaves yesterday's keep-daily rates active, which
		// is worse than blocking the open.
		return nil, fmt.Errorf("failed to renew daily rates for house %d: %w", window.HouseID, err)
	}
	activeRates, err := s.rateRepo.CountActiveRatesByHouse(ctx, window.HouseID)
	if err != nil {
		return nil, err
	}
	if activeRates == 0 {
		return nil, fmt.Errorf("%w: house %d has no active exchange rates; register rates before opening", apperrors.ErrInvalidState, window.HouseID)
	}

	codes := make(map[int64]string, len(req.Float))
	floatEntries := make([]domain.FloatEntry, len(req.Float))
	for i, seed := range req.Float {
		currency, err := resolveCurrency(ctx, s.masterRepo, seed.CurrencyCode)
		if err != nil {
			return nil, err
		}
		codes[currency.CurrencyID] = currency.Code
		floatEntries[i] = domain.FloatEntry{
			CurrencyID: currency.CurrencyID,
			Amount:     seed.Amount,
			SeedAmount: seed.Amount,
		}
	}

	opening := domain.Opening{
		WindowID:     windowID,
		OperatorID:   op.OperatorID,
		OpenedAt:     now,
		Notes:        req.Notes,
		Active:       true,
		FloatEntries: floatEntries,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     op.OperatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: op.OperatorID,
		},
	}
	saved, err := s.windowRepo.CreateOpening(ctx, opening)
	if err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("window opened",
		"windowID", windowID, "openingID", saved.OpeningID, "operatorID", op.OperatorID)

	resp := dto.ToOpeningResponse(*saved, codes)
	return &resp, nil
}

// holderOrAdmin verifies the operator holds the active opening of the
// window, or is an administrator of the window's house.
func (s *WindowService) holderOrAdmin(ctx context.Context, windowID int64) (middleware.OperatorContext, *domain.TellerWindow, *domain.Opening, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return op, nil, nil, err
	}
	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return op, nil, nil, err
	}
	if err := requireSameHouse(op, window.HouseID); err != nil {
		return op, nil, nil, err
	}
	opening, err := s.windowRepo.FindActiveOpening(ctx, windowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return op, nil, nil, fmt.Errorf("%w: window %d has no active opening", apperrors.ErrInvalidState, windowID)
		}
		return op, nil, nil, err
	}
	if !op.Role.IsAdmin() && opening.OperatorID != op.OperatorID {
		return op, nil, nil, fmt.Errorf("%w: window %d was opened by another operator", apperrors.ErrForbidden, windowID)
	}
	return op, window, opening, nil
}

// PauseWindow moves an OPEN window to PAUSED.
func (s *WindowService) PauseWindow(ctx context.Context, windowID int64) (*dto.WindowResponse, error) {
	op, _, _, err := s.holderOrAdmin(ctx, windowID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.windowRepo.UpdateWindowState(ctx, windowID, domain.WindowOpen, domain.WindowPaused, op.OperatorID, now); err != nil {
		return nil, err
	}
	return s.GetWindow(ctx, windowID)
}

// ResumeWindow moves a PAUSED window back to OPEN.
func (s *WindowService) ResumeWindow(ctx context.Context, windowID int64) (*dto.WindowResponse, error) {
	op, _, _, err := s.holderOrAdmin(ctx, windowID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.windowRepo.UpdateWindowState(ctx, windowID, domain.WindowPaused, domain.WindowOpen, op.OperatorID, now); err != nil {
		return nil, err
	}
	return s.GetWindow(ctx, windowID)
}

// CloseWindow reconciles the active opening against the physical count and
// moves the window to CLOSED. A paused window must be resumed first.
func (s *WindowService) CloseWindow(ctx context.Context, windowID int64, req dto.CloseWindowRequest) (*dto.ClosingResponse, error) {
	op, window, opening, err := s.holderOrAdmin(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if window.State != domain.WindowOpen {
		return nil, fmt.Errorf("%w: window %d is %s, expected OPEN", apperrors.ErrInvalidState, windowID, window.State)
	}

	expected, profit, _, err := s.floatSvc.reconcileOpening(ctx, opening)
	if err != nil {
		return nil, err
	}

	// Index the physical count by currency id; every counted currency must
	// be a known one.
	counted := make(map[int64]decimal.Decimal, len(req.Counts))
	codes := make(map[int64]string)
	for _, count := range req.Counts {
		if count.Amount.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: counted amount for %s cannot be negative", apperrors.ErrValidation, count.CurrencyCode)
		}
		currency, err := resolveCurrency(ctx, s.masterRepo, count.CurrencyCode)
		if err != nil {
			return nil, err
		}
		if _, dup := counted[currency.CurrencyID]; dup {
			return nil, fmt.Errorf("%w: duplicate counted currency %s", apperrors.ErrValidation, count.CurrencyCode)
		}
		counted[currency.CurrencyID] = count.Amount
		codes[currency.CurrencyID] = currency.Code
	}

	// Every currency the ledger expects must have been counted.
	for currencyID := range expected {
		if _, ok := counted[currencyID]; !ok {
			missingCodes, cerr := codesForIDs(ctx, s.masterRepo, []int64{currencyID})
			code := fmt.Sprintf("currency %d", currencyID)
			if cerr == nil {
				code = missingCodes[currencyID]
			}
			return nil, fmt.Errorf("%w: physical count missing for %s", apperrors.ErrValidation, code)
		}
	}

	entries := make([]domain.ClosingEntry, 0, len(counted))
	hasDiscrepancy := false
	for currencyID, physical := range counted {
		exp := expected[currencyID]
		discrepancy := physical.Sub(exp)
		if !discrepancy.IsZero() {
			hasDiscrepancy = true
		}
		entries = append(entries, domain.ClosingEntry{
			CurrencyID:         currencyID,
			ExpectedAmount:     exp,
			PhysicalAmount:     physical,
			DiscrepancyAmount:  discrepancy,
			DiscrepancyPercent: exchange.DiscrepancyPercent(discrepancy, exp).Round(2),
			Confirmed:          req.Confirmed,
		})
	}
	if hasDiscrepancy && !req.Confirmed {
		return nil, fmt.Errorf("%w: counted amounts differ from expected; explicit confirmation required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	closing := domain.Closing{
		OpeningID:   opening.OpeningID,
		WindowID:    windowID,
		OperatorID:  op.OperatorID,
		ClosedAt:    now,
		TotalProfit: profit,
		Notes:       req.Notes,
		Entries:     entries,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     op.OperatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: op.OperatorID,
		},
	}
	saved, err := s.windowRepo.CreateClosing(ctx, closing)
	if err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("window closed",
		"windowID", windowID, "closingID", saved.ClosingID, "totalProfit", profit.String(), "discrepancies", hasDiscrepancy)

	resp := dto.ToClosingResponse(*saved, codes)
	return &resp, nil
}

// ClosingSummary previews the expected amounts without committing a
// closing.
func (s *WindowService) ClosingSummary(ctx context.Context, windowID int64) (*dto.ClosingSummaryResponse, error) {
	_, _, opening, err := s.holderOrAdmin(ctx, windowID)
	if err != nil {
		return nil, err
	}
	return s.floatSvc.ExpectedAmounts(ctx, opening.OpeningID)
}

// CurrentOpening retrieves the active opening of a window with its float.
func (s *WindowService) CurrentOpening(ctx context.Context, windowID int64) (*dto.OpeningResponse, error) {
	opening, err := s.windowRepo.FindActiveOpening(ctx, windowID)
	if err != nil {
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
	resp := dto.ToOpeningResponse(*opening, codes)
	return &resp, nil
}

// WindowHistory retrieves past openings and closings of a window.
func (s *WindowService) WindowHistory(ctx context.Context, windowID int64, from, to *time.Time) (*dto.WindowHistoryResponse, error) {
	if _, err := s.windowRepo.FindWindowByID(ctx, windowID); err != nil {
		return nil, err
	}
	openings, err := s.windowRepo.ListOpeningsByWindow(ctx, windowID, from, to)
	if err != nil {
		return nil, err
	}
	closings, err := s.windowRepo.ListClosingsByWindow(ctx, windowID, from, to)
	if err != nil {
		return nil, err
	}

	history := &dto.WindowHistoryResponse{
		WindowID: windowID,
		Openings: make([]dto.OpeningResponse, len(openings)),
		Closings: make([]dto.ClosingResponse, len(closings)),
	}
	for i, opening := range openings {
		history.Openings[i] = dto.ToOpeningResponse(opening, nil)
	}
	for i, closing := range closings {
		history.Closings[i] = dto.ToClosingResponse(closing, nil)
	}
	return history, nil
}

// CanOperate reports whether the operator in the context may record
// transactions at the window right now: the window is OPEN and the operator
// holds its active opening (admins may operate any open window of their
// house).
func (s *WindowService) CanOperate(ctx context.Context, windowID int64) (bool, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return false, err
	}
	window, err := s.windowRepo.FindWindowByID(ctx, windowID)
	if err != nil {
		return false, err
	}
	if window.State != domain.WindowOpen || !window.IsActive {
		return false, nil
	}
	if requireSameHouse(op, window.HouseID) != nil {
		return false, nil
	}
	opening, err := s.windowRepo.FindActiveOpening(ctx, windowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return op.Role.IsAdmin() || opening.OperatorID == op.OperatorID, nil
}
