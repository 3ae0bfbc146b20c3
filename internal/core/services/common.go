package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	"github.com/cambix/cambix_backend/internal/middleware"
)

// operatorFromCtx pulls the authenticated operator out of the context. The
// auth middleware guarantees it for protected routes.
func operatorFromCtx(ctx context.Context) (middleware.OperatorContext, error) {
	op, ok := middleware.GetOperatorFromCtx(ctx)
	if !ok {
		return middleware.OperatorContext{}, fmt.Errorf("%w: no authenticated operator", apperrors.ErrForbidden)
	}
	return op, nil
}

// requireAdmin pulls the operator and rejects non-admin roles.
func requireAdmin(ctx context.Context) (middleware.OperatorContext, error) {
	op, err := operatorFromCtx(ctx)
	if err != nil {
		return op, err
	}
	if !op.Role.IsAdmin() {
		return op, fmt.Errorf("%w: administrator role required", apperrors.ErrForbidden)
	}
	return op, nil
}

// requireSameHouse rejects operators acting on another exchange house.
// Master administrators span houses; admins and tellers are house-bound.
func requireSameHouse(op middleware.OperatorContext, houseID int64) error {
	if op.Role == domain.RoleMasterAdmin {
		return nil
	}
	if op.HouseID != houseID {
		return fmt.Errorf("%w: operator does not belong to exchange house %d", apperrors.ErrForbidden, houseID)
	}
	return nil
}

// currencyCodes flattens a currency map into an id to code lookup for
// response mapping.
func currencyCodes(currencies map[int64]domain.Currency) map[int64]string {
	codes := make(map[int64]string, len(currencies))
	for id, c := range currencies {
		codes[id] = c.Code
	}
	return codes
}

// codesForIDs resolves the codes of the given currency ids.
func codesForIDs(ctx context.Context, masterRepo portsrepo.MasterDataRepositoryFacade, ids []int64) (map[int64]string, error) {
	currencies, err := masterRepo.FindCurrenciesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return currencyCodes(currencies), nil
}

// resolveCurrency looks a currency up by code and rewrites not-found into a
// validation error so callers get a 400, not a 404 about a side entity.
func resolveCurrency(ctx context.Context, masterRepo portsrepo.MasterDataRepositoryFacade, code string) (*domain.Currency, error) {
	currency, err := masterRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown currency code %q", apperrors.ErrValidation, code)
		}
		return nil, fmt.Errorf("failed to resolve currency %q: %w", code, err)
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("%w: currency %q is not active", apperrors.ErrValidation, code)
	}
	return currency, nil
}
