package services

import (
	"context"
	"time"

	"github.com/cambix/cambix_backend/internal/dto"
)

// RateSvcFacade defines the exchange rate registry operations. Mutations
// require an admin operator in the request context.
type RateSvcFacade interface {
	// CreateRate registers a new rate after validating its margins.
	CreateRate(ctx context.Context, req dto.CreateRateRequest) (*dto.RateResponse, error)

	// GetRate retrieves a rate by id.
	GetRate(ctx context.Context, rateID int64) (*dto.RateResponse, error)

	// UpdateRate adjusts the margins or keep-daily flag of a rate.
	UpdateRate(ctx context.Context, rateID int64, req dto.UpdateRateRequest) (*dto.RateResponse, error)

	// ActivateRate marks a rate active. Fails with a conflict when another
	// active rate exists for the same pair.
	ActivateRate(ctx context.Context, rateID int64, reason string) (*dto.RateResponse, error)

	// DeactivateRate marks a rate inactive.
	DeactivateRate(ctx context.Context, rateID int64, reason string) (*dto.RateResponse, error)

	// DeleteRate removes a rate that no transaction references.
	DeleteRate(ctx context.Context, rateID int64) error

	// CurrentRateFor resolves the single active rate for a pair.
	CurrentRateFor(ctx context.Context, houseID int64, sourceCode, targetCode string) (*dto.RateResponse, error)

	// ListActiveRates retrieves the active rates of a house.
	ListActiveRates(ctx context.Context, houseID int64) ([]dto.RateResponse, error)

	// RateHistory retrieves every rate ever registered for a pair.
	RateHistory(ctx context.Context, houseID int64, sourceCode, targetCode string, from, to *time.Time) ([]dto.RateResponse, error)

	// AuditTrail retrieves the mutation history of a rate.
	AuditTrail(ctx context.Context, rateID int64) ([]dto.RateAuditResponse, error)

	// RenewDailyRates recreates the keep-daily rates of a house for the
	// given day and returns how many were renewed.
	RenewDailyRates(ctx context.Context, houseID int64, day time.Time) (int, error)
}
