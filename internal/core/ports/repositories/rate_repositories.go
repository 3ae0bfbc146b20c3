package repositories

import (
	"context"
	"time"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// RateReader defines read operations on exchange rates.
type RateReader interface {
	// FindRateByID retrieves a rate by its id.
	FindRateByID(ctx context.Context, rateID int64) (*domain.ExchangeRate, error)

	// FindActiveRate retrieves the single active rate for a currency pair
	// within a house, if one exists.
	FindActiveRate(ctx context.Context, houseID, sourceCurrencyID, targetCurrencyID int64) (*domain.ExchangeRate, error)

	// ListActiveRatesByHouse retrieves all active rates for a house.
	ListActiveRatesByHouse(ctx context.Context, houseID int64) ([]domain.ExchangeRate, error)

	// CountActiveRatesByHouse returns the number of active rates for a house.
	CountActiveRatesByHouse(ctx context.Context, houseID int64) (int64, error)

	// ListRateHistory retrieves every rate (active or not) for a pair,
	// optionally bounded by effective date, newest first.
	ListRateHistory(ctx context.Context, houseID, sourceCurrencyID, targetCurrencyID int64, from, to *time.Time) ([]domain.ExchangeRate, error)
}

// RateWriter defines write operations on exchange rates.
type RateWriter interface {
	// SaveRate persists a new rate and returns it with its generated id.
	// Returns apperrors.ErrConflict when an active rate already exists for
	// the pair and the new rate is active.
	SaveRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error)

	// UpdateRate updates the mutable fields of an existing rate.
	UpdateRate(ctx context.Context, rate domain.ExchangeRate) error

	// SetRateActive flips the active flag of a rate. Activation relies on
	// the partial unique index over active pairs, so a concurrent
	// activation of the same pair surfaces as apperrors.ErrConflict.
	SetRateActive(ctx context.Context, rateID int64, active bool, updatedBy int64, at time.Time) error

	// DeleteRate removes a rate permanently.
	DeleteRate(ctx context.Context, rateID int64) error

	// RenewKeepDailyRates recreates every keep-daily active rate of the
	// house for the given day: each previous rate is deactivated and a
	// fresh active copy with a new effective date is inserted, all in one
	// transaction. Returns the newly created rates.
	RenewKeepDailyRates(ctx context.Context, houseID int64, day time.Time, renewedBy int64) ([]domain.ExchangeRate, error)
}

// RateAuditor defines operations on the rate audit trail.
type RateAuditor interface {
	// SaveRateAudit appends an audit entry for a rate mutation.
	SaveRateAudit(ctx context.Context, entry domain.RateAuditEntry) error

	// ListRateAudit retrieves the audit trail of a rate, newest first.
	ListRateAudit(ctx context.Context, rateID int64) ([]domain.RateAuditEntry, error)
}

// RateRepositoryFacade combines all exchange rate repository operations.
type RateRepositoryFacade interface {
	RateReader
	RateWriter
	RateAuditor
}
