package repositories

import (
	"context"
	"time"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// WindowReader defines read operations on teller windows.
type WindowReader interface {
	// FindWindowByID retrieves a window by its id.
	FindWindowByID(ctx context.Context, windowID int64) (*domain.TellerWindow, error)

	// FindWindowByIdentifier retrieves a window by its business identifier
	// within a house.
	FindWindowByIdentifier(ctx context.Context, houseID int64, identifier string) (*domain.TellerWindow, error)

	// ListWindowsByHouse retrieves the windows of a house, optionally
	// filtered by lifecycle state.
	ListWindowsByHouse(ctx context.Context, houseID int64, state *domain.WindowState) ([]domain.TellerWindow, error)
}

// WindowWriter defines write operations on teller windows.
type WindowWriter interface {
	// SaveWindow persists a new window and returns it with its generated id.
	SaveWindow(ctx context.Context, window domain.TellerWindow) (*domain.TellerWindow, error)

	// UpdateWindow updates the mutable descriptive fields of a window.
	UpdateWindow(ctx context.Context, window domain.TellerWindow) error

	// UpdateWindowState transitions a window from one lifecycle state to
	// another with a compare-and-set on the current state. Returns
	// apperrors.ErrInvalidState when the window is no longer in the
	// expected state.
	UpdateWindowState(ctx context.Context, windowID int64, from, to domain.WindowState, updatedBy int64, at time.Time) error

	// SetWindowActive enables or disables a window.
	SetWindowActive(ctx context.Context, windowID int64, active bool, updatedBy int64, at time.Time) error
}

// OpeningReader defines read operations on window openings.
type OpeningReader interface {
	// FindOpeningByID retrieves an opening with its seeded float entries.
	FindOpeningByID(ctx context.Context, openingID int64) (*domain.Opening, error)

	// FindActiveOpening retrieves the active opening of a window, with its
	// float entries.
	FindActiveOpening(ctx context.Context, windowID int64) (*domain.Opening, error)

	// FindActiveOpeningByOperator retrieves the active opening held by an
	// operator, if any.
	FindActiveOpeningByOperator(ctx context.Context, operatorID int64) (*domain.Opening, error)

	// ListOpeningsByWindow retrieves the openings of a window, optionally
	// bounded by opening time, newest first.
	ListOpeningsByWindow(ctx context.Context, windowID int64, from, to *time.Time) ([]domain.Opening, error)
}

// OpeningWriter defines write operations on window openings.
type OpeningWriter interface {
	// CreateOpening atomically records an opening with its float seed and
	// moves the window to OPEN. Partial unique indexes on active openings
	// turn a concurrent open of the same window, or a second open by the
	// same operator, into apperrors.ErrConflict.
	CreateOpening(ctx context.Context, opening domain.Opening) (*domain.Opening, error)
}

// ClosingReader defines read operations on window closings.
type ClosingReader interface {
	// FindClosingByID retrieves a closing with its per-currency entries.
	FindClosingByID(ctx context.Context, closingID int64) (*domain.Closing, error)

	// FindClosingByOpening retrieves the closing recorded for an opening.
	FindClosingByOpening(ctx context.Context, openingID int64) (*domain.Closing, error)

	// ListClosingsByWindow retrieves the closings of a window, optionally
	// bounded by closing time, newest first.
	ListClosingsByWindow(ctx context.Context, windowID int64, from, to *time.Time) ([]domain.Closing, error)
}

// ClosingWriter defines write operations on window closings.
type ClosingWriter interface {
	// CreateClosing atomically records a closing with its entries,
	// deactivates the opening and moves the window to CLOSED.
	CreateClosing(ctx context.Context, closing domain.Closing) (*domain.Closing, error)
}

// WindowRepositoryFacade combines window, opening and closing repository
// operations.
type WindowRepositoryFacade interface {
	WindowReader
	WindowWriter
	OpeningReader
	OpeningWriter
	ClosingReader
	ClosingWriter
}
