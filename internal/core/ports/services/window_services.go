package services

import (
	"context"
	"time"

	"github.com/cambix/cambix_backend/internal/dto"
)

// WindowSvcFacade defines the teller window lifecycle and administration
// operations.
type WindowSvcFacade interface {
	// CreateWindow registers a new window in CLOSED state.
	CreateWindow(ctx context.Context, req dto.CreateWindowRequest) (*dto.WindowResponse, error)

	// GetWindow retrieves a window by id.
	GetWindow(ctx context.Context, windowID int64) (*dto.WindowResponse, error)

	// ListWindows retrieves the windows of a house, optionally filtered by
	// lifecycle state.
	ListWindows(ctx context.Context, houseID int64, state *string) ([]dto.WindowResponse, error)

	// UpdateWindow renames a window.
	UpdateWindow(ctx context.Context, windowID int64, req dto.UpdateWindowRequest) (*dto.WindowResponse, error)

	// ToggleWindowActive enables or disables a window. Disabling is only
	// allowed while the window is CLOSED.
	ToggleWindowActive(ctx context.Context, windowID int64, active bool) (*dto.WindowResponse, error)

	// OpenWindow moves a CLOSED window to OPEN, seeding its float with the
	// declared amounts. Keep-daily rates of the house are renewed first if
	// this is the first opening of the day.
	OpenWindow(ctx context.Context, windowID int64, req dto.OpenWindowRequest) (*dto.OpeningResponse, error)

	// PauseWindow moves an OPEN window to PAUSED.
	PauseWindow(ctx context.Context, windowID int64) (*dto.WindowResponse, error)

	// ResumeWindow moves a PAUSED window back to OPEN.
	ResumeWindow(ctx context.Context, windowID int64) (*dto.WindowResponse, error)

	// CloseWindow reconciles the active opening against the physical count
	// and moves the window to CLOSED.
	CloseWindow(ctx context.Context, windowID int64, req dto.CloseWindowRequest) (*dto.ClosingResponse, error)

	// ClosingSummary previews the expected amounts a closing would be
	// reconciled against, without committing anything.
	ClosingSummary(ctx context.Context, windowID int64) (*dto.ClosingSummaryResponse, error)

	// CurrentOpening retrieves the active opening of a window with its
	// float.
	CurrentOpening(ctx context.Context, windowID int64) (*dto.OpeningResponse, error)

	// WindowHistory retrieves past openings and closings of a window.
	WindowHistory(ctx context.Context, windowID int64, from, to *time.Time) (*dto.WindowHistoryResponse, error)

	// CanOperate reports whether the operator in the context may record
	// transactions at the window right now.
	CanOperate(ctx context.Context, windowID int64) (bool, error)
}
