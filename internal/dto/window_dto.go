package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// CreateWindowRequest defines the payload for registering a teller window.
type CreateWindowRequest struct {
	HouseID    int64  `json:"houseId" binding:"required,gt=0"`
	Identifier string `json:"identifier" binding:"required,max=20"`
	Name       string `json:"name" binding:"required,max=100"`
}

// UpdateWindowRequest defines the payload for renaming a window.
type UpdateWindowRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
}

// FloatSeedInput is one currency of the opening float declaration.
type FloatSeedInput struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,currency_code"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// OpenWindowRequest defines the payload for opening a window with its
// initial float.
type OpenWindowRequest struct {
	Float []FloatSeedInput `json:"float" binding:"required,min=1,dive"`
	Notes string           `json:"notes" binding:"max=500"`
}

// PhysicalCountInput is one currency of the counted cash at closing time.
type PhysicalCountInput struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,currency_code"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// CloseWindowRequest defines the payload for closing a window against a
// physical count.
type CloseWindowRequest struct {
	Counts    []PhysicalCountInput `json:"counts" binding:"required,min=1,dive"`
	Confirmed bool                 `json:"confirmed"`
	Notes     string               `json:"notes" binding:"max=500"`
}

// WindowResponse defines the API representation of a teller window.
type WindowResponse struct {
	WindowID   int64     `json:"windowId"`
	HouseID    int64     `json:"houseId"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FloatEntryResponse is one currency balance of an opening's float.
type FloatEntryResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// OpeningResponse defines the API representation of a window opening.
type OpeningResponse struct {
	OpeningID  int64                `json:"openingId"`
	WindowID   int64                `json:"windowId"`
	OperatorID int64                `json:"operatorId"`
	OpenedAt   time.Time            `json:"openedAt"`
	Active     bool                 `json:"active"`
	Notes      string               `json:"notes,omitempty"`
	Float      []FloatEntryResponse `json:"float"`
}

// ClosingEntryResponse is one currency of a closing reconciliation.
type ClosingEntryResponse struct {
	CurrencyCode       string          `json:"currencyCode"`
	ExpectedAmount     decimal.Decimal `json:"expectedAmount"`
	PhysicalAmount     decimal.Decimal `json:"physicalAmount"`
	DiscrepancyAmount  decimal.Decimal `json:"discrepancyAmount"`
	DiscrepancyPercent decimal.Decimal `json:"discrepancyPercent"`
	Confirmed          bool            `json:"confirmed"`
	Note               string          `json:"note,omitempty"`
}

// ClosingResponse defines the API representation of a window closing.
type ClosingResponse struct {
	ClosingID   int64                  `json:"closingId"`
	OpeningID   int64                  `json:"openingId"`
	WindowID    int64                  `json:"windowId"`
	OperatorID  int64                  `json:"operatorId"`
	ClosedAt    time.Time              `json:"closedAt"`
	TotalProfit decimal.Decimal        `json:"totalProfit"`
	Notes       string                 `json:"notes,omitempty"`
	Entries     []ClosingEntryResponse `json:"entries"`
}

// ClosingSummaryResponse reports what the ledger expects in the drawer
// before a closing is committed.
type ClosingSummaryResponse struct {
	OpeningID        int64                `json:"openingId"`
	WindowID         int64                `json:"windowId"`
	ExpectedAmounts  []FloatEntryResponse `json:"expectedAmounts"`
	TotalProfit      decimal.Decimal      `json:"totalProfit"`
	TransactionCount int64                `json:"transactionCount"`
}

// WindowHistoryResponse pairs the openings and closings of a window over a
// period.
type WindowHistoryResponse struct {
	WindowID int64             `json:"windowId"`
	Openings []OpeningResponse `json:"openings"`
	Closings []ClosingResponse `json:"closings"`
}

// ToWindowResponse maps a domain window to its API representation.
func ToWindowResponse(window domain.TellerWindow) WindowResponse {
	return WindowResponse{
		WindowID:   window.WindowID,
		HouseID:    window.HouseID,
		Identifier: window.Identifier,
		Name:       window.Name,
		State:      string(window.State),
		IsActive:   window.IsActive,
		CreatedAt:  window.CreatedAt,
	}
}

// ToOpeningResponse maps a domain opening to its API representation. codes
// maps currency ids to codes.
func ToOpeningResponse(opening domain.Opening, codes map[int64]string) OpeningResponse {
	float := make([]FloatEntryResponse, 0, len(opening.FloatEntries))
	for _, entry := range opening.FloatEntries {
		float = append(float, FloatEntryResponse{
			CurrencyCode: codes[entry.CurrencyID],
			Amount:       entry.Amount,
		})
	}
	return OpeningResponse{
		OpeningID:  opening.OpeningID,
		WindowID:   opening.WindowID,
		OperatorID: opening.OperatorID,
		OpenedAt:   opening.OpenedAt,
		Active:     opening.Active,
		Notes:      opening.Notes,
		Float:      float,
	}
}

// ToClosingResponse maps a domain closing to its API representation. codes
// maps currency ids to codes.
func ToClosingResponse(closing domain.Closing, codes map[int64]string) ClosingResponse {
	entries := make([]ClosingEntryResponse, 0, len(closing.Entries))
	for _, entry := range closing.Entries {
		entries = append(entries, ClosingEntryResponse{
			CurrencyCode:       codes[entry.CurrencyID],
			ExpectedAmount:     entry.ExpectedAmount,
			PhysicalAmount:     entry.PhysicalAmount,
			DiscrepancyAmount:  entry.DiscrepancyAmount,
			DiscrepancyPercent: entry.DiscrepancyPercent,
			Confirmed:          entry.Confirmed,
			Note:               entry.Note,
		})
	}
	return ClosingResponse{
		ClosingID:   closing.ClosingID,
		OpeningID:   closing.OpeningID,
		WindowID:    closing.WindowID,
		OperatorID:  closing.OperatorID,
		ClosedAt:    closing.ClosedAt,
		TotalProfit: closing.TotalProfit,
		Notes:       closing.Notes,
		Entries:     entries,
	}
}
