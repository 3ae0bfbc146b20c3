package domain

// Currency represents a tradable currency.
type Currency struct {
	CurrencyID int64  `json:"currencyID"` // Primary Key
	Code       string `json:"code"`       // e.g. "USD"
	Name       string `json:"name"`       // e.g. "US Dollar"
	Symbol     string `json:"symbol"`     // e.g. "$"
	Decimals   int    `json:"decimals"`   // display decimals
	IsActive   bool   `json:"isActive"`
	AuditFields
}
