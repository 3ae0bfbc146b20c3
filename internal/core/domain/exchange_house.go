package domain

// ExchangeHouse represents a business entity operating one or more teller windows.
// Its master currency is the accounting currency used for profit reporting.
// This service never mutates exchange houses; they are reference data.
type ExchangeHouse struct {
	HouseID          int64  `json:"houseID"` // Primary Key
	Identifier       string `json:"identifier"`
	Name             string `json:"name"`
	MasterCurrencyID int64  `json:"masterCurrencyID"` // FK -> Currency
	IsActive         bool   `json:"isActive"`
	AuditFields
}
