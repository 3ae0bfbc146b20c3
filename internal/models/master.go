package models

// ExchangeHouse is the persisted form of a currency exchange business.
type ExchangeHouse struct {
	HouseID          int64  `db:"house_id"`
	Identifier       string `db:"identifier"`
	Name             string `db:"name"`
	MasterCurrencyID int64  `db:"master_currency_id"`
	IsActive         bool   `db:"is_active"`
	AuditFields
}

// Currency is the persisted form of a tradable currency.
type Currency struct {
	CurrencyID int64  `db:"currency_id"`
	Code       string `db:"code"`
	Name       string `db:"name"`
	Symbol     string `db:"symbol"`
	Decimals   int    `db:"decimals"`
	IsActive   bool   `db:"is_active"`
	AuditFields
}

// Operator is the persisted form of a window operator.
type Operator struct {
	OperatorID   int64  `db:"operator_id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	Role         string `db:"role"`
	HouseID      int64  `db:"house_id"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}

// Customer is the persisted form of a registered customer.
type Customer struct {
	CustomerID  int64  `db:"customer_id"`
	Name        string `db:"name"`
	Document    string `db:"document"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}
