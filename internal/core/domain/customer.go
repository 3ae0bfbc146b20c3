package domain

// Customer is a registered client referenced by transactions. Managed by a
// master-data collaborator; this service only validates existence.
type Customer struct {
	CustomerID  int64  `json:"customerID"` // Primary Key
	Name        string `json:"name"`
	Document    string `json:"document"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}
