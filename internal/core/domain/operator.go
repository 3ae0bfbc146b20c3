package domain

// OperatorRole defines the possible roles of an operator within an exchange house.
type OperatorRole string

const (
	RoleMasterAdmin OperatorRole = "MASTER_ADMIN"
	RoleAdmin       OperatorRole = "ADMIN"
	RoleTeller      OperatorRole = "TELLER"
)

// IsAdmin reports whether the role carries administrative privileges.
func (r OperatorRole) IsAdmin() bool {
	return r == RoleMasterAdmin || r == RoleAdmin
}

// Operator is a user who opens windows and processes exchanges.
// Each operator belongs to exactly one exchange house.
type Operator struct {
	OperatorID   int64        `json:"operatorID"` // Primary Key
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	Role         OperatorRole `json:"role"`
	HouseID      int64        `json:"houseID"` // FK -> ExchangeHouse
	IsActive     bool         `json:"isActive"`
	AuditFields
}
