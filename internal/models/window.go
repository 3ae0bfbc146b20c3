package models

// TellerWindow is the persisted form of a teller window.
type TellerWindow struct {
	WindowID   int64  `db:"window_id"`
	HouseID    int64  `db:"house_id"`
	Identifier string `db:"identifier"`
	Name       string `db:"name"`
	State      string `db:"state"`
	IsActive   bool   `db:"is_active"`
	AuditFields
}
