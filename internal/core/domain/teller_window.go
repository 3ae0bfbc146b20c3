package domain

// WindowState indicates the operational state of a teller window.
//
// Valid transitions: CLOSED -> OPEN -> PAUSED -> OPEN -> CLOSED.
// CLOSED is both the initial state and the terminal state of each cycle;
// a closed window can be reopened, which starts a new cycle.
type WindowState string

const (
	WindowClosed WindowState = "CLOSED"
	WindowOpen   WindowState = "OPEN"
	WindowPaused WindowState = "PAUSED"
)

// TellerWindow is an operational station that holds a cash float and
// processes exchanges while OPEN.
type TellerWindow struct {
	WindowID   int64       `json:"windowID"` // Primary Key
	HouseID    int64       `json:"houseID"`  // FK -> ExchangeHouse
	Identifier string      `json:"identifier"`
	Name       string      `json:"name"`
	State      WindowState `json:"state"`
	IsActive   bool        `json:"isActive"` // administratively enabled
	AuditFields
}
