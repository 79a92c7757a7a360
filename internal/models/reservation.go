package models

import "time"

// EquipmentLine is one requested equipment item with its quantity.
type EquipmentLine struct {
	EquipmentID int64 `json:"equipment_id"`
	Quantity    int   `json:"quantity"`
}

// Reservation is the central entity. Rows are never deleted; cancellation
// flips the status and the row stays for history.
type Reservation struct {
	ID         int64           `json:"id"`
	Reference  string          `json:"reference"`
	UserID     string          `json:"user_id"`
	CourtID    int64           `json:"court_id"`
	Date       time.Time       `json:"date"`
	StartMin   int             `json:"start_min"`
	EndMin     int             `json:"end_min"`
	Equipment  []EquipmentLine `json:"equipment,omitempty"`
	CoachID    int64           `json:"coach_id,omitempty"` // 0 means no coach
	TotalPrice int64           `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int64           `json:"version"`
}

// SlotRequest carries the slot shape shared by booking, quoting,
// availability and waitlist calls.
type SlotRequest struct {
	CourtID   int64
	Date      time.Time
	StartMin  int
	EndMin    int
	Equipment []EquipmentLine
	CoachID   int64
}

type WaitlistEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	CourtID   int64     `json:"court_id"`
	Date      time.Time `json:"date"`
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
