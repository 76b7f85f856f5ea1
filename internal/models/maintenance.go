package models

import (
	"time"

	"dodscars/internal/daterange"
)

// MaintenanceWindow blocks a car's availability for a date span. A window
// with no end date is open-ended and blocks indefinitely until closed.
type MaintenanceWindow struct {
	ID        int64      `json:"id"`
	CarID     int64      `json:"car_id"`
	Type      string     `json:"type"`
	Cost      float64    `json:"cost,omitempty"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Open reports whether the window has no end date yet.
func (m *MaintenanceWindow) Open() bool {
	return m.EndDate == nil
}

// OverlapsRange reports whether the window blocks any date in r. An open
// window extends to the end of time.
func (m *MaintenanceWindow) OverlapsRange(r daterange.Range) bool {
	if m.EndDate == nil {
		return !m.StartDate.After(r.End)
	}
	return !m.StartDate.After(r.End) && !r.Start.After(*m.EndDate)
}
