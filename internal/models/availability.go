package models

import "time"

// CachedAvailability is a cached answer to "is this car free for this range".
type CachedAvailability struct {
	CarID     int64     `json:"car_id"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Available bool      `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}
