package models

import (
	"fmt"
	"time"
)

type Car struct {
	ID           int64     `json:"id" yaml:"id"`
	Make         string    `json:"make" yaml:"make"`
	Model        string    `json:"model" yaml:"model"`
	Year         int       `json:"year" yaml:"year"`
	Color        string    `json:"color,omitempty" yaml:"color"`
	Mileage      int64     `json:"mileage" yaml:"mileage"`
	DailyRate    float64   `json:"daily_rate" yaml:"daily_rate"`
	AvailableNow bool      `json:"available_now" yaml:"available_now"`
	MinRentDays  int       `json:"min_rent_days" yaml:"min_rent_days"`
	MaxRentDays  int       `json:"max_rent_days" yaml:"max_rent_days"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

// Label is the human-readable car name used in logs and API responses.
func (c *Car) Label() string {
	return fmt.Sprintf("%d %s %s", c.Year, c.Make, c.Model)
}

// AllowsDuration reports whether the per-car rental policy permits a rental
// of the given number of days.
func (c *Car) AllowsDuration(days int) bool {
	return days >= c.MinRentDays && days <= c.MaxRentDays
}
