package models

import (
	"math"
	"time"

	"dodscars/internal/daterange"
)

type Booking struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	UserID     int64     `json:"user_id"`
	CarID      int64     `json:"car_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	RentalDays int       `json:"rental_days"`
	TotalFee   float64   `json:"total_fee"`
	Status     string    `json:"status"` // pending, approved, rejected
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Range returns the booked interval.
func (b *Booking) Range() daterange.Range {
	return daterange.Range{Start: b.StartDate, End: b.EndDate}
}

type BookingCharge struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	Code      string    `json:"code"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// TotalFee computes the derived fee: daily rate times rental days plus the
// sum of charges, rounded to two decimals. The stored bookings.total_fee
// column is a cache of this value, refreshed whenever a charge is added.
func TotalFee(dailyRate float64, rentalDays int, charges []BookingCharge) float64 {
	total := dailyRate * float64(rentalDays)
	for _, c := range charges {
		total += c.Amount
	}
	return math.Round(total*100) / 100
}
