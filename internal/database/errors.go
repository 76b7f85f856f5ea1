package database

import "errors"

// Sentinel errors surfaced by the store. Callers match with errors.Is; the
// HTTP layer maps them onto status codes.
var (
	// ErrNotFound means a referenced user, car, booking, or maintenance
	// window id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange means end <= start, or the duration is outside the
	// car's min/max rental-day policy.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrVehicleUnavailable means an admin has flagged the car off-market;
	// new bookings are blocked regardless of dates.
	ErrVehicleUnavailable = errors.New("vehicle unavailable")

	// ErrInvalidState means the booking is not in the status the operation
	// requires, e.g. approving an already-approved booking.
	ErrInvalidState = errors.New("invalid booking state")

	// ErrConflict means an approval-time overlap with another approved
	// booking or a maintenance window. The booking stays pending.
	ErrConflict = errors.New("booking conflict")

	// ErrVehicleInUse means a car cannot be deleted while bookings
	// reference it.
	ErrVehicleInUse = errors.New("vehicle has bookings")
)
