package models

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	// DefaultMinRentDays / DefaultMaxRentDays apply when a car is added
	// without explicit rental-day bounds.
	DefaultMinRentDays = 1
	DefaultMaxRentDays = 30

	// MaxBookingHorizonDays limits how far into the future a booking may start.
	MaxBookingHorizonDays = 365

	// AvailabilityCacheTTL is how long cached availability answers stay fresh.
	// Stale reads are acceptable: approval always re-checks against the store.
	AvailabilityCacheTTL = 5 * 60 // seconds

	// RateLimitRPS / RateLimitBurst are the API rate-limit defaults.
	RateLimitRPS   = 10
	RateLimitBurst = 20
)
