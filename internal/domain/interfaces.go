package domain

import (
	"context"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/models"
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, role string) ([]*models.User, error)

	CreateCar(ctx context.Context, car *models.Car) error
	GetCar(ctx context.Context, id int64) (*models.Car, error)
	UpdateCar(ctx context.Context, car *models.Car) error
	DeleteCar(ctx context.Context, id int64) error
	ListCars(ctx context.Context) ([]*models.Car, error)
	CandidatesFor(ctx context.Context, rng daterange.Range) ([]*models.Car, error)
	SyncFleet(ctx context.Context, cars []models.Car) error

	CreateBooking(ctx context.Context, userID, carID int64, rng daterange.Range) (*models.Booking, error)
	ApproveBooking(ctx context.Context, id int64) error
	RejectBooking(ctx context.Context, id int64) error
	AddCharge(ctx context.Context, bookingID int64, code string, amount float64) (*models.BookingCharge, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]*models.Booking, error)
	ListPendingBookings(ctx context.Context) ([]*models.Booking, error)
	ListBookingsForCar(ctx context.Context, carID int64) ([]*models.Booking, error)
	ChargesFor(ctx context.Context, bookingID int64) ([]*models.BookingCharge, error)
	IsCarAvailable(ctx context.Context, carID int64, rng daterange.Range) (bool, error)

	OpenMaintenance(ctx context.Context, w *models.MaintenanceWindow) ([]*models.Booking, error)
	CloseMaintenance(ctx context.Context, id int64, end time.Time) error
	GetMaintenance(ctx context.Context, id int64) (*models.MaintenanceWindow, error)
	ListMaintenance(ctx context.Context, carID int64, openOnly bool) ([]*models.MaintenanceWindow, error)
	OpenWindowsFor(ctx context.Context, carID int64, rng daterange.Range) ([]*models.MaintenanceWindow, error)
}

// AvailabilityCache holds short-lived availability answers keyed by car and
// range. A miss is (nil, nil); errors are reserved for backend failures.
type AvailabilityCache interface {
	Get(ctx context.Context, carID int64, rng daterange.Range) (*models.CachedAvailability, error)
	Set(ctx context.Context, carID int64, rng daterange.Range, available bool) error
	InvalidateCar(ctx context.Context, carID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
