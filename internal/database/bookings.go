package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `booking_id, code, user_id, car_id, start_date, end_date, rental_days, total_fee, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var (
		b        models.Booking
		startStr string
		endStr   string
	)
	err := row.Scan(
		&b.ID, &b.Code, &b.UserID, &b.CarID, &startStr, &endStr,
		&b.RentalDays, &b.TotalFee, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.StartDate, err = time.Parse(daterange.DateFormat, startStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking start date %s: %w", startStr, err)
	}
	b.EndDate, err = time.Parse(daterange.DateFormat, endStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking end date %s: %w", endStr, err)
	}
	return &b, nil
}

// carConflict reports whether any approved booking or maintenance window for
// the car overlaps rng. It is the single conflict-check implementation, used
// by the availability engine (informational) and inside the approval
// transaction (authoritative). excludeBookingID skips the booking being
// approved.
func carConflict(ctx context.Context, q querier, carID int64, rng daterange.Range, excludeBookingID int64) (bool, error) {
	start := rng.Start.Format(daterange.DateFormat)
	end := rng.End.Format(daterange.DateFormat)

	var bookingCount int
	bookingQuery := `SELECT COUNT(*) FROM bookings
                     WHERE car_id = ? AND status = ? AND booking_id != ?
                       AND start_date <= ? AND end_date >= ?`
	err := q.QueryRowContext(ctx, bookingQuery, carID, models.StatusApproved, excludeBookingID, end, start).Scan(&bookingCount)
	if err != nil {
		return false, fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if bookingCount > 0 {
		return true, nil
	}

	var maintCount int
	maintQuery := `SELECT COUNT(*) FROM maintenance
                   WHERE car_id = ? AND start_date <= ?
                     AND (end_date IS NULL OR end_date >= ?)`
	err = q.QueryRowContext(ctx, maintQuery, carID, end, start).Scan(&maintCount)
	if err != nil {
		return false, fmt.Errorf("failed to check maintenance conflicts: %w", err)
	}
	return maintCount > 0, nil
}

// IsCarAvailable answers whether the car is free for rng: no approved
// booking overlap and no maintenance window overlap. Pending bookings never
// block; exclusivity is enforced at approval.
func (db *DB) IsCarAvailable(ctx context.Context, carID int64, rng daterange.Range) (bool, error) {
	conflict, err := carConflict(ctx, db.DB, carID, rng, 0)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// CreateBooking validates the request against the car's rental policy,
// recomputes rental_days and total_fee server-side, and inserts a pending
// booking. Pending bookings may freely overlap each other; only approval
// enforces exclusivity, so no conflict check happens here.
func (db *DB) CreateBooking(ctx context.Context, userID, carID int64, rng daterange.Range) (*models.Booking, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	car, err := db.GetCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !car.AvailableNow {
		return nil, fmt.Errorf("car %d: %w", carID, ErrVehicleUnavailable)
	}

	days := rng.Days()
	if !car.AllowsDuration(days) {
		return nil, fmt.Errorf("%d days outside car policy [%d, %d]: %w",
			days, car.MinRentDays, car.MaxRentDays, ErrInvalidRange)
	}

	booking := &models.Booking{
		Code:       uuid.NewString(),
		UserID:     userID,
		CarID:      carID,
		StartDate:  rng.Start,
		EndDate:    rng.End,
		RentalDays: days,
		TotalFee:   models.TotalFee(car.DailyRate, days, nil),
		Status:     models.StatusPending,
	}

	query := `INSERT INTO bookings (code, user_id, car_id, start_date, end_date, rental_days, total_fee, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.Code, booking.UserID, booking.CarID,
		booking.StartDate.Format(daterange.DateFormat), booking.EndDate.Format(daterange.DateFormat),
		booking.RentalDays, booking.TotalFee, booking.Status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return booking, nil
}

// ApproveBooking flips a pending booking to approved after re-running the
// conflict check inside a single transaction. The DSN opens transactions
// with an immediate write lock, so two racing approvals serialize here: the
// second begins after the first commits, sees the approved row, and fails
// with ErrConflict while its booking stays pending.
func (db *DB) ApproveBooking(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := getBooking(ctx, tx, id)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusPending {
		return fmt.Errorf("booking %d is %s: %w", id, booking.Status, ErrInvalidState)
	}

	conflict, err := carConflict(ctx, tx, booking.CarID, booking.Range(), booking.ID)
	if err != nil {
		return err
	}
	if conflict {
		return fmt.Errorf("booking %d overlaps an approved booking or maintenance window: %w", id, ErrConflict)
	}

	// Status guard: if another writer slipped in despite the lock, refuse.
	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE booking_id = ? AND status = ?`,
		models.StatusApproved, time.Now(), id, models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to approve booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrInvalidState)
	}

	return tx.Commit()
}

// RejectBooking flips a pending booking to rejected. Rejected is terminal;
// the row is kept for the audit trail.
func (db *DB) RejectBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE booking_id = ? AND status = ?`,
		models.StatusRejected, time.Now(), id, models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reject booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		booking, err := db.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("booking %d is %s: %w", id, booking.Status, ErrInvalidState)
	}
	return nil
}

// AddCharge appends a line item and refreshes the cached total_fee from its
// components (rate, days, charge sum) in one transaction.
func (db *DB) AddCharge(ctx context.Context, bookingID int64, code string, amount float64) (*models.BookingCharge, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := getBooking(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	car, err := getCar(ctx, tx, booking.CarID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO booking_charges (booking_id, code, amount, created_at) VALUES (?, ?, ?, ?)`,
		bookingID, code, amount, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add charge: %w", err)
	}
	chargeID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	var chargeSum float64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM booking_charges WHERE booking_id = ?`, bookingID,
	).Scan(&chargeSum)
	if err != nil {
		return nil, fmt.Errorf("failed to sum charges: %w", err)
	}

	total := models.TotalFee(car.DailyRate, booking.RentalDays, []models.BookingCharge{{Amount: chargeSum}})
	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET total_fee = ?, updated_at = ? WHERE booking_id = ?`,
		total, now, bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update total fee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit charge: %w", err)
	}

	return &models.BookingCharge{
		ID:        chargeID,
		BookingID: bookingID,
		Code:      code,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return getBooking(ctx, db.DB, id)
}

func getBooking(ctx context.Context, q querier, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = ?`
	b, err := scanBooking(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (db *DB) GetBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by code: %w", err)
	}
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) ListBookingsByUser(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, booking_id DESC`
	return db.queryBookings(ctx, query, userID)
}

func (db *DB) ListPendingBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = ? ORDER BY created_at ASC, booking_id ASC`
	return db.queryBookings(ctx, query, models.StatusPending)
}

func (db *DB) ListBookingsForCar(ctx context.Context, carID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE car_id = ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, carID)
}

func (db *DB) ChargesFor(ctx context.Context, bookingID int64) ([]*models.BookingCharge, error) {
	query := `SELECT charge_id, booking_id, code, amount, created_at FROM booking_charges
              WHERE booking_id = ? ORDER BY charge_id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query charges: %w", err)
	}
	defer rows.Close()

	var charges []*models.BookingCharge
	for rows.Next() {
		c := &models.BookingCharge{}
		if err := rows.Scan(&c.ID, &c.BookingID, &c.Code, &c.Amount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}
