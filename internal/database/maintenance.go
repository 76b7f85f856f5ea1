package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/models"
)

// OpenMaintenance records a maintenance window. A nil end date means the
// window is open-ended and blocks the car until closed. Approved bookings
// that overlap the new window are returned as warnings; scheduling is
// advisory and never cancels committed bookings.
func (db *DB) OpenMaintenance(ctx context.Context, w *models.MaintenanceWindow) ([]*models.Booking, error) {
	w.StartDate = daterange.Truncate(w.StartDate)
	if w.EndDate != nil {
		end := daterange.Truncate(*w.EndDate)
		if end.Before(w.StartDate) {
			return nil, fmt.Errorf("maintenance end before start: %w", ErrInvalidRange)
		}
		w.EndDate = &end
	}

	if _, err := db.GetCar(ctx, w.CarID); err != nil {
		return nil, err
	}

	var endStr any
	if w.EndDate != nil {
		endStr = w.EndDate.Format(daterange.DateFormat)
	}
	query := `INSERT INTO maintenance (car_id, type, cost, start_date, end_date, notes)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		w.CarID, w.Type, w.Cost, w.StartDate.Format(daterange.DateFormat), endStr, w.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open maintenance window: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	w.ID = id

	warnings, err := db.approvedOverlapping(ctx, w)
	if err != nil {
		return nil, err
	}
	return warnings, nil
}

// approvedOverlapping lists approved bookings the window collides with.
func (db *DB) approvedOverlapping(ctx context.Context, w *models.MaintenanceWindow) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE car_id = ? AND status = ? AND end_date >= ?`
	args := []any{w.CarID, models.StatusApproved, w.StartDate.Format(daterange.DateFormat)}
	if w.EndDate != nil {
		query += ` AND start_date <= ?`
		args = append(args, w.EndDate.Format(daterange.DateFormat))
	}
	query += ` ORDER BY start_date ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CloseMaintenance sets the end date of a window. The end must not precede
// the window start.
func (db *DB) CloseMaintenance(ctx context.Context, id int64, end time.Time) error {
	w, err := db.GetMaintenance(ctx, id)
	if err != nil {
		return err
	}

	endDay := daterange.Truncate(end)
	if endDay.Before(w.StartDate) {
		return fmt.Errorf("maintenance end before start: %w", ErrInvalidRange)
	}

	query := `UPDATE maintenance SET end_date = ? WHERE maint_id = ?`
	if _, err := db.ExecContext(ctx, query, endDay.Format(daterange.DateFormat), id); err != nil {
		return fmt.Errorf("failed to close maintenance window: %w", err)
	}
	return nil
}

const maintenanceColumns = `maint_id, car_id, type, COALESCE(cost, 0), start_date, end_date, COALESCE(notes, ''), created_at`

func scanMaintenance(row interface{ Scan(...any) error }) (*models.MaintenanceWindow, error) {
	var (
		w        models.MaintenanceWindow
		startStr string
		endStr   sql.NullString
	)
	err := row.Scan(&w.ID, &w.CarID, &w.Type, &w.Cost, &startStr, &endStr, &w.Notes, &w.CreatedAt)
	if err != nil {
		return nil, err
	}

	w.StartDate, err = time.Parse(daterange.DateFormat, startStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse maintenance start date %s: %w", startStr, err)
	}
	if endStr.Valid {
		end, err := time.Parse(daterange.DateFormat, endStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse maintenance end date %s: %w", endStr.String, err)
		}
		w.EndDate = &end
	}
	return &w, nil
}

func (db *DB) GetMaintenance(ctx context.Context, id int64) (*models.MaintenanceWindow, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance WHERE maint_id = ?`
	w, err := scanMaintenance(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("maintenance window %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance window: %w", err)
	}
	return w, nil
}

// ListMaintenance returns windows for a car, newest first. openOnly filters
// to windows without an end date.
func (db *DB) ListMaintenance(ctx context.Context, carID int64, openOnly bool) ([]*models.MaintenanceWindow, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance WHERE car_id = ?`
	if openOnly {
		query += ` AND end_date IS NULL`
	}
	query += ` ORDER BY start_date DESC`

	rows, err := db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance windows: %w", err)
	}
	defer rows.Close()

	var windows []*models.MaintenanceWindow
	for rows.Next() {
		w, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// OpenWindowsFor returns the windows that block any date of rng for the car:
// start <= rng.End and (no end date yet, or end >= rng.Start).
func (db *DB) OpenWindowsFor(ctx context.Context, carID int64, rng daterange.Range) ([]*models.MaintenanceWindow, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance
              WHERE car_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
              ORDER BY start_date ASC`
	rows, err := db.QueryContext(ctx, query, carID,
		rng.End.Format(daterange.DateFormat), rng.Start.Format(daterange.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance windows: %w", err)
	}
	defer rows.Close()

	var windows []*models.MaintenanceWindow
	for rows.Next() {
		w, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
