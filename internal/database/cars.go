package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/models"
)

func (db *DB) CreateCar(ctx context.Context, car *models.Car) error {
	if car.MinRentDays == 0 {
		car.MinRentDays = models.DefaultMinRentDays
	}
	if car.MaxRentDays == 0 {
		car.MaxRentDays = models.DefaultMaxRentDays
	}
	query := `INSERT INTO cars (make, model, year, color, mileage, daily_rate, available_now, min_rent_days, max_rent_days, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		car.Make, car.Model, car.Year, car.Color, car.Mileage,
		car.DailyRate, car.AvailableNow, car.MinRentDays, car.MaxRentDays,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	car.ID = id
	car.CreatedAt = now
	car.UpdatedAt = now
	return nil
}

const carColumns = `car_id, make, model, year, COALESCE(color, ''), mileage, daily_rate, available_now, min_rent_days, max_rent_days, created_at, updated_at`

func scanCar(row interface{ Scan(...any) error }) (*models.Car, error) {
	var car models.Car
	err := row.Scan(
		&car.ID, &car.Make, &car.Model, &car.Year, &car.Color, &car.Mileage,
		&car.DailyRate, &car.AvailableNow, &car.MinRentDays, &car.MaxRentDays,
		&car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (db *DB) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	return getCar(ctx, db.DB, id)
}

func getCar(ctx context.Context, q querier, id int64) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE car_id = ?`
	car, err := scanCar(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("car %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

// UpdateCar persists admin mutations: rate, availability flag, rental-day
// bounds, mileage, color.
func (db *DB) UpdateCar(ctx context.Context, car *models.Car) error {
	query := `UPDATE cars SET make = ?, model = ?, year = ?, color = ?, mileage = ?,
              daily_rate = ?, available_now = ?, min_rent_days = ?, max_rent_days = ?, updated_at = ?
              WHERE car_id = ?`
	result, err := db.ExecContext(ctx, query,
		car.Make, car.Model, car.Year, car.Color, car.Mileage,
		car.DailyRate, car.AvailableNow, car.MinRentDays, car.MaxRentDays,
		time.Now(), car.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("car %d: %w", car.ID, ErrNotFound)
	}
	return nil
}

// DeleteCar removes a car. The RESTRICT foreign key keeps the audit trail
// intact: cars referenced by bookings cannot be deleted.
func (db *DB) DeleteCar(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cars WHERE car_id = ?`, id)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("car %d: %w", id, ErrVehicleInUse)
		}
		return fmt.Errorf("failed to delete car: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("car %d: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) ListCars(ctx context.Context) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY car_id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

// CandidatesFor returns cars that are on-market and whose rental-day policy
// admits the requested duration, ordered by id for deterministic results.
// Date conflicts are checked separately by the availability engine.
func (db *DB) CandidatesFor(ctx context.Context, rng daterange.Range) ([]*models.Car, error) {
	days := rng.Days()
	query := `SELECT ` + carColumns + ` FROM cars
              WHERE available_now = 1 AND min_rent_days <= ? AND max_rent_days >= ?
              ORDER BY car_id ASC`
	rows, err := db.QueryContext(ctx, query, days, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate cars: %w", err)
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

// SyncFleet inserts seed cars that are not present yet. Existing rows win;
// seeding never overwrites admin edits.
func (db *DB) SyncFleet(ctx context.Context, cars []models.Car) error {
	for i := range cars {
		car := &cars[i]
		if car.ID != 0 {
			if _, err := db.GetCar(ctx, car.ID); err == nil {
				continue
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			query := `INSERT INTO cars (car_id, make, model, year, color, mileage, daily_rate, available_now, min_rent_days, max_rent_days)
                      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
			if _, err := db.ExecContext(ctx, query,
				car.ID, car.Make, car.Model, car.Year, car.Color, car.Mileage,
				car.DailyRate, car.AvailableNow, car.MinRentDays, car.MaxRentDays,
			); err != nil {
				return fmt.Errorf("failed to seed car %d: %w", car.ID, err)
			}
			continue
		}
		if err := db.CreateCar(ctx, car); err != nil {
			return err
		}
	}
	return nil
}
