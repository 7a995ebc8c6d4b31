package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/flight-delay-backend-go/internal/database"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// Only delayed, completed flights from 2002 on are used for training
const flightQuery = `
	SELECT year, month, quarter, day_of_month, day_of_week,
		   CAST(airline_id AS TEXT), CAST(origin_airport_id AS TEXT), CAST(dest_airport_id AS TEXT),
		   distance, CAST(crs_dep_time AS TEXT), CAST(crs_arr_time AS TEXT), crs_elapsed_time,
		   arr_del15, arr_delay_minutes
	FROM flights
	WHERE year > 2001
	  AND COALESCE(cancelled, 0) = 0
	  AND COALESCE(diverted, 0) = 0
	  AND arr_del15 = 1
	ORDER BY year, month, day_of_month
`

// FlightRepository reads training flights from the on-time performance table
type FlightRepository struct {
	db *database.DB
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db *database.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// LoadDelayed returns delayed flights in chronological order
func (r *FlightRepository) LoadDelayed(ctx context.Context) ([]models.FlightRecord, error) {
	rows, err := r.db.QueryContext(ctx, flightQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var records []models.FlightRecord
	for rows.Next() {
		rec, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flights: %w", err)
	}
	return records, nil
}

func scanFlight(rows *sql.Rows) (models.FlightRecord, error) {
	var (
		rec                          models.FlightRecord
		quarter, dayOfWeek, arrDel15 sql.NullInt64
		airline, origin, dest        sql.NullString
		depTime, arrTime             sql.NullString
		distance, elapsed, delay     sql.NullFloat64
	)

	err := rows.Scan(
		&rec.Year,
		&rec.Month,
		&quarter,
		&rec.DayofMonth,
		&dayOfWeek,
		&airline,
		&origin,
		&dest,
		&distance,
		&depTime,
		&arrTime,
		&elapsed,
		&arrDel15,
		&delay,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan flight: %w", err)
	}

	rec.Quarter = int(quarter.Int64)
	rec.DayOfWeek = int(dayOfWeek.Int64)
	rec.Airline = airline.String
	rec.Origin = origin.String
	rec.Dest = dest.String
	rec.Distance = floatPtr(distance)
	rec.CRSDepTime = depTime.String
	rec.CRSArrTime = arrTime.String
	rec.CRSElapsedTime = floatPtr(elapsed)
	rec.ArrDel15 = int(arrDel15.Int64)
	rec.ArrDelayMinutes = floatPtr(delay)
	return rec, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
