// Package dataset holds the engineered training table: missing value
// handling, matrix extraction and the chronological train/test split.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/stats"
)

// Raw column names that are not part of the feature schema
const (
	ColYear    = "Year"
	ColAirline = "Airline"
	ColOrigin  = "Origin"
	ColDest    = "Dest"
	ColTarget  = "ArrDelayMinutes"
)

var (
	// ErrMissingValues is returned when a matrix would contain NaN
	ErrMissingValues = errors.New("missing values in feature matrix")
	// ErrEmpty is returned when the table has no rows
	ErrEmpty = errors.New("empty dataset")
	// ErrNoObservedValues is returned when a column to impute has no value to learn from
	ErrNoObservedValues = errors.New("column has no observed values")
)

var (
	medianColumns = []string{features.Distance, features.ElapsedTime}
	modeColumns   = []string{features.DepHour, features.ArrHour, features.DepTimeCategory}
	floatColumns  = []string{
		features.Month, features.Quarter, features.DayofMonth, features.DayOfWeek,
		features.Distance, features.ElapsedTime, features.DepHour, features.ArrHour,
		features.DepTimeCategory, ColTarget,
	}
)

// Frame is the engineered training table in source order
type Frame struct {
	df dataframe.DataFrame
}

// NewFrame builds a table from engineered rows, keeping their order
func NewFrame(rows []features.Row) *Frame {
	n := len(rows)
	years := make([]int, n)
	airlines := make([]string, n)
	origins := make([]string, n)
	dests := make([]string, n)
	cols := make(map[string][]float64, len(floatColumns))
	for _, name := range floatColumns {
		cols[name] = make([]float64, n)
	}

	for i, r := range rows {
		years[i] = r.Year
		airlines[i] = r.Airline
		origins[i] = r.Origin
		dests[i] = r.Dest
		cols[features.Month][i] = r.Month
		cols[features.Quarter][i] = r.Quarter
		cols[features.DayofMonth][i] = r.DayofMonth
		cols[features.DayOfWeek][i] = r.DayOfWeek
		cols[features.Distance][i] = r.Distance
		cols[features.ElapsedTime][i] = r.ElapsedTime
		cols[features.DepHour][i] = r.DepHour
		cols[features.ArrHour][i] = r.ArrHour
		cols[features.DepTimeCategory][i] = r.DepTimeCategory
		cols[ColTarget][i] = r.Target
	}

	columns := []series.Series{
		series.New(years, series.Int, ColYear),
		series.New(airlines, series.String, ColAirline),
		series.New(origins, series.String, ColOrigin),
		series.New(dests, series.String, ColDest),
	}
	for _, name := range floatColumns {
		columns = append(columns, series.New(cols[name], series.Float, name))
	}
	return &Frame{df: dataframe.New(columns...)}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return f.df.Nrow()
}

// Err returns the first error recorded by the underlying table
func (f *Frame) Err() error {
	return f.df.Err
}

// Floats returns a copy of a numeric column
func (f *Frame) Floats(name string) []float64 {
	return f.df.Col(name).Float()
}

// Strings returns a copy of a text column
func (f *Frame) Strings(name string) []string {
	return f.df.Col(name).Records()
}

// Target returns the delay minutes column
func (f *Frame) Target() []float64 {
	return f.Floats(ColTarget)
}

// DropMissingTarget removes rows without a delay value and reports how many
// were dropped
func (f *Frame) DropMissingTarget() (*Frame, int) {
	if f.Len() == 0 {
		return f, 0
	}

	kept := f.df.Filter(dataframe.F{
		Colname:    ColTarget,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			return !math.IsNaN(el.Float())
		},
	})
	return &Frame{df: kept}, f.Len() - kept.Nrow()
}

// Imputation records the fill value used for each imputed column
type Imputation struct {
	Column   string
	Strategy string
	Value    float64
	Filled   int
}

// Impute fills missing distance and elapsed time with the column median and
// missing hours and time category with the column mode. A column with missing
// values and nothing observed fails with ErrNoObservedValues.
func (f *Frame) Impute() (*Frame, []Imputation, error) {
	df := f.df
	var report []Imputation

	fill := func(name, strategy string, pick func([]float64) float64) error {
		values := df.Col(name).Float()
		present := stats.DropNaN(values)
		missing := len(values) - len(present)
		if missing == 0 {
			return nil
		}
		if len(present) == 0 {
			return fmt.Errorf("impute %s: %w", name, ErrNoObservedValues)
		}

		value := pick(present)
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = value
			}
		}
		df = df.Mutate(series.New(values, series.Float, name))
		report = append(report, Imputation{Column: name, Strategy: strategy, Value: value, Filled: missing})
		return nil
	}

	for _, name := range medianColumns {
		if err := fill(name, "median", stats.Median); err != nil {
			return nil, nil, err
		}
	}
	for _, name := range modeColumns {
		if err := fill(name, "mode", stats.Mode); err != nil {
			return nil, nil, err
		}
	}
	return &Frame{df: df}, report, nil
}

// FitEncoders fits the categorical encoders over every row of the table
func (f *Frame) FitEncoders() *encoder.Set {
	return encoder.FitSet(f.Strings(ColAirline), f.Strings(ColOrigin), f.Strings(ColDest))
}

// Matrix returns the feature matrix in canonical column order and the target.
// Categorical columns are encoded with enc.
func (f *Frame) Matrix(enc *encoder.Set) ([][]float64, []float64, error) {
	if err := f.Err(); err != nil {
		return nil, nil, fmt.Errorf("dataset: %w", err)
	}
	n := f.Len()
	if n == 0 {
		return nil, nil, ErrEmpty
	}

	numeric := make(map[string][]float64, features.NumFeatures)
	for _, name := range features.Columns {
		switch name {
		case features.AirlineEncoded, features.OriginEncoded, features.DestEncoded:
			continue
		}
		numeric[name] = f.Floats(name)
	}
	airlines := f.Strings(ColAirline)
	origins := f.Strings(ColOrigin)
	dests := f.Strings(ColDest)

	x := make([][]float64, n)
	for i := 0; i < n; i++ {
		airline, origin, dest := enc.Codes(airlines[i], origins[i], dests[i])
		row := make([]float64, features.NumFeatures)
		for j, name := range features.Columns {
			var v float64
			switch name {
			case features.AirlineEncoded:
				v = float64(airline)
			case features.OriginEncoded:
				v = float64(origin)
			case features.DestEncoded:
				v = float64(dest)
			default:
				v = numeric[name][i]
			}
			if math.IsNaN(v) {
				return nil, nil, fmt.Errorf("%w: row %d column %s", ErrMissingValues, i, name)
			}
			row[j] = v
		}
		x[i] = row
	}
	return x, f.Target(), nil
}
