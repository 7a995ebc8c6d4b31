package models

// FlightRecord is one row of the on-time performance table as read from the
// data source. It is never modified after it has been read.
type FlightRecord struct {
	Year       int `json:"year" db:"year"`
	Month      int `json:"month" db:"month"`
	Quarter    int `json:"quarter" db:"quarter"`
	DayofMonth int `json:"day_of_month" db:"day_of_month"`
	DayOfWeek  int `json:"day_of_week" db:"day_of_week"`

	Airline string `json:"airline" db:"airline_id"`
	Origin  string `json:"origin" db:"origin_airport_id"`
	Dest    string `json:"dest" db:"dest_airport_id"`

	Distance *float64 `json:"distance,omitempty" db:"distance"`

	// Scheduled times keep the textual form of the source column: "1530",
	// "530" or "15:30:00". Empty when the source value is NULL.
	CRSDepTime     string   `json:"crs_dep_time" db:"crs_dep_time"`
	CRSArrTime     string   `json:"crs_arr_time" db:"crs_arr_time"`
	CRSElapsedTime *float64 `json:"crs_elapsed_time,omitempty" db:"crs_elapsed_time"`

	ArrDel15        int      `json:"arr_del15" db:"arr_del15"`
	ArrDelayMinutes *float64 `json:"arr_delay_minutes,omitempty" db:"arr_delay_minutes"` // Target
}

// FlightRequest is the serving-side description of a single scheduled flight.
// Pointer fields fall back to defaults when omitted.
type FlightRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Airline     string `json:"airline"`

	Month     *int `json:"month" binding:"omitempty,min=1,max=12"`
	Day       *int `json:"day" binding:"omitempty,min=1,max=31"`
	DayOfWeek *int `json:"dayOfWeek" binding:"omitempty,min=1,max=7"`
	DepHour   *int `json:"depHour" binding:"omitempty,min=0,max=23"`
	ArrHour   *int `json:"arrHour" binding:"omitempty,min=0,max=23"`

	// Optional scheduled times ("1530" or "15:30:00"); take precedence over
	// DepHour/ArrHour when they parse.
	DepTime string `json:"depTime,omitempty"`
	ArrTime string `json:"arrTime,omitempty"`
}
