package explain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/reference"
)

var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// FormatValue renders the observed value of a feature for display. Both
// explainers go through it so the same input always reads the same.
func FormatValue(name string, v features.Vector, c features.Context) string {
	switch name {
	case features.Month:
		return monthName(c.Month)
	case features.Quarter:
		return fmt.Sprintf("Q%d", int(v.Quarter))
	case features.DayofMonth:
		return strconv.Itoa(int(v.DayofMonth))
	case features.DayOfWeek:
		return dayName(c.DayOfWeek)
	case features.AirlineEncoded:
		return reference.AirlineName(c.Airline)
	case features.OriginEncoded:
		return c.Origin
	case features.DestEncoded:
		return c.Dest
	case features.Distance:
		return fmt.Sprintf("%d mi", int(c.Distance))
	case features.ElapsedTime:
		return fmt.Sprintf("%d min", int(v.ElapsedTime))
	case features.DepHour:
		return fmt.Sprintf("%d:00", c.DepHour)
	case features.ArrHour:
		return fmt.Sprintf("%d:00", c.ArrHour)
	case features.DepTimeCategory:
		return features.CategoryLabel(c.TimeCategory)
	default:
		return ""
	}
}

func dayName(day int) string {
	if day >= 1 && day < len(dayNames) {
		return dayNames[day]
	}
	return strconv.Itoa(day)
}

func monthName(month int) string {
	if month >= 1 && month <= 12 {
		return time.Month(month).String()
	}
	return strconv.Itoa(month)
}
