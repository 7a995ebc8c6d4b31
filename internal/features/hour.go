package features

import (
	"math"
	"strconv"
	"strings"
)

// Time-of-day categories of the scheduled departure
const (
	EarlyMorning = 1 // [5, 9)
	Morning      = 2 // [9, 12)
	Afternoon    = 3 // [12, 17)
	Evening      = 4 // [17, 21)
	Night        = 5 // everything else
)

var categoryLabels = map[int]string{
	EarlyMorning: "Early Morning",
	Morning:      "Morning",
	Afternoon:    "Afternoon",
	Evening:      "Evening Rush",
	Night:        "Night",
}

// CategoryLabel returns the display label of a time-of-day category
func CategoryLabel(category int) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return strconv.Itoa(category)
}

// ParseHour extracts the hour (0-23) from a scheduled time. It accepts the
// HHMM integer form (1530, 530) as int, float or numeric string, and the
// clock form "15:30:00" / "15:30". 2400 is read as midnight. The second
// return value is false when the input is missing or cannot be read.
func ParseHour(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return hourFromHHMM(int64(t))
	case int32:
		return hourFromHHMM(int64(t))
	case int64:
		return hourFromHHMM(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return hourFromHHMM(int64(t))
	case string:
		return parseHourString(t)
	case []byte:
		return parseHourString(string(t))
	default:
		return 0, false
	}
}

func parseHourString(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if head, _, found := strings.Cut(s, ":"); found {
		h, err := strconv.Atoi(head)
		if err != nil {
			return 0, false
		}
		return normalizeHour(int64(h))
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return hourFromHHMM(int64(f))
}

func hourFromHHMM(n int64) (int, bool) {
	if n < 0 || n > 2400 {
		return 0, false
	}
	return normalizeHour(n / 100)
}

func normalizeHour(h int64) (int, bool) {
	switch {
	case h == 24:
		return 0, true
	case h < 0 || h > 24:
		return 0, false
	default:
		return int(h), true
	}
}

// TimeCategory buckets an hour into a time-of-day category. Boundaries are
// half-open: 5 and 9 map to EarlyMorning and Morning respectively.
func TimeCategory(hour int) int {
	switch {
	case hour >= 5 && hour < 9:
		return EarlyMorning
	case hour >= 9 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// TimeCategoryOf is TimeCategory over the float column form; NaN in, NaN out.
func TimeCategoryOf(hour float64) float64 {
	if math.IsNaN(hour) {
		return math.NaN()
	}
	return float64(TimeCategory(int(hour)))
}
