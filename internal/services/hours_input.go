package services

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clubstride/hourtrack/internal/models"
)

const MaxDescriptionLength = 2000

var (
	ErrHoursFieldsRequired = validationError("date, start time, end time and description are required")
	ErrHoursDateInvalid    = validationError("date must be YYYY-MM-DD")
	ErrHoursDateInFuture   = validationError("date cannot be in the future")
	ErrHoursTimeInvalid    = validationError("times must be HH:MM")
	ErrHoursEndBeforeStart = validationError("end time must be after start time")
)

type HourInput struct {
	Date        string `json:"date" form:"date"`
	StartTime   string `json:"start_time" form:"start_time"`
	EndTime     string `json:"end_time" form:"end_time"`
	Description string `json:"description" form:"description"`
}

// NormalizeHourInput validates an hours entry against today's date and returns the
// trimmed input together with the computed total.
func NormalizeHourInput(input HourInput, today string) (HourInput, float64, error) {
	input.Date = strings.TrimSpace(input.Date)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	input.Description = TrimDescription(strings.TrimSpace(input.Description))

	if input.Date == "" || input.StartTime == "" || input.EndTime == "" || input.Description == "" {
		return input, 0, ErrHoursFieldsRequired
	}
	day, err := time.Parse(models.DateLayout, input.Date)
	if err != nil {
		return input, 0, ErrHoursDateInvalid
	}
	input.Date = day.Format(models.DateLayout)
	if input.Date > today {
		return input, 0, ErrHoursDateInFuture
	}

	total, err := ComputeTotalHours(input.StartTime, input.EndTime)
	if err != nil {
		return input, 0, err
	}
	return input, total, nil
}

// ComputeTotalHours returns end minus start in hours, rounded to two decimals.
func ComputeTotalHours(startRaw string, endRaw string) (float64, error) {
	start, err := time.Parse(models.TimeLayout, strings.TrimSpace(startRaw))
	if err != nil {
		return 0, ErrHoursTimeInvalid
	}
	end, err := time.Parse(models.TimeLayout, strings.TrimSpace(endRaw))
	if err != nil {
		return 0, ErrHoursTimeInvalid
	}
	if !end.After(start) {
		return 0, ErrHoursEndBeforeStart
	}

	total := RoundHours(end.Sub(start).Hours())
	if total <= 0 {
		return 0, ErrHoursEndBeforeStart
	}
	return total, nil
}

func RoundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func TrimDescription(value string) string {
	return truncateText(value, MaxDescriptionLength)
}

// truncateText caps value at maxBytes without splitting a rune. Invalid UTF-8 is replaced
// first so stored text always exports cleanly.
func truncateText(value string, maxBytes int) string {
	value = strings.ToValidUTF8(value, "\uFFFD")
	if len(value) <= maxBytes {
		return value
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
