package services

import (
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
)

var (
	ErrReportFromDateInvalid = validationError("from date must be YYYY-MM-DD")
	ErrReportToDateInvalid   = validationError("to date must be YYYY-MM-DD")
	ErrReportRangeInvalid    = validationError("to date must not be before from date")
)

// ParseReportWindow turns optional inclusive day bounds into a window usable for both
// date columns and timestamp columns.
func ParseReportWindow(rawFrom string, rawTo string, location *time.Location) (models.ReportWindow, error) {
	if location == nil {
		location = time.UTC
	}
	fromRaw := strings.TrimSpace(rawFrom)
	toRaw := strings.TrimSpace(rawTo)

	window := models.ReportWindow{}
	var fromDay time.Time
	if fromRaw != "" {
		parsedFrom, err := time.ParseInLocation(models.DateLayout, fromRaw, location)
		if err != nil {
			return models.ReportWindow{}, ErrReportFromDateInvalid
		}
		fromDay = parsedFrom
		submittedFrom := parsedFrom.UTC()
		window.FromDate = parsedFrom.Format(models.DateLayout)
		window.SubmittedFrom = &submittedFrom
	}

	if toRaw != "" {
		parsedTo, err := time.ParseInLocation(models.DateLayout, toRaw, location)
		if err != nil {
			return models.ReportWindow{}, ErrReportToDateInvalid
		}
		if !fromDay.IsZero() && parsedTo.Before(fromDay) {
			return models.ReportWindow{}, ErrReportRangeInvalid
		}
		submittedBefore := parsedTo.AddDate(0, 0, 1).UTC()
		window.ToDate = parsedTo.Format(models.DateLayout)
		window.SubmittedBefore = &submittedBefore
	}

	return window, nil
}
