package services

import (
	"errors"
	"testing"
	"time"
)

func TestParseReportWindow(t *testing.T) {
	location := time.UTC

	t.Run("empty range", func(t *testing.T) {
		window, err := ParseReportWindow("", "", location)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if window.FromDate != "" || window.ToDate != "" || window.SubmittedFrom != nil || window.SubmittedBefore != nil {
			t.Fatalf("expected unbounded window, got %+v", window)
		}
	})

	t.Run("valid from and to", func(t *testing.T) {
		window, err := ParseReportWindow("2026-02-10", "2026-02-20", location)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if window.FromDate != "2026-02-10" || window.ToDate != "2026-02-20" {
			t.Fatalf("unexpected day bounds: %+v", window)
		}
		if !window.SubmittedFrom.Equal(time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected submitted from %v", window.SubmittedFrom)
		}
		if !window.SubmittedBefore.Equal(time.Date(2026, time.February, 21, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("expected exclusive upper bound on the next day, got %v", window.SubmittedBefore)
		}
	})

	t.Run("location shifts instants", func(t *testing.T) {
		newYork, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skipf("tzdata unavailable: %v", err)
		}
		window, err := ParseReportWindow("2026-02-10", "", newYork)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if window.SubmittedFrom.Hour() != 5 {
			t.Fatalf("expected local midnight as 05:00 UTC, got %v", window.SubmittedFrom)
		}
	})

	t.Run("invalid from", func(t *testing.T) {
		_, err := ParseReportWindow("not-a-date", "2026-02-20", location)
		if !errors.Is(err, ErrReportFromDateInvalid) {
			t.Fatalf("expected ErrReportFromDateInvalid, got %v", err)
		}
	})

	t.Run("invalid to", func(t *testing.T) {
		_, err := ParseReportWindow("", "2026-13-01", location)
		if !errors.Is(err, ErrReportToDateInvalid) {
			t.Fatalf("expected ErrReportToDateInvalid, got %v", err)
		}
	})

	t.Run("reversed range", func(t *testing.T) {
		_, err := ParseReportWindow("2026-02-20", "2026-02-10", location)
		if !errors.Is(err, ErrReportRangeInvalid) || !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrReportRangeInvalid, got %v", err)
		}
	})
}
