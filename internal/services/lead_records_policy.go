package services

import (
	"slices"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
)

const MaxLeadNoteLength = 4000

var (
	ErrReviewFieldsRequired = validationError("review period, vibe, what's working and growth areas are required")
	ErrReviewVibeInvalid    = validationError("unknown vibe rating")
	ErrReviewSupportInvalid = validationError("needs support must be no, maybe or yes")
	ErrReviewMetricInvalid  = validationError("metric value is not one of the allowed options")
	ErrPlanFieldsRequired   = validationError("challenge, goal and action steps are required")
	ErrPlanStatusInvalid    = validationError("unknown support plan status")
	ErrPlanCheckInTooEarly  = validationError("check-in date cannot be before the start date")
	ErrWinDescriptionEmpty  = validationError("win description is required")
	ErrLeadRecordDate       = validationError("dates must be YYYY-MM-DD")
)

type CoreReviewInput struct {
	CoreInternID      uint   `json:"core_intern_id" form:"core_intern_id"`
	ReviewPeriod      string `json:"review_period" form:"review_period"`
	ReviewDate        string `json:"review_date" form:"review_date"`
	OverallVibe       string `json:"overall_vibe" form:"overall_vibe"`
	WhatsWorking      string `json:"whats_working" form:"whats_working"`
	GrowthAreas       string `json:"growth_areas" form:"growth_areas"`
	NeedsSupport      string `json:"needs_support" form:"needs_support"`
	HoursCompliance   string `json:"hours_compliance" form:"hours_compliance"`
	ContentCreated    string `json:"content_created" form:"content_created"`
	MeetingAttendance string `json:"meeting_attendance" form:"meeting_attendance"`
	DMResponseRate    string `json:"dm_response_rate" form:"dm_response_rate"`
	ProofUploaded     string `json:"proof_uploaded" form:"proof_uploaded"`
	Notes             string `json:"notes" form:"notes"`
}

type SupportPlanInput struct {
	CoreInternID uint   `json:"core_intern_id" form:"core_intern_id"`
	StartDate    string `json:"start_date" form:"start_date"`
	Challenge    string `json:"challenge" form:"challenge"`
	Goal         string `json:"goal" form:"goal"`
	ActionSteps  string `json:"action_steps" form:"action_steps"`
	CheckInDate  string `json:"check_in_date" form:"check_in_date"`
	Status       string `json:"status" form:"status"`
}

type WinInput struct {
	CoreInternID uint   `json:"core_intern_id" form:"core_intern_id"`
	WinDate      string `json:"win_date" form:"win_date"`
	Description  string `json:"description" form:"description"`
	WhyMatters   string `json:"why_matters" form:"why_matters"`
	Celebrated   bool   `json:"celebrated" form:"celebrated"`
	Notes        string `json:"notes" form:"notes"`
}

// NormalizeCoreReviewInput fills a review row from input. Empty dates default to today.
func NormalizeCoreReviewInput(input CoreReviewInput, today string, review *models.CoreReview) error {
	period := strings.TrimSpace(input.ReviewPeriod)
	whatsWorking := trimLeadNote(input.WhatsWorking)
	growthAreas := trimLeadNote(input.GrowthAreas)
	if period == "" || strings.TrimSpace(input.OverallVibe) == "" || whatsWorking == "" || growthAreas == "" {
		return ErrReviewFieldsRequired
	}

	vibe := models.VibeRating(strings.ToLower(strings.TrimSpace(input.OverallVibe)))
	if !slices.Contains(models.VibeRatings(), vibe) {
		return ErrReviewVibeInvalid
	}

	needsSupport := models.SupportNeedNo
	if raw := strings.TrimSpace(input.NeedsSupport); raw != "" {
		needsSupport = models.SupportNeed(strings.ToLower(raw))
		if !slices.Contains(models.SupportNeeds(), needsSupport) {
			return ErrReviewSupportInvalid
		}
	}

	reviewDate, err := normalizeLeadDate(input.ReviewDate, today)
	if err != nil {
		return err
	}

	metrics := []struct {
		value   string
		options []string
		target  *string
	}{
		{value: input.HoursCompliance, options: models.HoursComplianceOptions, target: &review.HoursCompliance},
		{value: input.ContentCreated, options: models.ContentCreatedOptions, target: &review.ContentCreated},
		{value: input.MeetingAttendance, options: models.MeetingAttendanceOptions, target: &review.MeetingAttendance},
		{value: input.DMResponseRate, options: models.DMResponseRateOptions, target: &review.DMResponseRate},
		{value: input.ProofUploaded, options: models.ProofUploadedOptions, target: &review.ProofUploaded},
	}
	for _, metric := range metrics {
		value := strings.TrimSpace(metric.value)
		if value != "" && !slices.Contains(metric.options, value) {
			return ErrReviewMetricInvalid
		}
	}
	for _, metric := range metrics {
		*metric.target = strings.TrimSpace(metric.value)
	}

	review.ReviewPeriod = period
	review.ReviewDate = reviewDate
	review.OverallVibe = vibe
	review.WhatsWorking = whatsWorking
	review.GrowthAreas = growthAreas
	review.NeedsSupport = needsSupport
	review.Notes = trimLeadNote(input.Notes)
	return nil
}

func NormalizeSupportPlanInput(input SupportPlanInput, today string, plan *models.SupportPlan) error {
	challenge := trimLeadNote(input.Challenge)
	goal := trimLeadNote(input.Goal)
	actionSteps := trimLeadNote(input.ActionSteps)
	if challenge == "" || goal == "" || actionSteps == "" {
		return ErrPlanFieldsRequired
	}

	startDate, err := normalizeLeadDate(input.StartDate, today)
	if err != nil {
		return err
	}

	checkInDate := ""
	if raw := strings.TrimSpace(input.CheckInDate); raw != "" {
		checkInDate, err = normalizeLeadDate(raw, today)
		if err != nil {
			return err
		}
		if checkInDate < startDate {
			return ErrPlanCheckInTooEarly
		}
	}

	status := models.PlanActive
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err = ParseSupportPlanStatus(raw)
		if err != nil {
			return err
		}
	}

	plan.StartDate = startDate
	plan.Challenge = challenge
	plan.Goal = goal
	plan.ActionSteps = actionSteps
	plan.CheckInDate = checkInDate
	plan.Status = status
	return nil
}

func ParseSupportPlanStatus(raw string) (models.SupportPlanStatus, error) {
	status := models.SupportPlanStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(models.SupportPlanStatuses(), status) {
		return "", ErrPlanStatusInvalid
	}
	return status, nil
}

func NormalizeWinInput(input WinInput, today string, win *models.Win) error {
	description := trimLeadNote(input.Description)
	if description == "" {
		return ErrWinDescriptionEmpty
	}
	winDate, err := normalizeLeadDate(input.WinDate, today)
	if err != nil {
		return err
	}

	win.WinDate = winDate
	win.Description = description
	win.WhyMatters = trimLeadNote(input.WhyMatters)
	win.Celebrated = input.Celebrated
	win.Notes = trimLeadNote(input.Notes)
	return nil
}

func normalizeLeadDate(raw string, today string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return today, nil
	}
	parsed, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return "", ErrLeadRecordDate
	}
	return parsed.Format(models.DateLayout), nil
}

func trimLeadNote(value string) string {
	return truncateText(strings.TrimSpace(value), MaxLeadNoteLength)
}
