package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

var ErrHoursDecisionInvalid = validationError("decision must be approve or reject")

type HourRepository interface {
	Create(entry *models.HourEntry) error
	FindByID(entryID uint) (models.HourEntry, error)
	List(query models.HourQuery) ([]models.HourEntryWithUser, error)
	ApplyReview(entryID uint, approved bool, reviewerID uint, at time.Time) (bool, error)
}

type ReviewDecision string

const (
	ReviewApprove       ReviewDecision = "approve"
	ReviewReject        ReviewDecision = "reject"
	ReviewNeedsRevision ReviewDecision = "needs_revision"
)

func ParseReviewDecision(raw string) (ReviewDecision, bool) {
	switch ReviewDecision(strings.ToLower(strings.TrimSpace(raw))) {
	case ReviewApprove:
		return ReviewApprove, true
	case ReviewReject:
		return ReviewReject, true
	case ReviewNeedsRevision:
		return ReviewNeedsRevision, true
	default:
		return "", false
	}
}

type HoursFilter struct {
	UserID  uint
	From    string
	To      string
	Pending bool
}

type HoursService struct {
	hours    HourRepository
	owners   WorkOwnerReader
	location *time.Location
	now      func() time.Time
}

func NewHoursService(hours HourRepository, owners WorkOwnerReader, location *time.Location) *HoursService {
	if location == nil {
		location = time.UTC
	}
	return &HoursService{
		hours:    hours,
		owners:   owners,
		location: location,
		now:      time.Now,
	}
}

func (service *HoursService) Submit(caller Caller, input HourInput) (models.HourEntry, error) {
	if err := AuthorizeSubmitWork(caller); err != nil {
		return models.HourEntry{}, err
	}

	today := service.now().In(service.location).Format(models.DateLayout)
	normalized, total, err := NormalizeHourInput(input, today)
	if err != nil {
		return models.HourEntry{}, err
	}

	entry := models.HourEntry{
		UserID:      caller.UserID,
		Date:        normalized.Date,
		StartTime:   normalized.StartTime,
		EndTime:     normalized.EndTime,
		TotalHours:  total,
		Description: normalized.Description,
		CreatedAt:   service.now().UTC(),
	}
	if err := service.hours.Create(&entry); err != nil {
		return models.HourEntry{}, fmt.Errorf("create hours entry: %w", err)
	}
	return entry, nil
}

// Review decides an unreviewed entry. A decided entry is never decided again.
func (service *HoursService) Review(caller Caller, entryID uint, decision ReviewDecision) (models.HourEntry, error) {
	if err := AuthorizeReviewSubmission(caller); err != nil {
		return models.HourEntry{}, err
	}
	if decision != ReviewApprove && decision != ReviewReject {
		return models.HourEntry{}, ErrHoursDecisionInvalid
	}

	entry, err := service.hours.FindByID(entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HourEntry{}, notFoundError("hours entry")
	}
	if err != nil {
		return models.HourEntry{}, fmt.Errorf("load hours entry: %w", err)
	}
	if entry.Reviewed() {
		return models.HourEntry{}, ErrAlreadyReviewed
	}

	now := service.now().UTC()
	approved := decision == ReviewApprove
	changed, err := service.hours.ApplyReview(entry.ID, approved, caller.UserID, now)
	if err != nil {
		return models.HourEntry{}, fmt.Errorf("apply hours review: %w", err)
	}
	if !changed {
		return models.HourEntry{}, ErrAlreadyReviewed
	}

	entry.Approved = approved
	entry.ReviewedAt = &now
	entry.ReviewedBy = &caller.UserID
	return entry, nil
}

func (service *HoursService) List(caller Caller, filter HoursFilter) ([]models.HourEntryWithUser, error) {
	window, err := ParseReportWindow(filter.From, filter.To, service.location)
	if err != nil {
		return nil, err
	}
	scope, err := resolveWorkScope(service.owners, caller, filter.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := service.hours.List(models.HourQuery{
		UserIDs:     scope.UserIDs,
		RestrictIDs: scope.RestrictIDs,
		FromDate:    window.FromDate,
		ToDate:      window.ToDate,
		PendingOnly: filter.Pending,
	})
	if err != nil {
		return nil, fmt.Errorf("list hours: %w", err)
	}
	return entries, nil
}
