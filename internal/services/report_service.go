package services

import (
	"fmt"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
)

type ReportHourReader interface {
	SumByUser(userID uint, window models.ReportWindow) (models.HourTotals, error)
}

type ReportDeliverableReader interface {
	CountByStatus(userID uint, window models.ReportWindow) (models.DeliverableCounts, error)
}

type UserReport struct {
	UserID        uint                     `json:"user_id"`
	Name          string                   `json:"name"`
	Email         string                   `json:"email"`
	Role          models.Role              `json:"role"`
	From          string                   `json:"from,omitempty"`
	To            string                   `json:"to,omitempty"`
	TotalHours    float64                  `json:"total_hours"`
	ApprovedHours float64                  `json:"approved_hours"`
	PendingHours  float64                  `json:"pending_hours"`
	Entries       int64                    `json:"entries"`
	Deliverables  models.DeliverableCounts `json:"deliverables"`
}

// ReportService aggregates hours and deliverables per user. Every call hits the
// database; nothing is cached between requests.
type ReportService struct {
	hours        ReportHourReader
	deliverables ReportDeliverableReader
	owners       WorkOwnerReader
	location     *time.Location
}

func NewReportService(hours ReportHourReader, deliverables ReportDeliverableReader, owners WorkOwnerReader, location *time.Location) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		hours:        hours,
		deliverables: deliverables,
		owners:       owners,
		location:     location,
	}
}

func (service *ReportService) UserReport(caller Caller, userID uint, from string, to string) (UserReport, error) {
	window, err := ParseReportWindow(from, to, service.location)
	if err != nil {
		return UserReport{}, err
	}
	owner, err := loadWorkOwner(service.owners, userID)
	if err != nil {
		return UserReport{}, err
	}
	if err := AuthorizeViewWorkOf(caller, owner); err != nil {
		return UserReport{}, err
	}
	return service.buildReport(owner, window)
}

// TeamReport covers every active non-admin user for admins and the assigned core
// interns for a lead intern.
func (service *ReportService) TeamReport(caller Caller, from string, to string) ([]UserReport, error) {
	if err := AuthorizeTeamReport(caller); err != nil {
		return nil, err
	}
	window, err := ParseReportWindow(from, to, service.location)
	if err != nil {
		return nil, err
	}

	query := models.UserQuery{Status: models.StatusActive, ExcludeAdmin: true}
	if caller.IsLeadIntern() {
		leadID := caller.UserID
		query = models.UserQuery{Status: models.StatusActive, Role: models.RoleCoreIntern, LeadInternID: &leadID}
	}
	users, err := service.owners.ListUsers(query)
	if err != nil {
		return nil, fmt.Errorf("list report users: %w", err)
	}

	reports := make([]UserReport, 0, len(users))
	for _, user := range users {
		report, err := service.buildReport(user, window)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (service *ReportService) buildReport(user models.User, window models.ReportWindow) (UserReport, error) {
	totals, err := service.hours.SumByUser(user.ID, window)
	if err != nil {
		return UserReport{}, fmt.Errorf("sum hours for user %d: %w", user.ID, err)
	}
	counts, err := service.deliverables.CountByStatus(user.ID, window)
	if err != nil {
		return UserReport{}, fmt.Errorf("count deliverables for user %d: %w", user.ID, err)
	}

	return UserReport{
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		From:          window.FromDate,
		To:            window.ToDate,
		TotalHours:    RoundHours(totals.TotalHours),
		ApprovedHours: RoundHours(totals.ApprovedHours),
		PendingHours:  RoundHours(totals.PendingHours),
		Entries:       totals.Entries,
		Deliverables:  counts,
	}, nil
}
