package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

type LeadRecordRepository interface {
	CreateReview(review *models.CoreReview) error
	FindReview(reviewID uint) (models.CoreReview, error)
	SaveReview(review *models.CoreReview) error
	ListReviews(query models.LeadRecordQuery) ([]models.CoreReview, error)
	CreateSupportPlan(plan *models.SupportPlan) error
	FindSupportPlan(planID uint) (models.SupportPlan, error)
	SaveSupportPlan(plan *models.SupportPlan) error
	ListSupportPlans(query models.LeadRecordQuery) ([]models.SupportPlan, error)
	CreateWin(win *models.Win) error
	FindWin(winID uint) (models.Win, error)
	SetWinCelebrated(winID uint, celebrated bool) error
	ListWins(query models.LeadRecordQuery) ([]models.Win, error)
}

// LeadService manages the check-ins, support plans and wins a lead intern keeps for
// each assigned core intern. Admins read them; only the assigned lead writes.
type LeadService struct {
	records  LeadRecordRepository
	owners   WorkOwnerReader
	location *time.Location
	now      func() time.Time
}

func NewLeadService(records LeadRecordRepository, owners WorkOwnerReader, location *time.Location) *LeadService {
	if location == nil {
		location = time.UTC
	}
	return &LeadService{
		records:  records,
		owners:   owners,
		location: location,
		now:      time.Now,
	}
}

func (service *LeadService) today() string {
	return service.now().In(service.location).Format(models.DateLayout)
}

func (service *LeadService) authorizeWriteFor(caller Caller, coreInternID uint) error {
	if !caller.IsLeadIntern() {
		return unauthorizedError("only lead interns write check-ins, support plans and wins")
	}
	coreIntern, err := loadWorkOwner(service.owners, coreInternID)
	if err != nil {
		return err
	}
	return AuthorizeWriteLeadRecord(caller, coreIntern)
}

func (service *LeadService) scopeQuery(caller Caller, query models.LeadRecordQuery) (models.LeadRecordQuery, error) {
	if caller.IsLeadIntern() && query.LeadInternID == 0 {
		query.LeadInternID = caller.UserID
	}
	if err := AuthorizeReadLeadRecords(caller, query); err != nil {
		return models.LeadRecordQuery{}, err
	}
	return query, nil
}

func (service *LeadService) CreateReview(caller Caller, input CoreReviewInput) (models.CoreReview, error) {
	if err := service.authorizeWriteFor(caller, input.CoreInternID); err != nil {
		return models.CoreReview{}, err
	}

	review := models.CoreReview{LeadInternID: caller.UserID, CoreInternID: input.CoreInternID}
	if err := NormalizeCoreReviewInput(input, service.today(), &review); err != nil {
		return models.CoreReview{}, err
	}
	if err := service.records.CreateReview(&review); err != nil {
		return models.CoreReview{}, fmt.Errorf("create core review: %w", err)
	}
	return review, nil
}

func (service *LeadService) UpdateReview(caller Caller, reviewID uint, input CoreReviewInput) (models.CoreReview, error) {
	review, err := service.records.FindReview(reviewID)
	if err != nil {
		return models.CoreReview{}, leadRecordLoadError("core review", err)
	}
	if err := AuthorizeMutateLeadRecord(caller, review.LeadInternID); err != nil {
		return models.CoreReview{}, err
	}
	if err := service.authorizeWriteFor(caller, review.CoreInternID); err != nil {
		return models.CoreReview{}, err
	}

	if err := NormalizeCoreReviewInput(input, review.ReviewDate, &review); err != nil {
		return models.CoreReview{}, err
	}
	if err := service.records.SaveReview(&review); err != nil {
		return models.CoreReview{}, fmt.Errorf("update core review: %w", err)
	}
	return review, nil
}

func (service *LeadService) ListReviews(caller Caller, query models.LeadRecordQuery) ([]models.CoreReview, error) {
	scoped, err := service.scopeQuery(caller, query)
	if err != nil {
		return nil, err
	}
	return service.records.ListReviews(scoped)
}

func (service *LeadService) CreateSupportPlan(caller Caller, input SupportPlanInput) (models.SupportPlan, error) {
	if err := service.authorizeWriteFor(caller, input.CoreInternID); err != nil {
		return models.SupportPlan{}, err
	}

	plan := models.SupportPlan{LeadInternID: caller.UserID, CoreInternID: input.CoreInternID}
	if err := NormalizeSupportPlanInput(input, service.today(), &plan); err != nil {
		return models.SupportPlan{}, err
	}
	if err := service.records.CreateSupportPlan(&plan); err != nil {
		return models.SupportPlan{}, fmt.Errorf("create support plan: %w", err)
	}
	return plan, nil
}

func (service *LeadService) UpdateSupportPlan(caller Caller, planID uint, input SupportPlanInput) (models.SupportPlan, error) {
	plan, err := service.loadPlanForWrite(caller, planID)
	if err != nil {
		return models.SupportPlan{}, err
	}

	if input.Status == "" {
		input.Status = string(plan.Status)
	}
	if err := NormalizeSupportPlanInput(input, plan.StartDate, &plan); err != nil {
		return models.SupportPlan{}, err
	}
	if err := service.records.SaveSupportPlan(&plan); err != nil {
		return models.SupportPlan{}, fmt.Errorf("update support plan: %w", err)
	}
	return plan, nil
}

func (service *LeadService) UpdateSupportPlanStatus(caller Caller, planID uint, rawStatus string) (models.SupportPlan, error) {
	plan, err := service.loadPlanForWrite(caller, planID)
	if err != nil {
		return models.SupportPlan{}, err
	}
	status, err := ParseSupportPlanStatus(rawStatus)
	if err != nil {
		return models.SupportPlan{}, err
	}

	plan.Status = status
	if err := service.records.SaveSupportPlan(&plan); err != nil {
		return models.SupportPlan{}, fmt.Errorf("update support plan status: %w", err)
	}
	return plan, nil
}

func (service *LeadService) loadPlanForWrite(caller Caller, planID uint) (models.SupportPlan, error) {
	plan, err := service.records.FindSupportPlan(planID)
	if err != nil {
		return models.SupportPlan{}, leadRecordLoadError("support plan", err)
	}
	if err := AuthorizeMutateLeadRecord(caller, plan.LeadInternID); err != nil {
		return models.SupportPlan{}, err
	}
	if err := service.authorizeWriteFor(caller, plan.CoreInternID); err != nil {
		return models.SupportPlan{}, err
	}
	return plan, nil
}

func (service *LeadService) ListSupportPlans(caller Caller, query models.LeadRecordQuery) ([]models.SupportPlan, error) {
	scoped, err := service.scopeQuery(caller, query)
	if err != nil {
		return nil, err
	}
	return service.records.ListSupportPlans(scoped)
}

func (service *LeadService) AddWin(caller Caller, input WinInput) (models.Win, error) {
	if err := service.authorizeWriteFor(caller, input.CoreInternID); err != nil {
		return models.Win{}, err
	}

	win := models.Win{LeadInternID: caller.UserID, CoreInternID: input.CoreInternID}
	if err := NormalizeWinInput(input, service.today(), &win); err != nil {
		return models.Win{}, err
	}
	if err := service.records.CreateWin(&win); err != nil {
		return models.Win{}, fmt.Errorf("create win: %w", err)
	}
	return win, nil
}

func (service *LeadService) MarkWinCelebrated(caller Caller, winID uint, celebrated bool) (models.Win, error) {
	win, err := service.records.FindWin(winID)
	if err != nil {
		return models.Win{}, leadRecordLoadError("win", err)
	}
	if err := AuthorizeMutateLeadRecord(caller, win.LeadInternID); err != nil {
		return models.Win{}, err
	}
	if err := service.authorizeWriteFor(caller, win.CoreInternID); err != nil {
		return models.Win{}, err
	}

	if err := service.records.SetWinCelebrated(win.ID, celebrated); err != nil {
		return models.Win{}, fmt.Errorf("update win: %w", err)
	}
	win.Celebrated = celebrated
	return win, nil
}

func (service *LeadService) ListWins(caller Caller, query models.LeadRecordQuery) ([]models.Win, error) {
	scoped, err := service.scopeQuery(caller, query)
	if err != nil {
		return nil, err
	}
	return service.records.ListWins(scoped)
}

func leadRecordLoadError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
