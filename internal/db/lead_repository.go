package db

import (
	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

// LeadRecordRepository stores the lead-owned check-ins, support plans and wins.
type LeadRecordRepository struct {
	database *gorm.DB
}

func NewLeadRecordRepository(database *gorm.DB) *LeadRecordRepository {
	return &LeadRecordRepository{database: database}
}

func (repo *LeadRecordRepository) CreateReview(review *models.CoreReview) error {
	return repo.database.Create(review).Error
}

func (repo *LeadRecordRepository) FindReview(reviewID uint) (models.CoreReview, error) {
	var review models.CoreReview
	if err := repo.database.First(&review, reviewID).Error; err != nil {
		return models.CoreReview{}, err
	}
	return review, nil
}

func (repo *LeadRecordRepository) SaveReview(review *models.CoreReview) error {
	return repo.database.Save(review).Error
}

func (repo *LeadRecordRepository) ListReviews(query models.LeadRecordQuery) ([]models.CoreReview, error) {
	reviews := make([]models.CoreReview, 0)
	if err := applyLeadRecordQuery(repo.database, query).
		Order("review_date DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (repo *LeadRecordRepository) CreateSupportPlan(plan *models.SupportPlan) error {
	return repo.database.Create(plan).Error
}

func (repo *LeadRecordRepository) FindSupportPlan(planID uint) (models.SupportPlan, error) {
	var plan models.SupportPlan
	if err := repo.database.First(&plan, planID).Error; err != nil {
		return models.SupportPlan{}, err
	}
	return plan, nil
}

func (repo *LeadRecordRepository) SaveSupportPlan(plan *models.SupportPlan) error {
	return repo.database.Save(plan).Error
}

func (repo *LeadRecordRepository) ListSupportPlans(query models.LeadRecordQuery) ([]models.SupportPlan, error) {
	statement := applyLeadRecordQuery(repo.database, query)
	if query.PlanStatus != "" {
		statement = statement.Where("status = ?", query.PlanStatus)
	}

	plans := make([]models.SupportPlan, 0)
	if err := statement.Order("start_date DESC, id DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (repo *LeadRecordRepository) CreateWin(win *models.Win) error {
	return repo.database.Create(win).Error
}

func (repo *LeadRecordRepository) FindWin(winID uint) (models.Win, error) {
	var win models.Win
	if err := repo.database.First(&win, winID).Error; err != nil {
		return models.Win{}, err
	}
	return win, nil
}

func (repo *LeadRecordRepository) SetWinCelebrated(winID uint, celebrated bool) error {
	return repo.database.Model(&models.Win{}).Where("id = ?", winID).Update("celebrated", celebrated).Error
}

func (repo *LeadRecordRepository) ListWins(query models.LeadRecordQuery) ([]models.Win, error) {
	wins := make([]models.Win, 0)
	if err := applyLeadRecordQuery(repo.database, query).
		Order("win_date DESC, id DESC").
		Find(&wins).Error; err != nil {
		return nil, err
	}
	return wins, nil
}

func applyLeadRecordQuery(statement *gorm.DB, query models.LeadRecordQuery) *gorm.DB {
	if query.LeadInternID != 0 {
		statement = statement.Where("lead_intern_id = ?", query.LeadInternID)
	}
	if query.CoreInternID != 0 {
		statement = statement.Where("core_intern_id = ?", query.CoreInternID)
	}
	return statement
}
