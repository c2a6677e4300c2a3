package db

import (
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

type HourRepository struct {
	database *gorm.DB
}

func NewHourRepository(database *gorm.DB) *HourRepository {
	return &HourRepository{database: database}
}

func (repo *HourRepository) Create(entry *models.HourEntry) error {
	return repo.database.Create(entry).Error
}

func (repo *HourRepository) FindByID(entryID uint) (models.HourEntry, error) {
	var entry models.HourEntry
	if err := repo.database.First(&entry, entryID).Error; err != nil {
		return models.HourEntry{}, err
	}
	return entry, nil
}

func (repo *HourRepository) List(query models.HourQuery) ([]models.HourEntryWithUser, error) {
	statement := repo.database.Table("hours").
		Select("hours.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = hours.user_id")
	if query.RestrictIDs {
		if len(query.UserIDs) == 0 {
			return []models.HourEntryWithUser{}, nil
		}
		statement = statement.Where("hours.user_id IN ?", query.UserIDs)
	}
	if query.FromDate != "" {
		statement = statement.Where("hours.date >= ?", query.FromDate)
	}
	if query.ToDate != "" {
		statement = statement.Where("hours.date <= ?", query.ToDate)
	}
	if query.PendingOnly {
		statement = statement.Where("hours.reviewed_at IS NULL")
	}

	entries := make([]models.HourEntryWithUser, 0)
	if err := statement.Order("hours.date DESC, hours.id DESC").Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListForExport returns a user's entries in id order.
func (repo *HourRepository) ListForExport(userID uint, window models.ReportWindow) ([]models.HourEntry, error) {
	statement := applyDateWindow(repo.database.Where("user_id = ?", userID), "date", window)
	entries := make([]models.HourEntry, 0)
	if err := statement.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ApplyReview records a decision on an unreviewed entry. It reports false when the entry
// was already decided, so a second decision never lands.
func (repo *HourRepository) ApplyReview(entryID uint, approved bool, reviewerID uint, at time.Time) (bool, error) {
	result := repo.database.Model(&models.HourEntry{}).
		Where("id = ? AND reviewed_at IS NULL", entryID).
		Updates(map[string]any{
			"approved":    approved,
			"reviewed_at": at,
			"reviewed_by": reviewerID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (repo *HourRepository) SumByUser(userID uint, window models.ReportWindow) (models.HourTotals, error) {
	statement := repo.database.Model(&models.HourEntry{}).
		Select(`COALESCE(SUM(total_hours), 0) AS total_hours,
			COALESCE(SUM(CASE WHEN approved = 1 THEN total_hours ELSE 0 END), 0) AS approved_hours,
			COALESCE(SUM(CASE WHEN reviewed_at IS NULL THEN total_hours ELSE 0 END), 0) AS pending_hours,
			COUNT(*) AS entries`).
		Where("user_id = ?", userID)
	statement = applyDateWindow(statement, "date", window)

	var totals models.HourTotals
	if err := statement.Scan(&totals).Error; err != nil {
		return models.HourTotals{}, err
	}
	return totals, nil
}

func applyDateWindow(statement *gorm.DB, column string, window models.ReportWindow) *gorm.DB {
	if window.FromDate != "" {
		statement = statement.Where(column+" >= ?", window.FromDate)
	}
	if window.ToDate != "" {
		statement = statement.Where(column+" <= ?", window.ToDate)
	}
	return statement
}
