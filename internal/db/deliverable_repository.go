package db

import (
	"encoding/json"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

type DeliverableRepository struct {
	database *gorm.DB
}

func NewDeliverableRepository(database *gorm.DB) *DeliverableRepository {
	return &DeliverableRepository{database: database}
}

func (repo *DeliverableRepository) Create(deliverable *models.Deliverable) error {
	return repo.database.Create(deliverable).Error
}

func (repo *DeliverableRepository) FindByID(deliverableID uint) (models.Deliverable, error) {
	var deliverable models.Deliverable
	if err := repo.database.First(&deliverable, deliverableID).Error; err != nil {
		return models.Deliverable{}, err
	}
	return deliverable, nil
}

func (repo *DeliverableRepository) List(query models.DeliverableQuery) ([]models.DeliverableWithUser, error) {
	statement := repo.database.Table("deliverables").
		Select("deliverables.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = deliverables.user_id")
	if query.RestrictIDs {
		if len(query.UserIDs) == 0 {
			return []models.DeliverableWithUser{}, nil
		}
		statement = statement.Where("deliverables.user_id IN ?", query.UserIDs)
	}
	if query.Status != "" {
		statement = statement.Where("deliverables.status = ?", query.Status)
	}

	deliverables := make([]models.DeliverableWithUser, 0)
	if err := statement.Order("deliverables.submitted_at DESC, deliverables.id DESC").Find(&deliverables).Error; err != nil {
		return nil, err
	}
	return deliverables, nil
}

func (repo *DeliverableRepository) ListForExport(userID uint, window models.ReportWindow) ([]models.Deliverable, error) {
	statement := applySubmittedWindow(repo.database.Where("user_id = ?", userID), window)
	deliverables := make([]models.Deliverable, 0)
	if err := statement.Order("id ASC").Find(&deliverables).Error; err != nil {
		return nil, err
	}
	return deliverables, nil
}

// ApplyReview decides a pending deliverable and appends the history row in one transaction.
// It reports false when the deliverable is no longer pending.
func (repo *DeliverableRepository) ApplyReview(deliverableID uint, to models.DeliverableStatus, comment string, reviewerID uint, at time.Time) (bool, error) {
	applied := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Deliverable{}).
			Where("id = ? AND status = ?", deliverableID, models.DeliverablePending).
			Updates(map[string]any{
				"status":          to,
				"admin_comment":   comment,
				"comment_visible": true,
				"reviewed_at":     at,
				"reviewed_by":     reviewerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return nil
		}

		history := models.DeliverableReview{
			DeliverableID: deliverableID,
			ActorID:       reviewerID,
			FromStatus:    models.DeliverablePending,
			ToStatus:      to,
			Comment:       comment,
			CreatedAt:     at,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// Resubmit returns a needs_revision deliverable to pending. The admin comment stays in the row;
// it is only hidden from the owner's current view.
func (repo *DeliverableRepository) Resubmit(deliverableID uint, actorID uint, revision models.DeliverableRevision, at time.Time) (bool, error) {
	applied := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":          models.DeliverablePending,
			"comment_visible": false,
			"reviewed_at":     nil,
			"reviewed_by":     nil,
			"submitted_at":    at,
		}
		if revision.Description != nil {
			updates["description"] = *revision.Description
		}
		if revision.Links != nil {
			updates["links"] = encodeLinkList(revision.Links)
		}
		if revision.ProofLinks != nil {
			updates["proof_links"] = encodeLinkList(revision.ProofLinks)
		}

		result := tx.Model(&models.Deliverable{}).
			Where("id = ? AND status = ?", deliverableID, models.DeliverableNeedsRevision).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return nil
		}

		history := models.DeliverableReview{
			DeliverableID: deliverableID,
			ActorID:       actorID,
			FromStatus:    models.DeliverableNeedsRevision,
			ToStatus:      models.DeliverablePending,
			CreatedAt:     at,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (repo *DeliverableRepository) History(deliverableID uint) ([]models.DeliverableReview, error) {
	history := make([]models.DeliverableReview, 0)
	if err := repo.database.
		Where("deliverable_id = ?", deliverableID).
		Order("created_at ASC, id ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (repo *DeliverableRepository) CountByStatus(userID uint, window models.ReportWindow) (models.DeliverableCounts, error) {
	var rows []struct {
		Status models.DeliverableStatus `gorm:"column:status"`
		Total  int64                    `gorm:"column:total"`
	}
	statement := repo.database.Model(&models.Deliverable{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID)
	statement = applySubmittedWindow(statement, window)
	if err := statement.Group("status").Scan(&rows).Error; err != nil {
		return models.DeliverableCounts{}, err
	}

	counts := models.DeliverableCounts{}
	for _, row := range rows {
		switch row.Status {
		case models.DeliverablePending:
			counts.Pending = row.Total
		case models.DeliverableApproved:
			counts.Approved = row.Total
		case models.DeliverableNeedsRevision:
			counts.NeedsRevision = row.Total
		case models.DeliverableRejected:
			counts.Rejected = row.Total
		}
	}
	return counts, nil
}

func applySubmittedWindow(statement *gorm.DB, window models.ReportWindow) *gorm.DB {
	if window.SubmittedFrom != nil {
		statement = statement.Where("submitted_at >= ?", *window.SubmittedFrom)
	}
	if window.SubmittedBefore != nil {
		statement = statement.Where("submitted_at < ?", *window.SubmittedBefore)
	}
	return statement
}

// encodeLinkList mirrors the json serializer on Deliverable for map-based updates.
func encodeLinkList(links []string) string {
	if links == nil {
		links = []string{}
	}
	encoded, err := json.Marshal(links)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
