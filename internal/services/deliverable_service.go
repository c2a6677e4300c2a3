package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

var (
	ErrDeliverableDecisionInvalid = validationError("decision must be approve, needs_revision or reject")
	ErrDeliverableNotRevisable    = validationError("only deliverables that need revision can be re-submitted")
)

type DeliverableRepository interface {
	Create(deliverable *models.Deliverable) error
	FindByID(deliverableID uint) (models.Deliverable, error)
	List(query models.DeliverableQuery) ([]models.DeliverableWithUser, error)
	ApplyReview(deliverableID uint, to models.DeliverableStatus, comment string, reviewerID uint, at time.Time) (bool, error)
	Resubmit(deliverableID uint, actorID uint, revision models.DeliverableRevision, at time.Time) (bool, error)
	History(deliverableID uint) ([]models.DeliverableReview, error)
}

type DeliverableFilter struct {
	UserID uint
	Status string
}

type DeliverableService struct {
	deliverables DeliverableRepository
	owners       WorkOwnerReader
	now          func() time.Time
}

func NewDeliverableService(deliverables DeliverableRepository, owners WorkOwnerReader) *DeliverableService {
	return &DeliverableService{
		deliverables: deliverables,
		owners:       owners,
		now:          time.Now,
	}
}

func (service *DeliverableService) Submit(caller Caller, input DeliverableInput) (models.Deliverable, error) {
	if err := AuthorizeSubmitWork(caller); err != nil {
		return models.Deliverable{}, err
	}
	normalized, err := NormalizeDeliverableInput(input)
	if err != nil {
		return models.Deliverable{}, err
	}

	deliverable := models.Deliverable{
		UserID:      caller.UserID,
		Type:        normalized.Type,
		Description: normalized.Description,
		Links:       normalized.Links,
		ProofLinks:  normalized.ProofLinks,
		Status:      models.DeliverablePending,
		SubmittedAt: service.now().UTC(),
	}
	if err := service.deliverables.Create(&deliverable); err != nil {
		return models.Deliverable{}, fmt.Errorf("create deliverable: %w", err)
	}
	return deliverable, nil
}

func deliverableStatusForDecision(decision ReviewDecision) (models.DeliverableStatus, bool) {
	switch decision {
	case ReviewApprove:
		return models.DeliverableApproved, true
	case ReviewNeedsRevision:
		return models.DeliverableNeedsRevision, true
	case ReviewReject:
		return models.DeliverableRejected, true
	default:
		return "", false
	}
}

// Review decides a pending deliverable and records the decision in its history.
func (service *DeliverableService) Review(caller Caller, deliverableID uint, decision ReviewDecision, comment string) (models.Deliverable, error) {
	if err := AuthorizeReviewSubmission(caller); err != nil {
		return models.Deliverable{}, err
	}
	status, ok := deliverableStatusForDecision(decision)
	if !ok {
		return models.Deliverable{}, ErrDeliverableDecisionInvalid
	}
	comment = TrimDescription(strings.TrimSpace(comment))

	deliverable, err := service.find(deliverableID)
	if err != nil {
		return models.Deliverable{}, err
	}
	if deliverable.Status != models.DeliverablePending {
		return models.Deliverable{}, ErrAlreadyReviewed
	}

	now := service.now().UTC()
	changed, err := service.deliverables.ApplyReview(deliverable.ID, status, comment, caller.UserID, now)
	if err != nil {
		return models.Deliverable{}, fmt.Errorf("apply deliverable review: %w", err)
	}
	if !changed {
		return models.Deliverable{}, ErrAlreadyReviewed
	}

	deliverable.Status = status
	deliverable.AdminComment = comment
	deliverable.CommentVisible = true
	deliverable.ReviewedAt = &now
	deliverable.ReviewedBy = &caller.UserID
	return deliverable, nil
}

// Resubmit sends a needs_revision deliverable back to pending. A nil input keeps the
// stored content; otherwise non-empty fields replace it.
func (service *DeliverableService) Resubmit(caller Caller, deliverableID uint, input *DeliverableInput) (models.Deliverable, error) {
	deliverable, err := service.find(deliverableID)
	if err != nil {
		return models.Deliverable{}, err
	}
	if err := AuthorizeResubmitDeliverable(caller, deliverable); err != nil {
		return models.Deliverable{}, err
	}
	if deliverable.Status != models.DeliverableNeedsRevision {
		return models.Deliverable{}, ErrDeliverableNotRevisable
	}

	revision, err := buildRevision(input)
	if err != nil {
		return models.Deliverable{}, err
	}

	changed, err := service.deliverables.Resubmit(deliverable.ID, caller.UserID, revision, service.now().UTC())
	if err != nil {
		return models.Deliverable{}, fmt.Errorf("resubmit deliverable: %w", err)
	}
	if !changed {
		return models.Deliverable{}, ErrDeliverableNotRevisable
	}

	updated, err := service.find(deliverable.ID)
	if err != nil {
		return models.Deliverable{}, err
	}
	return SanitizeDeliverableForViewer(caller, updated), nil
}

func buildRevision(input *DeliverableInput) (models.DeliverableRevision, error) {
	revision := models.DeliverableRevision{}
	if input == nil {
		return revision, nil
	}

	if description := TrimDescription(strings.TrimSpace(input.Description)); description != "" {
		revision.Description = &description
	}
	if strings.TrimSpace(input.Links) != "" {
		links, err := ParseLinkList(input.Links)
		if err != nil {
			return models.DeliverableRevision{}, err
		}
		revision.Links = links
	}
	if strings.TrimSpace(input.ProofLinks) != "" {
		proofLinks, err := ParseLinkList(input.ProofLinks)
		if err != nil {
			return models.DeliverableRevision{}, err
		}
		revision.ProofLinks = proofLinks
	}
	return revision, nil
}

// History returns every decision and re-submission of a deliverable, oldest first.
func (service *DeliverableService) History(caller Caller, deliverableID uint) ([]models.DeliverableReview, error) {
	deliverable, err := service.find(deliverableID)
	if err != nil {
		return nil, err
	}
	owner, err := loadWorkOwner(service.owners, deliverable.UserID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeViewWorkOf(caller, owner); err != nil {
		return nil, err
	}

	history, err := service.deliverables.History(deliverable.ID)
	if err != nil {
		return nil, fmt.Errorf("load deliverable history: %w", err)
	}
	return history, nil
}

func (service *DeliverableService) Get(caller Caller, deliverableID uint) (models.Deliverable, error) {
	deliverable, err := service.find(deliverableID)
	if err != nil {
		return models.Deliverable{}, err
	}
	owner, err := loadWorkOwner(service.owners, deliverable.UserID)
	if err != nil {
		return models.Deliverable{}, err
	}
	if err := AuthorizeViewWorkOf(caller, owner); err != nil {
		return models.Deliverable{}, err
	}
	return SanitizeDeliverableForViewer(caller, deliverable), nil
}

func (service *DeliverableService) List(caller Caller, filter DeliverableFilter) ([]models.DeliverableWithUser, error) {
	query := models.DeliverableQuery{}
	if raw := strings.TrimSpace(filter.Status); raw != "" {
		status, ok := models.ParseDeliverableStatus(raw)
		if !ok {
			return nil, validationError("unknown deliverable status")
		}
		query.Status = status
	}

	scope, err := resolveWorkScope(service.owners, caller, filter.UserID)
	if err != nil {
		return nil, err
	}
	query.UserIDs = scope.UserIDs
	query.RestrictIDs = scope.RestrictIDs

	deliverables, err := service.deliverables.List(query)
	if err != nil {
		return nil, fmt.Errorf("list deliverables: %w", err)
	}
	SanitizeDeliverablesForViewer(caller, deliverables)
	return deliverables, nil
}

func (service *DeliverableService) find(deliverableID uint) (models.Deliverable, error) {
	deliverable, err := service.deliverables.FindByID(deliverableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Deliverable{}, notFoundError("deliverable")
	}
	if err != nil {
		return models.Deliverable{}, fmt.Errorf("load deliverable: %w", err)
	}
	return deliverable, nil
}
