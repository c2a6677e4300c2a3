package services

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

type stubDeliverableRepo struct {
	deliverables []models.Deliverable
	history      []models.DeliverableReview
}

func (stub *stubDeliverableRepo) Create(deliverable *models.Deliverable) error {
	deliverable.ID = uint(len(stub.deliverables) + 1)
	stub.deliverables = append(stub.deliverables, *deliverable)
	return nil
}

func (stub *stubDeliverableRepo) FindByID(deliverableID uint) (models.Deliverable, error) {
	for _, deliverable := range stub.deliverables {
		if deliverable.ID == deliverableID {
			return deliverable, nil
		}
	}
	return models.Deliverable{}, gorm.ErrRecordNotFound
}

func (stub *stubDeliverableRepo) List(query models.DeliverableQuery) ([]models.DeliverableWithUser, error) {
	result := make([]models.DeliverableWithUser, 0)
	for _, deliverable := range stub.deliverables {
		if query.RestrictIDs && !slices.Contains(query.UserIDs, deliverable.UserID) {
			continue
		}
		if query.Status != "" && deliverable.Status != query.Status {
			continue
		}
		result = append(result, models.DeliverableWithUser{Deliverable: deliverable})
	}
	return result, nil
}

func (stub *stubDeliverableRepo) ApplyReview(deliverableID uint, to models.DeliverableStatus, comment string, reviewerID uint, at time.Time) (bool, error) {
	for index, deliverable := range stub.deliverables {
		if deliverable.ID != deliverableID || deliverable.Status != models.DeliverablePending {
			continue
		}
		stub.deliverables[index].Status = to
		stub.deliverables[index].AdminComment = comment
		stub.deliverables[index].CommentVisible = true
		stub.deliverables[index].ReviewedAt = &at
		stub.deliverables[index].ReviewedBy = &reviewerID
		stub.history = append(stub.history, models.DeliverableReview{
			DeliverableID: deliverableID,
			ActorID:       reviewerID,
			FromStatus:    models.DeliverablePending,
			ToStatus:      to,
			Comment:       comment,
			CreatedAt:     at,
		})
		return true, nil
	}
	return false, nil
}

func (stub *stubDeliverableRepo) Resubmit(deliverableID uint, actorID uint, revision models.DeliverableRevision, at time.Time) (bool, error) {
	for index, deliverable := range stub.deliverables {
		if deliverable.ID != deliverableID || deliverable.Status != models.DeliverableNeedsRevision {
			continue
		}
		updated := &stub.deliverables[index]
		updated.Status = models.DeliverablePending
		updated.CommentVisible = false
		updated.ReviewedAt = nil
		updated.ReviewedBy = nil
		updated.SubmittedAt = at
		if revision.Description != nil {
			updated.Description = *revision.Description
		}
		if revision.Links != nil {
			updated.Links = revision.Links
		}
		if revision.ProofLinks != nil {
			updated.ProofLinks = revision.ProofLinks
		}
		stub.history = append(stub.history, models.DeliverableReview{
			DeliverableID: deliverableID,
			ActorID:       actorID,
			FromStatus:    models.DeliverableNeedsRevision,
			ToStatus:      models.DeliverablePending,
			CreatedAt:     at,
		})
		return true, nil
	}
	return false, nil
}

func (stub *stubDeliverableRepo) History(deliverableID uint) ([]models.DeliverableReview, error) {
	result := make([]models.DeliverableReview, 0)
	for _, row := range stub.history {
		if row.DeliverableID == deliverableID {
			result = append(result, row)
		}
	}
	return result, nil
}

func newDeliverableServiceForTest(repo *stubDeliverableRepo) *DeliverableService {
	service := NewDeliverableService(repo, workOwnersForTest())
	service.now = func() time.Time { return fixedServiceTime }
	return service
}

func validDeliverableInput() DeliverableInput {
	return DeliverableInput{
		Type:        "reel",
		Description: "Campus tour reel",
		Links:       "https://example.com/reel",
		ProofLinks:  "https://example.com/proof",
	}
}

func TestDeliverableSubmitStartsPending(t *testing.T) {
	repo := &stubDeliverableRepo{}
	deliverable, err := newDeliverableServiceForTest(repo).Submit(coreCaller, validDeliverableInput())
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if deliverable.Status != models.DeliverablePending || deliverable.CommentVisible {
		t.Fatalf("unexpected initial state: %#v", deliverable)
	}
	if !deliverable.SubmittedAt.Equal(fixedServiceTime) {
		t.Fatalf("expected submitted_at %s, got %s", fixedServiceTime, deliverable.SubmittedAt)
	}
	if !slices.Equal(deliverable.Links, []string{"https://example.com/reel"}) {
		t.Fatalf("unexpected links: %#v", deliverable.Links)
	}
}

func TestDeliverableSubmitRejectsNonCoreCallers(t *testing.T) {
	repo := &stubDeliverableRepo{}
	if _, err := newDeliverableServiceForTest(repo).Submit(leadCaller, validDeliverableInput()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(repo.deliverables) != 0 {
		t.Fatalf("expected no write")
	}
}

func TestDeliverableReviewOnlyByAdminAndOnlyOnce(t *testing.T) {
	repo := &stubDeliverableRepo{deliverables: []models.Deliverable{{ID: 1, UserID: 3, Status: models.DeliverablePending}}}
	service := newDeliverableServiceForTest(repo)

	if _, err := service.Review(leadCaller, 1, ReviewApprove, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("lead approving: expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.Review(coreCaller, 1, ReviewApprove, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("core approving: expected ErrUnauthorized, got %v", err)
	}
	if repo.deliverables[0].Status != models.DeliverablePending {
		t.Fatalf("unauthorized review must not write")
	}

	reviewed, err := service.Review(adminCaller, 1, ReviewNeedsRevision, "  add captions  ")
	if err != nil {
		t.Fatalf("Review() unexpected error: %v", err)
	}
	if reviewed.Status != models.DeliverableNeedsRevision || reviewed.AdminComment != "add captions" || !reviewed.CommentVisible {
		t.Fatalf("unexpected reviewed deliverable: %#v", reviewed)
	}

	if _, err := service.Review(adminCaller, 1, ReviewApprove, ""); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if _, err := service.Review(adminCaller, 1, ReviewDecision("maybe"), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown decision, got %v", err)
	}
	if _, err := service.Review(adminCaller, 42, ReviewApprove, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeliverableResubmitResetsToPendingAndHidesComment(t *testing.T) {
	repo := &stubDeliverableRepo{deliverables: []models.Deliverable{{
		ID:          1,
		UserID:      3,
		Type:        models.DeliverableReel,
		Description: "draft",
		Status:      models.DeliverablePending,
	}}}
	service := newDeliverableServiceForTest(repo)

	if _, err := service.Review(adminCaller, 1, ReviewNeedsRevision, "shorter please"); err != nil {
		t.Fatalf("Review() unexpected error: %v", err)
	}

	if _, err := service.Resubmit(otherCoreCaller, 1, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner resubmit: expected ErrUnauthorized, got %v", err)
	}

	resubmitted, err := service.Resubmit(coreCaller, 1, &DeliverableInput{Description: "final cut"})
	if err != nil {
		t.Fatalf("Resubmit() unexpected error: %v", err)
	}
	if resubmitted.Status != models.DeliverablePending || resubmitted.CommentVisible {
		t.Fatalf("expected pending with hidden comment, got %#v", resubmitted)
	}
	if resubmitted.AdminComment != "" {
		t.Fatalf("owner must not see the hidden comment, got %q", resubmitted.AdminComment)
	}
	if resubmitted.Description != "final cut" {
		t.Fatalf("expected replaced description, got %q", resubmitted.Description)
	}
	if repo.deliverables[0].AdminComment != "shorter please" {
		t.Fatalf("stored comment must be kept for the record")
	}

	history, err := service.History(adminCaller, 1)
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(history) != 2 || history[1].FromStatus != models.DeliverableNeedsRevision || history[1].ToStatus != models.DeliverablePending {
		t.Fatalf("unexpected history: %#v", history)
	}

	if _, err := service.Resubmit(coreCaller, 1, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("resubmitting a pending deliverable: expected ErrValidation, got %v", err)
	}
}

func TestDeliverableListHidesCommentsFromNonAdmins(t *testing.T) {
	repo := &stubDeliverableRepo{deliverables: []models.Deliverable{
		{ID: 1, UserID: 3, Status: models.DeliverablePending, AdminComment: "old note", CommentVisible: false},
		{ID: 2, UserID: 3, Status: models.DeliverableApproved, AdminComment: "great", CommentVisible: true},
		{ID: 3, UserID: 4, Status: models.DeliverablePending},
	}}
	service := newDeliverableServiceForTest(repo)

	owned, err := service.List(coreCaller, DeliverableFilter{})
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 own deliverables, got %d", len(owned))
	}
	if owned[0].AdminComment != "" || owned[1].AdminComment != "great" {
		t.Fatalf("unexpected comment exposure: %q / %q", owned[0].AdminComment, owned[1].AdminComment)
	}

	all, err := service.List(adminCaller, DeliverableFilter{Status: "pending"})
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].AdminComment != "old note" {
		t.Fatalf("admin listing: unexpected result %#v", all)
	}

	if _, err := service.List(adminCaller, DeliverableFilter{Status: "archived"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestDeliverableReadAccessFollowsAssignment(t *testing.T) {
	repo := &stubDeliverableRepo{deliverables: []models.Deliverable{
		{ID: 1, UserID: 3, Status: models.DeliverablePending},
		{ID: 2, UserID: 4, Status: models.DeliverablePending},
	}}
	service := newDeliverableServiceForTest(repo)

	if _, err := service.Get(leadCaller, 1); err != nil {
		t.Fatalf("lead reading assigned intern: unexpected error %v", err)
	}
	if _, err := service.Get(leadCaller, 2); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("lead reading unassigned intern: expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.History(otherCoreCaller, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("core reading foreign history: expected ErrUnauthorized, got %v", err)
	}
}
