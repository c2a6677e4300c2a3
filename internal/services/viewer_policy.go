package services

import "github.com/clubstride/hourtrack/internal/models"

// ShouldExposeAdminComment reports whether the current admin comment is shown to the viewer.
// Admins always see it; everyone else only while the latest decision is on display.
func ShouldExposeAdminComment(caller Caller, deliverable models.Deliverable) bool {
	return caller.IsAdmin() || deliverable.CommentVisible
}

func SanitizeDeliverableForViewer(caller Caller, deliverable models.Deliverable) models.Deliverable {
	if !ShouldExposeAdminComment(caller, deliverable) {
		deliverable.AdminComment = ""
	}
	return deliverable
}

func SanitizeDeliverablesForViewer(caller Caller, deliverables []models.DeliverableWithUser) {
	if caller.IsAdmin() {
		return
	}
	for index := range deliverables {
		deliverables[index].Deliverable = SanitizeDeliverableForViewer(caller, deliverables[index].Deliverable)
	}
}
