package services

import (
	"fmt"

	"github.com/clubstride/hourtrack/internal/models"
)

// Caller is the authenticated identity an operation runs on behalf of.
type Caller struct {
	UserID uint
	Role   models.Role
}

func CallerFor(user models.User) Caller {
	return Caller{UserID: user.ID, Role: user.Role}
}

func (caller Caller) IsAdmin() bool {
	return caller.Role == models.RoleAdmin
}

func (caller Caller) IsLeadIntern() bool {
	return caller.Role == models.RoleLeadIntern
}

func (caller Caller) IsCoreIntern() bool {
	return caller.Role == models.RoleCoreIntern
}

func unauthorizedError(action string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, action)
}

// Account lifecycle.

func AuthorizeManageAccounts(caller Caller) error {
	if !caller.IsAdmin() {
		return unauthorizedError("only admins manage accounts")
	}
	return nil
}

func AuthorizeListUsers(caller Caller) error {
	if !caller.IsAdmin() {
		return unauthorizedError("only admins list users")
	}
	return nil
}

func AuthorizeListAssignedInterns(caller Caller) error {
	if !caller.IsLeadIntern() && !caller.IsAdmin() {
		return unauthorizedError("only lead interns have assigned interns")
	}
	return nil
}

// Submissions.

func AuthorizeSubmitWork(caller Caller) error {
	if !caller.IsCoreIntern() {
		return unauthorizedError("only core interns submit hours and deliverables")
	}
	return nil
}

func AuthorizeReviewSubmission(caller Caller) error {
	if !caller.IsAdmin() {
		return unauthorizedError("only admins review submissions")
	}
	return nil
}

// AuthorizeViewWorkOf gates reading another user's hours, deliverables and reports.
func AuthorizeViewWorkOf(caller Caller, owner models.User) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleLeadIntern:
		if owner.Role == models.RoleCoreIntern && owner.LeadInternID != nil && *owner.LeadInternID == caller.UserID {
			return nil
		}
	case models.RoleCoreIntern:
		if owner.ID == caller.UserID {
			return nil
		}
	}
	return unauthorizedError("not allowed to view this user's work")
}

func AuthorizeResubmitDeliverable(caller Caller, deliverable models.Deliverable) error {
	if !caller.IsCoreIntern() || deliverable.UserID != caller.UserID {
		return unauthorizedError("only the owner re-submits a deliverable")
	}
	return nil
}

// Lead records. Admins read them; only the assigned lead writes them.

func AuthorizeWriteLeadRecord(caller Caller, coreIntern models.User) error {
	if !caller.IsLeadIntern() {
		return unauthorizedError("only lead interns write check-ins, support plans and wins")
	}
	if coreIntern.Role != models.RoleCoreIntern || coreIntern.LeadInternID == nil || *coreIntern.LeadInternID != caller.UserID {
		return unauthorizedError("core intern is not assigned to this lead intern")
	}
	return nil
}

func AuthorizeMutateLeadRecord(caller Caller, recordLeadID uint) error {
	if !caller.IsLeadIntern() || recordLeadID != caller.UserID {
		return unauthorizedError("only the authoring lead intern changes this record")
	}
	return nil
}

func AuthorizeReadLeadRecords(caller Caller, query models.LeadRecordQuery) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleLeadIntern:
		if query.LeadInternID == caller.UserID {
			return nil
		}
	}
	return unauthorizedError("not allowed to read these records")
}

// Reports and export.

func AuthorizeTeamReport(caller Caller) error {
	if !caller.IsAdmin() && !caller.IsLeadIntern() {
		return unauthorizedError("only admins and lead interns read team reports")
	}
	return nil
}
