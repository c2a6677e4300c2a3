package services

import (
	"errors"
	"fmt"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

// WorkOwnerReader resolves the users whose hours and deliverables a caller may see.
type WorkOwnerReader interface {
	FindByID(userID uint) (models.User, error)
	ListUsers(query models.UserQuery) ([]models.User, error)
}

type workScope struct {
	UserIDs     []uint
	RestrictIDs bool
}

// resolveWorkScope narrows a listing to what the caller may read. A zero requestedUserID
// means "everything visible": all users for admins, assigned interns for leads, self for interns.
func resolveWorkScope(owners WorkOwnerReader, caller Caller, requestedUserID uint) (workScope, error) {
	if requestedUserID != 0 {
		owner, err := loadWorkOwner(owners, requestedUserID)
		if err != nil {
			return workScope{}, err
		}
		if err := AuthorizeViewWorkOf(caller, owner); err != nil {
			return workScope{}, err
		}
		return workScope{UserIDs: []uint{owner.ID}, RestrictIDs: true}, nil
	}

	switch caller.Role {
	case models.RoleAdmin:
		return workScope{}, nil
	case models.RoleCoreIntern:
		return workScope{UserIDs: []uint{caller.UserID}, RestrictIDs: true}, nil
	case models.RoleLeadIntern:
		leadID := caller.UserID
		assigned, err := owners.ListUsers(models.UserQuery{Role: models.RoleCoreIntern, LeadInternID: &leadID})
		if err != nil {
			return workScope{}, fmt.Errorf("list assigned interns: %w", err)
		}
		ids := make([]uint, 0, len(assigned))
		for _, user := range assigned {
			ids = append(ids, user.ID)
		}
		return workScope{UserIDs: ids, RestrictIDs: true}, nil
	default:
		return workScope{}, unauthorizedError("unknown role")
	}
}

func loadWorkOwner(owners WorkOwnerReader, userID uint) (models.User, error) {
	owner, err := owners.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, notFoundError("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return owner, nil
}
