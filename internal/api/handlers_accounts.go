package api

import (
	"fmt"
	"strings"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListPendingAccounts(c *fiber.Ctx) error {
	users, err := handler.accounts.ListPending(currentCaller(c))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (handler *Handler) DecideAccount(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := accountDecisionInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	decision, err := services.ParseAccountDecision(input.Decision)
	if err != nil {
		return handler.respondError(c, err)
	}

	caller := currentCaller(c)
	outcome, err := handler.accounts.DecideAccount(c.UserContext(), caller, userID, decision, input.Username)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.logger.Info("account decided", "user_id", userID, "decision", decision, "admin_id", caller.UserID)
	return c.JSON(handler.accountOutcomePayload(outcome))
}

func (handler *Handler) DeactivateAccount(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}

	caller := currentCaller(c)
	user, err := handler.accounts.DeactivateUser(caller, userID)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.logger.Info("account deactivated", "user_id", userID, "admin_id", caller.UserID)
	return c.JSON(fiber.Map{"user": user})
}

func (handler *Handler) ReactivateAccount(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}

	caller := currentCaller(c)
	outcome, err := handler.accounts.ReactivateUser(c.UserContext(), caller, userID)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.logger.Info("account reactivated", "user_id", userID, "admin_id", caller.UserID)
	return c.JSON(handler.accountOutcomePayload(outcome))
}

func (handler *Handler) AssignLead(c *fiber.Ctx) error {
	coreInternID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := leadAssignmentInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	if input.LeadInternID != nil && *input.LeadInternID == 0 {
		input.LeadInternID = nil
	}

	if err := handler.accounts.AssignLead(currentCaller(c), coreInternID, input.LeadInternID); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "core_intern_id": coreInternID, "lead_intern_id": input.LeadInternID})
}

// accountOutcomePayload shows issued credentials to the admin and flags a failed mailing.
func (handler *Handler) accountOutcomePayload(outcome services.AccountOutcome) fiber.Map {
	payload := fiber.Map{"user": outcome.User}
	if outcome.Credentials != nil {
		payload["credentials"] = fiber.Map{
			"username":           outcome.Credentials.Username,
			"temporary_password": outcome.Credentials.TemporaryPassword,
		}
	}
	if outcome.NotifyErr != nil {
		handler.logger.Warn("credential notification failed", "user_id", outcome.User.ID, "error", outcome.NotifyErr)
		payload["notification_error"] = "credentials could not be emailed"
	}
	return payload
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	query, err := parseUserQuery(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	users, err := handler.accounts.ListUsers(currentCaller(c), query)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (handler *Handler) GetUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	user, err := handler.accounts.FindUser(currentCaller(c), userID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (handler *Handler) ListLeadInterns(c *fiber.Ctx) error {
	leadInternID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	users, err := handler.accounts.ListAssignedCoreInterns(currentCaller(c), leadInternID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func parseUserQuery(c *fiber.Ctx) (models.UserQuery, error) {
	query := models.UserQuery{ExcludeAdmin: queryFlag(c, "exclude_admin")}

	if raw := strings.ToLower(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := models.UserStatus(raw)
		switch status {
		case models.StatusPendingApproval, models.StatusActive, models.StatusInactive:
			query.Status = status
		default:
			return models.UserQuery{}, fmt.Errorf("%w: unknown status %q", services.ErrValidation, raw)
		}
	}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role, ok := models.ParseRole(raw)
		if !ok {
			return models.UserQuery{}, fmt.Errorf("%w: unknown role %q", services.ErrValidation, raw)
		}
		query.Role = role
	}
	leadInternID, err := parseOptionalIDQuery(c, "lead_intern_id")
	if err != nil {
		return models.UserQuery{}, err
	}
	if leadInternID != 0 {
		query.LeadInternID = &leadInternID
	}
	return query, nil
}
