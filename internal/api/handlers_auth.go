package api

import (
	"fmt"
	"strings"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := loginInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondFormError(c, errInvalidInput, "/login", FlashPayload{})
	}

	user, session, err := handler.auth.Login(input.Identifier, input.Password, handler.now())
	if err != nil {
		if services.KindOf(err) != services.KindInternal {
			handler.logger.Warn("sign-in rejected", "reason", services.ErrorReason(err), "ip", c.IP())
		}
		return handler.respondFormError(c, err, "/login", FlashPayload{LoginIdentifier: input.Identifier})
	}

	if err := handler.setSessionCookie(c, user, session); err != nil {
		handler.auth.Logout(session.Token)
		return handler.respondError(c, fmt.Errorf("issue session cookie: %w", err))
	}
	handler.logger.Info("user signed in", "user_id", user.ID, "role", user.Role)

	target := "/dashboard"
	if user.MustChangePassword {
		target = "/change-password"
	}
	return handler.respondFormSuccess(c, target, FlashPayload{}, fiber.StatusOK, fiber.Map{
		"ok":                   true,
		"user":                 user,
		"must_change_password": user.MustChangePassword,
	})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondFormError(c, errInvalidInput, "/register", FlashPayload{})
	}

	userID, err := handler.accounts.RequestAccount(services.AccountRequest{
		Name:      input.Name,
		Email:     input.Email,
		School:    input.School,
		Role:      input.Role,
		Username:  input.Username,
		StartDate: input.StartDate,
	})
	if err != nil {
		return handler.respondFormError(c, err, "/register", FlashPayload{})
	}
	handler.logger.Info("account requested", "user_id", userID, "role", strings.ToLower(strings.TrimSpace(input.Role)))

	return handler.respondFormSuccess(c, "/login", FlashPayload{Success: "status.account_requested"}, fiber.StatusCreated, fiber.Map{
		"ok":     true,
		"id":     userID,
		"status": models.StatusPendingApproval,
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	if session, ok := currentSession(c); ok {
		handler.auth.Logout(session.Token)
	}
	handler.clearSessionCookie(c)
	return handler.respondFormSuccess(c, "/login", FlashPayload{Success: "status.logged_out"}, fiber.StatusOK, fiber.Map{"ok": true})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondFormError(c, services.ErrPasswordChangeInvalidInput, "/change-password", FlashPayload{})
	}

	caller := currentCaller(c)
	if err := handler.auth.ChangePassword(caller, input.CurrentPassword, input.NewPassword, input.ConfirmPassword); err != nil {
		return handler.respondFormError(c, err, "/change-password", FlashPayload{})
	}
	handler.logger.Info("password changed", "user_id", caller.UserID)

	return handler.respondFormSuccess(c, "/dashboard", FlashPayload{Success: "status.password_changed"}, fiber.StatusOK, fiber.Map{"ok": true})
}

// Me describes the signed-in user; it stays reachable while a password change is pending.
func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.respondError(c, errAuthenticationRequired)
	}
	return c.JSON(fiber.Map{
		"user":                 user,
		"must_change_password": user.MustChangePassword,
	})
}
