package api

import (
	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

var registrationRoles = []string{
	string(models.RoleCoreIntern),
	string(models.RoleLeadIntern),
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if handler.optionalAuthenticatedUser(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	messages := handler.messagesFor(c)
	notices, flash := handler.pageNotices(c, messages)
	return handler.render(c, "login", mergeMaps(fiber.Map{
		"Title":           localizedPageTitle(messages, "meta.title.login", "Hourtrack | Sign in"),
		"LoginIdentifier": flash.LoginIdentifier,
	}, notices))
}

func (handler *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	if handler.optionalAuthenticatedUser(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	messages := handler.messagesFor(c)
	notices, _ := handler.pageNotices(c, messages)
	return handler.render(c, "register", mergeMaps(fiber.Map{
		"Title": localizedPageTitle(messages, "meta.title.register", "Hourtrack | Request an account"),
		"Roles": registrationRoles,
	}, notices))
}

func (handler *Handler) ShowChangePasswordPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	messages := handler.messagesFor(c)
	notices, _ := handler.pageNotices(c, messages)
	return handler.render(c, "change_password", mergeMaps(fiber.Map{
		"Title":      localizedPageTitle(messages, "meta.title.change_password", "Hourtrack | Change password"),
		"MustChange": user.MustChangePassword,
	}, notices))
}

func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	messages := handler.messagesFor(c)
	data, err := handler.buildDashboardViewData(*user)
	if err != nil {
		handler.logRequestFailure(c, err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to load dashboard")
	}
	data["Title"] = localizedPageTitle(messages, "meta.title.dashboard", "Hourtrack | Dashboard")

	notices, _ := handler.pageNotices(c, messages)
	return handler.render(c, "dashboard", mergeMaps(data, notices))
}

// buildDashboardViewData picks the panels for the signed-in role: core interns see their own
// totals, lead interns their team, admins the whole roster plus the approval queue.
func (handler *Handler) buildDashboardViewData(user models.User) (fiber.Map, error) {
	caller := services.CallerFor(user)
	data := fiber.Map{
		"OwnReport":           (*services.UserReport)(nil),
		"ShowTeam":            false,
		"Team":                []services.UserReport{},
		"ShowPendingAccounts": false,
		"PendingAccounts":     0,
	}

	switch user.Role {
	case models.RoleCoreIntern:
		report, err := handler.reports.UserReport(caller, user.ID, "", "")
		if err != nil {
			return nil, err
		}
		data["OwnReport"] = &report
	case models.RoleLeadIntern, models.RoleAdmin:
		team, err := handler.reports.TeamReport(caller, "", "")
		if err != nil {
			return nil, err
		}
		data["ShowTeam"] = true
		data["Team"] = team
	}

	if user.Role == models.RoleAdmin {
		pending, err := handler.accounts.ListPending(caller)
		if err != nil {
			return nil, err
		}
		data["ShowPendingAccounts"] = true
		data["PendingAccounts"] = len(pending)
	}
	return data, nil
}
