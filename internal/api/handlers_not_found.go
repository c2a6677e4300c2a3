package api

import (
	"fmt"

	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if isAPIPath(c.Path()) || acceptsJSON(c) {
		return handler.respondError(c, fmt.Errorf("%w: %s", services.ErrNotFound, c.Path()))
	}

	currentUser := handler.optionalAuthenticatedUser(c)
	if currentUser != nil {
		c.Locals(contextUserKey, currentUser)
	}

	primaryPath := "/login"
	primaryLabelKey := "not_found.action_login"
	if currentUser != nil {
		primaryPath = "/dashboard"
		primaryLabelKey = "not_found.action_dashboard"
	}

	c.Status(fiber.StatusNotFound)
	return handler.render(c, "not_found", fiber.Map{
		"Title":           localizedPageTitle(handler.messagesFor(c), "meta.title.not_found", "Hourtrack | Page not found"),
		"PrimaryPath":     primaryPath,
		"PrimaryLabelKey": primaryLabelKey,
	})
}
