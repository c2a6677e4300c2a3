package api

import (
	"slices"
	"strings"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/gofiber/fiber/v2"
)

// passwordChangeAllowedPaths stay reachable while a temporary password is in use.
var passwordChangeAllowedPaths = []string{
	"/change-password",
	"/api/auth/change-password",
	"/api/auth/logout",
	"/api/me",
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, session, err := handler.authenticateRequest(c)
	if err != nil {
		if c.Cookies(authCookieName) != "" {
			handler.clearSessionCookie(c)
		}
		if isAPIPath(c.Path()) {
			return handler.respondError(c, errAuthenticationRequired)
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(contextUserKey, &user)
	c.Locals(contextSessionKey, session)
	return c.Next()
}

// PasswordChangeGate holds users with a temporary password on the change password flow.
func (handler *Handler) PasswordChangeGate(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok || !user.MustChangePassword {
		return c.Next()
	}
	if slices.Contains(passwordChangeAllowedPaths, strings.TrimRight(c.Path(), "/")) {
		return c.Next()
	}
	if isAPIPath(c.Path()) {
		return handler.respondError(c, errPasswordChangeRequired)
	}
	return c.Redirect("/change-password", fiber.StatusSeeOther)
}

func (handler *Handler) RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := currentUser(c)
		if !ok {
			return handler.respondError(c, errAuthenticationRequired)
		}
		if !slices.Contains(roles, user.Role) {
			return handler.respondError(c, errRoleForbidden)
		}
		return c.Next()
	}
}

// optionalAuthenticatedUser resolves the session without enforcing it.
func (handler *Handler) optionalAuthenticatedUser(c *fiber.Ctx) *models.User {
	if c.Cookies(authCookieName) == "" {
		return nil
	}
	user, _, err := handler.authenticateRequest(c)
	if err != nil {
		return nil
	}
	return &user
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
