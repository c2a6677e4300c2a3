package api

import (
	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	authCookieName     = "hourtrack_auth"
	languageCookieName = "hourtrack_lang"
	flashCookieName    = "hourtrack_flash"
	contextUserKey     = "current_user"
	contextSessionKey  = "current_session"
	contextLanguageKey = "current_language"
	contextMessagesKey = "current_messages"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func currentSession(c *fiber.Ctx) (services.Session, bool) {
	session, ok := c.Locals(contextSessionKey).(services.Session)
	return session, ok
}

func currentCaller(c *fiber.Ctx) services.Caller {
	if user, ok := currentUser(c); ok {
		return services.CallerFor(*user)
	}
	return services.Caller{}
}
