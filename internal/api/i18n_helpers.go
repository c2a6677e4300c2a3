package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func translateMessage(messages map[string]string, key string) string {
	if key == "" {
		return ""
	}
	if value, ok := messages[key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return key
}

func translateFormat(messages map[string]string, key string, args ...any) string {
	return fmt.Sprintf(translateMessage(messages, key), args...)
}

func roleTranslationKey(role string) string {
	return "role." + strings.ToLower(strings.TrimSpace(role))
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

func currentMessages(c *fiber.Ctx) map[string]string {
	messages, _ := c.Locals(contextMessagesKey).(map[string]string)
	return messages
}

// messagesFor falls back to the default language when the language middleware did not run.
func (handler *Handler) messagesFor(c *fiber.Ctx) map[string]string {
	if messages := currentMessages(c); messages != nil {
		return messages
	}
	return handler.i18n.Messages(handler.i18n.DefaultLanguage())
}

func (handler *Handler) languageFor(c *fiber.Ctx) string {
	if language := currentLanguage(c); language != "" {
		return language
	}
	return handler.i18n.DefaultLanguage()
}
